package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pulsedeck/backend/apperr"
	"github.com/pulsedeck/backend/models"
)

// Memory is an in-process Store guarded by a RWMutex. It backs tests and the
// credential-free demo mode.
type Memory struct {
	mu        sync.RWMutex
	incidents map[string]*models.Incident
	services  map[string]*models.Service
	logs      map[string][]models.Log // keyed by incident id
	logCount  int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		incidents: make(map[string]*models.Incident),
		services:  make(map[string]*models.Service),
		logs:      make(map[string][]models.Log),
	}
}

func (m *Memory) CreateIncident(_ context.Context, incident *models.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents[incident.ID] = cloneIncident(incident)
	return nil
}

func (m *Memory) GetIncident(_ context.Context, id string) (*models.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inc, ok := m.incidents[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "store.GetIncident", "incident not found")
	}
	return cloneIncident(inc), nil
}

func (m *Memory) PutIncident(_ context.Context, incident *models.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.incidents[incident.ID]; !ok {
		return apperr.New(apperr.NotFound, "store.PutIncident", "incident not found")
	}
	m.incidents[incident.ID] = cloneIncident(incident)
	return nil
}

func (m *Memory) ListIncidents(_ context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Incident, 0)
	for _, inc := range m.incidents {
		if matchIncident(inc, filter) {
			out = append(out, cloneIncident(inc))
		}
	}
	// Most recent first.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Memory) CreateService(_ context.Context, svc *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[svc.ID] = cloneService(svc)
	return nil
}

func (m *Memory) GetService(_ context.Context, id string) (*models.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	svc, ok := m.services[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "store.GetService", "service not found")
	}
	return cloneService(svc), nil
}

func (m *Memory) PutService(_ context.Context, svc *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.services[svc.ID]; !ok {
		return apperr.New(apperr.NotFound, "store.PutService", "service not found")
	}
	m.services[svc.ID] = cloneService(svc)
	return nil
}

func (m *Memory) DeleteService(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.services[id]; !ok {
		return apperr.New(apperr.NotFound, "store.DeleteService", "service not found")
	}
	delete(m.services, id)
	return nil
}

func (m *Memory) ListServices(_ context.Context, filter models.ServiceFilter) ([]*models.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Service, 0)
	for _, svc := range m.services {
		if matchService(svc, filter) {
			out = append(out, cloneService(svc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) AppendLog(_ context.Context, entry *models.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[entry.IncidentID] = append(m.logs[entry.IncidentID], *entry)
	m.logCount++
	return nil
}

func (m *Memory) ListLogs(_ context.Context, incidentID string) ([]models.Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.logs[incidentID]
	out := make([]models.Log, len(entries))
	copy(out, entries)
	return out, nil
}

func (m *Memory) CountLogs(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logCount, nil
}

// cloneIncident deep-copies so callers never alias stored state.
func cloneIncident(in *models.Incident) *models.Incident {
	out := *in
	out.Timeline = append([]models.TimelineEvent(nil), in.Timeline...)
	if in.ResolvedAt != nil {
		t := *in.ResolvedAt
		out.ResolvedAt = &t
	}
	if in.AIAnalysis != nil {
		a := *in.AIAnalysis
		a.RelatedIncidentIDs = append([]string(nil), in.AIAnalysis.RelatedIncidentIDs...)
		a.SuggestedActions = append([]models.SuggestedAction(nil), in.AIAnalysis.SuggestedActions...)
		if in.AIAnalysis.TrendAnalysis != nil {
			tr := *in.AIAnalysis.TrendAnalysis
			a.TrendAnalysis = &tr
		}
		out.AIAnalysis = &a
	}
	return &out
}

func cloneService(in *models.Service) *models.Service {
	out := *in
	if in.Metadata != nil {
		meta := *in.Metadata
		meta.Tags = append([]string(nil), in.Metadata.Tags...)
		out.Metadata = &meta
	}
	return &out
}
