package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pulsedeck/backend/apperr"
	"github.com/pulsedeck/backend/models"
	"github.com/pulsedeck/backend/store"
)

// IncidentService owns the incident lifecycle: creation, status transitions,
// action approval, and the append-only timeline and log trail.
type IncidentService struct {
	store  store.Store
	events *EventPublisher
}

func NewIncidentService(st store.Store, events *EventPublisher) *IncidentService {
	return &IncidentService{
		store:  st,
		events: events,
	}
}

func (s *IncidentService) CreateIncident(ctx context.Context, req *models.CreateIncidentRequest) (*models.Incident, error) {
	const op = "incident.Create"

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	if !severity.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid severity: "+string(req.Severity))
	}
	category := req.Category
	if category == "" {
		category = models.CategoryPerformance
	}
	if !category.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid category: "+string(req.Category))
	}
	source := req.Source
	if source == "" {
		source = models.ActorEngineer
	}
	if source != models.ActorEngineer && source != models.ActorSystem {
		return nil, apperr.New(apperr.Validation, op, "source must be system or engineer")
	}

	var serviceName string
	if req.ServiceID != "" {
		svc, err := s.store.GetService(ctx, req.ServiceID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, op, "unknown serviceId: "+req.ServiceID)
		}
		serviceName = svc.Name
	}

	now := time.Now()
	incident := &models.Incident{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		ServiceID:   req.ServiceID,
		ServiceName: serviceName,
		Severity:    severity,
		Category:    category,
		Source:      source,
		Status:      models.StatusOpen,
		Timeline: []models.TimelineEvent{{
			Timestamp: now,
			Event:     "Incident created",
			Status:    models.StatusOpen,
			Actor:     source,
			Details:   &models.EventDetails{Kind: models.EventCreated},
		}},
		Metadata: models.IncidentMetadata{
			FirstDetectedAt: now,
			LastUpdatedAt:   now,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateIncident(ctx, incident); err != nil {
		return nil, err
	}

	log.Printf("[IncidentService] created incident id=%s severity=%s category=%s", incident.ID, severity, category)
	s.events.Publish(ctx, IncidentEvent{
		Type:       EventIncidentCreated,
		IncidentID: incident.ID,
		Status:     incident.Status,
		Actor:      source,
		Timestamp:  now,
	})
	return incident, nil
}

// List returns incidents matching the filter, most recent first.
func (s *IncidentService) List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	const op = "incident.List"

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid status filter: "+string(filter.Status))
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid severity filter: "+string(filter.Severity))
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid category filter: "+string(filter.Category))
	}

	incidents, err := s.store.ListIncidents(ctx, filter)
	if err != nil {
		return nil, err
	}
	if incidents == nil {
		incidents = []*models.Incident{}
	}
	return incidents, nil
}

// GetDetail returns the incident with its logs and computed summary.
func (s *IncidentService) GetDetail(ctx context.Context, id string) (*models.IncidentDetail, error) {
	incident, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ListLogs(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := models.IncidentSummary{TotalLogs: len(logs)}
	for _, entry := range logs {
		switch entry.Level {
		case models.LogError:
			summary.ErrorLogs++
		case models.LogWarning:
			summary.WarningLogs++
		}
	}
	end := time.Now()
	if incident.ResolvedAt != nil {
		end = *incident.ResolvedAt
	}
	summary.Duration = end.Sub(incident.Metadata.FirstDetectedAt).Milliseconds()

	return &models.IncidentDetail{
		Incident: *incident,
		Logs:     logs,
		Summary:  summary,
	}, nil
}

// UpdateStatus transitions an incident and appends exactly one timeline event.
// Terminal states reject further transitions. Auto-resolved is reserved for the
// system actor.
func (s *IncidentService) UpdateStatus(ctx context.Context, id string, req *models.UpdateStatusRequest, actor models.Actor) (*models.Incident, error) {
	const op = "incident.UpdateStatus"

	if !req.Status.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid status: "+string(req.Status))
	}
	if req.Status == models.StatusAutoResolved && actor != models.ActorSystem {
		return nil, apperr.New(apperr.Validation, op, "auto-resolved is reserved for the system")
	}

	incident, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != 0 && req.ExpectedVersion != incident.Version {
		return nil, apperr.New(apperr.Conflict, op, "incident was modified concurrently")
	}
	if incident.Status.IsTerminal() {
		return nil, apperr.New(apperr.Conflict, op, "incident is already "+string(incident.Status))
	}
	if incident.Status == req.Status {
		return nil, apperr.New(apperr.Validation, op, "incident is already "+string(req.Status))
	}

	now := time.Now()
	prev := incident.Status
	incident.Status = req.Status
	incident.Timeline = append(incident.Timeline, models.TimelineEvent{
		Timestamp: now,
		Event:     "Status changed to " + string(req.Status),
		Status:    req.Status,
		Actor:     actor,
		Details: &models.EventDetails{
			Kind: models.EventStatusChange,
			StatusChange: &models.StatusChangeDetails{
				From:  prev,
				To:    req.Status,
				Notes: req.Notes,
			},
		},
	})

	if req.Status.IsTerminal() {
		incident.ResolvedAt = &now
		incident.ResolvedBy = resolvedBy(actor)
		incident.ResolutionTime = now.Sub(incident.Metadata.FirstDetectedAt).Milliseconds()
	}

	incident.Version++
	incident.UpdatedAt = now
	incident.Metadata.LastUpdatedAt = now

	if err := s.store.PutIncident(ctx, incident); err != nil {
		return nil, err
	}

	log.Printf("[IncidentService] status change id=%s %s -> %s actor=%s", id, prev, req.Status, actor)
	s.events.Publish(ctx, IncidentEvent{
		Type:       EventStatusChanged,
		IncidentID: id,
		Status:     req.Status,
		Actor:      actor,
		Timestamp:  now,
	})
	return incident, nil
}

// AutoResolve is the system-side recovery path: the external health monitor
// calls it when a service comes back.
func (s *IncidentService) AutoResolve(ctx context.Context, id, notes string) (*models.Incident, error) {
	return s.UpdateStatus(ctx, id, &models.UpdateStatusRequest{
		Status: models.StatusAutoResolved,
		Notes:  notes,
	}, models.ActorSystem)
}

// ApproveAction marks a suggested action approved and records the approval on
// the timeline. It never executes anything.
func (s *IncidentService) ApproveAction(ctx context.Context, id string, req *models.ApproveActionRequest) (*models.Incident, error) {
	const op = "incident.ApproveAction"

	incident, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if incident.AIAnalysis == nil || len(incident.AIAnalysis.SuggestedActions) == 0 {
		return nil, apperr.New(apperr.InvalidReference, op, "incident has no suggested actions")
	}

	var action *models.SuggestedAction
	switch {
	case req.ActionID != "":
		action = incident.AIAnalysis.ActionByID(req.ActionID)
	case req.ActionIndex != nil:
		idx := *req.ActionIndex
		if idx >= 0 && idx < len(incident.AIAnalysis.SuggestedActions) {
			action = &incident.AIAnalysis.SuggestedActions[idx]
		}
	default:
		return nil, apperr.New(apperr.Validation, op, "actionId is required")
	}
	if action == nil {
		return nil, apperr.New(apperr.InvalidReference, op, "suggested action not found")
	}
	if !action.RequiresApproval {
		return nil, apperr.New(apperr.Validation, op, "action does not require approval")
	}
	if action.Approved {
		return nil, apperr.New(apperr.Conflict, op, "action is already approved")
	}

	now := time.Now()
	action.Approved = true
	action.ApprovedAt = &now
	action.ApprovedBy = string(models.ActorEngineer)

	incident.Timeline = append(incident.Timeline, models.TimelineEvent{
		Timestamp: now,
		Event:     "Action approved: " + action.Action,
		Status:    incident.Status,
		Actor:     models.ActorEngineer,
		Details: &models.EventDetails{
			Kind: models.EventApproval,
			Approval: &models.ApprovalDetails{
				ActionID:   action.ID,
				Action:     action.Action,
				Confidence: action.Confidence,
			},
		},
	})
	incident.Version++
	incident.UpdatedAt = now
	incident.Metadata.LastUpdatedAt = now

	if err := s.store.PutIncident(ctx, incident); err != nil {
		return nil, err
	}

	log.Printf("[IncidentService] action approved id=%s action=%q", id, action.Action)
	s.events.Publish(ctx, IncidentEvent{
		Type:       EventActionApproved,
		IncidentID: id,
		Status:     incident.Status,
		Actor:      models.ActorEngineer,
		Timestamp:  now,
	})
	return incident, nil
}

// AttachAnalysis stores the latest analysis snapshot on the incident,
// overwriting any prior one. Suggested actions get stable ids here. No timeline
// event is appended; analysis is otherwise read-only.
func (s *IncidentService) AttachAnalysis(ctx context.Context, id string, analysis *models.AIAnalysis) error {
	incident, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return err
	}

	for i := range analysis.SuggestedActions {
		if analysis.SuggestedActions[i].ID == "" {
			analysis.SuggestedActions[i].ID = uuid.New().String()
		}
	}

	incident.AIAnalysis = analysis
	incident.Version++
	incident.UpdatedAt = time.Now()
	return s.store.PutIncident(ctx, incident)
}

// AppendLog attaches a diagnostic line and keeps the incident's counters current.
func (s *IncidentService) AppendLog(ctx context.Context, incidentID string, req *models.AppendLogRequest) (*models.Log, error) {
	const op = "incident.AppendLog"

	level := req.Level
	if level == "" {
		level = models.LogInfo
	}
	if !level.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid level: "+string(req.Level))
	}

	incident, err := s.store.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &models.Log{
		ID:         uuid.New().String(),
		IncidentID: incidentID,
		Message:    req.Message,
		Level:      level,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		return nil, err
	}

	incident.Metadata.LogCount++
	if level == models.LogError {
		incident.Metadata.ErrorCount++
	}
	incident.Metadata.LastUpdatedAt = now
	incident.Version++
	incident.UpdatedAt = now
	if err := s.store.PutIncident(ctx, incident); err != nil {
		return nil, err
	}
	return entry, nil
}

// Logs returns an incident's log lines in chronological order.
func (s *IncidentService) Logs(ctx context.Context, incidentID string) ([]models.Log, error) {
	if _, err := s.store.GetIncident(ctx, incidentID); err != nil {
		return nil, err
	}
	logs, err := s.store.ListLogs(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.Log{}
	}
	return logs, nil
}

// History returns the timeline most-recent-first with raw health payloads
// stripped.
func (s *IncidentService) History(ctx context.Context, id string) ([]models.TimelineEvent, error) {
	incident, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]models.TimelineEvent, 0, len(incident.Timeline))
	for i := len(incident.Timeline) - 1; i >= 0; i-- {
		out = append(out, incident.Timeline[i].Redacted())
	}
	return out, nil
}

// Stats aggregates dashboard counts across all incidents.
func (s *IncidentService) Stats(ctx context.Context) (*models.SystemStats, error) {
	incidents, err := s.store.ListIncidents(ctx, models.IncidentFilter{})
	if err != nil {
		return nil, err
	}
	totalLogs, err := s.store.CountLogs(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.SystemStats{
		ByCategory: make(map[string]int),
		BySeverity: make(map[string]int),
	}
	stats.Summary.TotalIncidents = len(incidents)
	stats.Summary.TotalLogs = totalLogs
	for _, inc := range incidents {
		switch inc.Status {
		case models.StatusOpen, models.StatusInvestigating:
			stats.Summary.OpenIncidents++
		case models.StatusResolved, models.StatusAutoResolved:
			stats.Summary.ResolvedIncidents++
		}
		stats.ByCategory[string(inc.Category)]++
		stats.BySeverity[string(inc.Severity)]++
	}
	return stats, nil
}

func resolvedBy(actor models.Actor) string {
	if actor == models.ActorSystem {
		return "system"
	}
	return "engineer"
}
