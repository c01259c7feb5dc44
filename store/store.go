// Package store persists incidents, services, and logs. The Firestore
// implementation backs production; the memory implementation backs tests and
// demo mode.
package store

import (
	"context"

	"github.com/pulsedeck/backend/models"
)

// Store is the persistence surface the services depend on. Each single-entity
// write is atomic; no multi-record transaction is offered.
type Store interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	// PutIncident replaces the stored incident wholesale.
	PutIncident(ctx context.Context, incident *models.Incident) error
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)

	CreateService(ctx context.Context, svc *models.Service) error
	GetService(ctx context.Context, id string) (*models.Service, error)
	PutService(ctx context.Context, svc *models.Service) error
	DeleteService(ctx context.Context, id string) error
	ListServices(ctx context.Context, filter models.ServiceFilter) ([]*models.Service, error)

	AppendLog(ctx context.Context, entry *models.Log) error
	ListLogs(ctx context.Context, incidentID string) ([]models.Log, error)
	CountLogs(ctx context.Context) (int, error)
}

func matchIncident(inc *models.Incident, f models.IncidentFilter) bool {
	if f.Status != "" && inc.Status != f.Status {
		return false
	}
	if f.Severity != "" && inc.Severity != f.Severity {
		return false
	}
	if f.Category != "" && inc.Category != f.Category {
		return false
	}
	if f.ServiceID != "" && inc.ServiceID != f.ServiceID {
		return false
	}
	return true
}

func matchService(svc *models.Service, f models.ServiceFilter) bool {
	if f.Enabled != nil && svc.Enabled != *f.Enabled {
		return false
	}
	if f.Category != "" && svc.Category != f.Category {
		return false
	}
	if f.Environment != "" {
		if svc.Metadata == nil || svc.Metadata.Environment != f.Environment {
			return false
		}
	}
	return true
}
