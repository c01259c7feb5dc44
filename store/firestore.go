package store

import (
	"context"
	"log"
	"sort"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/pulsedeck/backend/apperr"
	"github.com/pulsedeck/backend/models"
)

const (
	incidentsCollection = "incidents"
	servicesCollection  = "services"
	logsCollection      = "logs"
)

// Firestore is the production Store backed by Cloud Firestore.
type Firestore struct {
	app    *firebase.App
	client *firestore.Client
}

// NewFirestore initialises the Firebase app and Firestore client from a
// credentials file.
func NewFirestore(ctx context.Context, credentialsPath string) (*Firestore, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, err
	}

	log.Println("[Store] Firestore initialized")
	return &Firestore{app: app, client: client}, nil
}

// Close releases the underlying Firestore client.
func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) CreateIncident(ctx context.Context, incident *models.Incident) error {
	_, err := f.client.Collection(incidentsCollection).Doc(incident.ID).Set(ctx, incident)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "store.CreateIncident", "failed to create incident", err)
	}
	return nil
}

func (f *Firestore) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	doc, err := f.client.Collection(incidentsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "store.GetIncident", "incident not found", err)
	}
	var incident models.Incident
	if err := doc.DataTo(&incident); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "store.GetIncident", "failed to parse incident", err)
	}
	return &incident, nil
}

func (f *Firestore) PutIncident(ctx context.Context, incident *models.Incident) error {
	if _, err := f.GetIncident(ctx, incident.ID); err != nil {
		return err
	}
	_, err := f.client.Collection(incidentsCollection).Doc(incident.ID).Set(ctx, incident)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "store.PutIncident", "failed to update incident", err)
	}
	return nil
}

func (f *Firestore) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	// Query on a single field at most and filter the rest in memory, to avoid
	// requiring composite indexes.
	query := f.client.Collection(incidentsCollection).Query
	if filter.ServiceID != "" {
		query = query.Where("service_id", "==", filter.ServiceID)
	} else if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}

	iter := query.Documents(ctx)
	var incidents []*models.Incident
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "store.ListIncidents", "failed to iterate incidents", err)
		}
		var incident models.Incident
		if err := doc.DataTo(&incident); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "store.ListIncidents", "failed to parse incident", err)
		}
		if matchIncident(&incident, filter) {
			incidents = append(incidents, &incident)
		}
	}

	sort.Slice(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})
	if filter.Limit > 0 && len(incidents) > filter.Limit {
		incidents = incidents[:filter.Limit]
	}
	return incidents, nil
}

func (f *Firestore) CreateService(ctx context.Context, svc *models.Service) error {
	_, err := f.client.Collection(servicesCollection).Doc(svc.ID).Set(ctx, svc)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "store.CreateService", "failed to create service", err)
	}
	return nil
}

func (f *Firestore) GetService(ctx context.Context, id string) (*models.Service, error) {
	doc, err := f.client.Collection(servicesCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "store.GetService", "service not found", err)
	}
	var svc models.Service
	if err := doc.DataTo(&svc); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "store.GetService", "failed to parse service", err)
	}
	return &svc, nil
}

func (f *Firestore) PutService(ctx context.Context, svc *models.Service) error {
	if _, err := f.GetService(ctx, svc.ID); err != nil {
		return err
	}
	_, err := f.client.Collection(servicesCollection).Doc(svc.ID).Set(ctx, svc)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "store.PutService", "failed to update service", err)
	}
	return nil
}

func (f *Firestore) DeleteService(ctx context.Context, id string) error {
	if _, err := f.GetService(ctx, id); err != nil {
		return err
	}
	_, err := f.client.Collection(servicesCollection).Doc(id).Delete(ctx)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "store.DeleteService", "failed to delete service", err)
	}
	return nil
}

func (f *Firestore) ListServices(ctx context.Context, filter models.ServiceFilter) ([]*models.Service, error) {
	iter := f.client.Collection(servicesCollection).Documents(ctx)
	var services []*models.Service
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "store.ListServices", "failed to iterate services", err)
		}
		var svc models.Service
		if err := doc.DataTo(&svc); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "store.ListServices", "failed to parse service", err)
		}
		if matchService(&svc, filter) {
			services = append(services, &svc)
		}
	}

	sort.Slice(services, func(i, j int) bool {
		return services[i].CreatedAt.After(services[j].CreatedAt)
	})
	return services, nil
}

func (f *Firestore) AppendLog(ctx context.Context, entry *models.Log) error {
	_, err := f.client.Collection(logsCollection).Doc(entry.ID).Set(ctx, entry)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "store.AppendLog", "failed to append log", err)
	}
	return nil
}

func (f *Firestore) ListLogs(ctx context.Context, incidentID string) ([]models.Log, error) {
	iter := f.client.Collection(logsCollection).
		Where("incident_id", "==", incidentID).
		Documents(ctx)

	var logs []models.Log
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "store.ListLogs", "failed to iterate logs", err)
		}
		var entry models.Log
		if err := doc.DataTo(&entry); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "store.ListLogs", "failed to parse log", err)
		}
		logs = append(logs, entry)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.Before(logs[j].CreatedAt)
	})
	return logs, nil
}

func (f *Firestore) CountLogs(ctx context.Context) (int, error) {
	iter := f.client.Collection(logsCollection).Documents(ctx)
	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, apperr.Wrap(apperr.Internal, "store.CountLogs", "failed to count logs", err)
		}
		count++
	}
	return count, nil
}
