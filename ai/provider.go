// Package ai produces root-cause suggestions for incidents. A provider chain
// tries the primary and secondary inference models before falling back to a
// deterministic rule engine, so a valid incident id always yields a
// structurally valid analysis.
package ai

import (
	"context"

	"github.com/pulsedeck/backend/models"
)

// Request is the incident context handed to a provider.
type Request struct {
	Incident *models.Incident
	Logs     []models.Log
	// Related holds recent incidents in the same category, used to populate
	// relatedIncidentIds.
	Related []*models.Incident
}

// Provider is one way of producing an analysis. Implementations must not
// mutate stored state.
type Provider interface {
	// Analyze returns the structured analysis and a prose explanation.
	Analyze(ctx context.Context, req Request) (*models.AIAnalysis, string, error)
	Name() string
}
