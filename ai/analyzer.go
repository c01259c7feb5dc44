package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulsedeck/backend/metrics"
	"github.com/pulsedeck/backend/models"
	"github.com/pulsedeck/backend/services"
)

const relatedIncidentLimit = 5

// Analyzer walks the provider chain for an incident and attaches the winning
// snapshot. The rule analyzer terminates the chain, so Analyze only errors when
// the incident id itself is invalid.
type Analyzer struct {
	incidents *services.IncidentService
	providers []Provider
	fallback  *RuleAnalyzer
	timeout   time.Duration
	logger    *slog.Logger
}

func NewAnalyzer(incidents *services.IncidentService, providers []Provider, fallback *RuleAnalyzer, timeout time.Duration, logger *slog.Logger) *Analyzer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		incidents: incidents,
		providers: providers,
		fallback:  fallback,
		timeout:   timeout,
		logger:    logger,
	}
}

// Analyze produces an IncidentAnalysisResponse for the incident. Stored state
// is untouched except for the attached analysis snapshot.
func (a *Analyzer) Analyze(ctx context.Context, incidentID string) (*models.IncidentAnalysisResponse, error) {
	detail, err := a.incidents.GetDetail(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	req := Request{
		Incident: &detail.Incident,
		Logs:     detail.Logs,
		Related:  a.related(ctx, &detail.Incident),
	}

	analysis, explanation := a.run(ctx, req)

	if err := a.incidents.AttachAnalysis(ctx, incidentID, analysis); err != nil {
		// The caller still gets a usable analysis; only the snapshot is lost.
		a.logger.Warn("failed to attach analysis snapshot", "incident", incidentID, "error", err)
	}

	return &models.IncidentAnalysisResponse{
		Incident: models.IncidentRef{
			ID:       detail.ID,
			Title:    detail.Title,
			Status:   detail.Status,
			Severity: detail.Severity,
			Category: detail.Category,
		},
		AIAnalysis:   *analysis,
		Explanation:  explanation,
		LogsAnalyzed: detail.Summary.TotalLogs,
		ErrorCount:   detail.Summary.ErrorLogs,
		WarningCount: detail.Summary.WarningLogs,
	}, nil
}

// run tries each provider in order and falls back to the rule analyzer.
func (a *Analyzer) run(ctx context.Context, req Request) (*models.AIAnalysis, string) {
	for _, provider := range a.providers {
		start := time.Now()
		pctx, cancel := context.WithTimeout(ctx, a.timeout)
		analysis, explanation, err := provider.Analyze(pctx, req)
		cancel()
		if err != nil {
			metrics.ObserveAnalysis(provider.Name(), time.Since(start), metrics.OutcomeError)
			a.logger.Warn("analysis provider failed",
				"provider", provider.Name(), "incident", req.Incident.ID, "error", err)
			continue
		}
		metrics.ObserveAnalysis(provider.Name(), time.Since(start), metrics.OutcomeSuccess)
		return analysis, explanation
	}

	start := time.Now()
	analysis, explanation, _ := a.fallback.Analyze(ctx, req)
	metrics.ObserveAnalysis(a.fallback.Name(), time.Since(start), metrics.OutcomeSuccess)
	return analysis, explanation
}

// related returns recent incidents sharing the category, excluding the subject.
func (a *Analyzer) related(ctx context.Context, incident *models.Incident) []*models.Incident {
	candidates, err := a.incidents.List(ctx, models.IncidentFilter{
		Category: incident.Category,
		Limit:    relatedIncidentLimit + 1,
	})
	if err != nil {
		a.logger.Warn("failed to list related incidents", "incident", incident.ID, "error", err)
		return nil
	}
	related := make([]*models.Incident, 0, relatedIncidentLimit)
	for _, c := range candidates {
		if c.ID == incident.ID {
			continue
		}
		related = append(related, c)
		if len(related) == relatedIncidentLimit {
			break
		}
	}
	return related
}
