package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeck/backend/apperr"
	"github.com/pulsedeck/backend/models"
	"github.com/pulsedeck/backend/services"
	"github.com/pulsedeck/backend/store"
)

// stubProvider either fails or returns a canned analysis.
type stubProvider struct {
	name     string
	err      error
	analysis *models.AIAnalysis
	calls    int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Analyze(_ context.Context, _ Request) (*models.AIAnalysis, string, error) {
	s.calls++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.analysis, "stub explanation", nil
}

func newAnalyzerFixture(t *testing.T, providers ...Provider) (*Analyzer, *services.IncidentService) {
	t.Helper()
	incidents := services.NewIncidentService(store.NewMemory(), nil)
	fallback, err := NewRuleAnalyzer("")
	require.NoError(t, err)
	return NewAnalyzer(incidents, providers, fallback, time.Second, nil), incidents
}

func seedIncident(t *testing.T, incidents *services.IncidentService) *models.Incident {
	t.Helper()
	ctx := context.Background()
	inc, err := incidents.CreateIncident(ctx, &models.CreateIncidentRequest{
		Title:       "Checkout latency spike",
		Description: "p99 above 5s",
	})
	require.NoError(t, err)
	_, err = incidents.AppendLog(ctx, inc.ID, &models.AppendLogRequest{
		Level:   models.LogError,
		Message: "query timeout after 30s",
	})
	require.NoError(t, err)
	return inc
}

func TestAnalyzeWithProvider(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{
		name: "stub",
		analysis: &models.AIAnalysis{
			Provider:             "stub",
			RootCause:            "Canned cause",
			RootCauseProbability: 0.9,
			AISeverity:           models.SeverityHigh,
			StatusSuggestion:     models.SuggestionRootCauseLikely,
			SuggestedActions: []models.SuggestedAction{
				{Action: "Do the thing", Confidence: 0.8, RequiresApproval: true},
			},
			AnalyzedAt: time.Now(),
		},
	}
	analyzer, incidents := newAnalyzerFixture(t, provider)
	inc := seedIncident(t, incidents)

	resp, err := analyzer.Analyze(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "Canned cause", resp.AIAnalysis.RootCause)
	assert.Equal(t, "stub explanation", resp.Explanation)
	assert.Equal(t, inc.ID, resp.Incident.ID)
	assert.Equal(t, 1, resp.LogsAnalyzed)
	assert.Equal(t, 1, resp.ErrorCount)

	// The snapshot is attached with stable action ids.
	detail, err := incidents.GetDetail(ctx, inc.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.AIAnalysis)
	require.Len(t, detail.AIAnalysis.SuggestedActions, 1)
	assert.NotEmpty(t, detail.AIAnalysis.SuggestedActions[0].ID)
}

func TestAnalyzeFallsBackToRules(t *testing.T) {
	ctx := context.Background()
	primary := &stubProvider{name: "primary", err: errors.New("quota exceeded")}
	secondary := &stubProvider{name: "secondary", err: errors.New("timeout")}
	analyzer, incidents := newAnalyzerFixture(t, primary, secondary)
	inc := seedIncident(t, incidents)

	resp, err := analyzer.Analyze(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, "rules", resp.AIAnalysis.Provider)
	assert.NotEmpty(t, resp.AIAnalysis.RootCause)
	assert.NotEmpty(t, resp.AIAnalysis.SuggestedActions)
	assert.NotEmpty(t, resp.Explanation)
}

func TestAnalyzeNoProviders(t *testing.T) {
	ctx := context.Background()
	analyzer, incidents := newAnalyzerFixture(t)
	inc := seedIncident(t, incidents)

	resp, err := analyzer.Analyze(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, "rules", resp.AIAnalysis.Provider)
}

func TestAnalyzeUnknownIncident(t *testing.T) {
	analyzer, _ := newAnalyzerFixture(t)
	_, err := analyzer.Analyze(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestAnalyzeExcludesSelfFromRelated(t *testing.T) {
	ctx := context.Background()
	var captured Request
	provider := &stubProvider{name: "capture"}
	// Wrap to capture the request.
	capturing := providerFunc(func(_ context.Context, req Request) (*models.AIAnalysis, string, error) {
		captured = req
		return provider.analysis, "", errors.New("force fallback")
	})
	analyzer, incidents := newAnalyzerFixture(t, capturing)

	first := seedIncident(t, incidents)
	second, err := incidents.CreateIncident(ctx, &models.CreateIncidentRequest{
		Title: "Same-category neighbour",
	})
	require.NoError(t, err)

	_, err = analyzer.Analyze(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, captured.Related, 1)
	assert.Equal(t, second.ID, captured.Related[0].ID)
}

// providerFunc adapts a function to the Provider interface for tests.
type providerFunc func(ctx context.Context, req Request) (*models.AIAnalysis, string, error)

func (f providerFunc) Analyze(ctx context.Context, req Request) (*models.AIAnalysis, string, error) {
	return f(ctx, req)
}

func (f providerFunc) Name() string { return "func" }
