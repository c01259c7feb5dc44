package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pulsedeck/backend/models"
)

// GeminiProvider analyzes incidents with a Gemini model. The primary and
// secondary chain entries are two instances with different model names sharing
// one client.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates the shared genai client.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

func NewGeminiProvider(client *genai.Client, model string) *GeminiProvider {
	return &GeminiProvider{client: client, model: model}
}

func (p *GeminiProvider) Name() string {
	return "gemini:" + p.model
}

// geminiPayload is the JSON shape the model is asked to emit.
type geminiPayload struct {
	RootCause            string  `json:"rootCause"`
	RootCauseProbability float64 `json:"rootCauseProbability"`
	SuggestedActions     []struct {
		Action           string  `json:"action"`
		Description      string  `json:"description"`
		Confidence       float64 `json:"confidence"`
		RequiresApproval bool    `json:"requiresApproval"`
	} `json:"suggestedActions"`
	TrendAnalysis *struct {
		IsDegrading     bool    `json:"isDegrading"`
		DegradationRate float64 `json:"degradationRate"`
	} `json:"trendAnalysis"`
	Severity         string `json:"severity"`
	Category         string `json:"category"`
	StatusSuggestion string `json:"statusSuggestion"`
	Explanation      string `json:"explanation"`
}

func (p *GeminiProvider) Analyze(ctx context.Context, req Request) (*models.AIAnalysis, string, error) {
	model := p.client.GenerativeModel(p.model)

	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, "", fmt.Errorf("no response generated")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	var payload geminiPayload
	if err := json.Unmarshal([]byte(stripFences(responseText)), &payload); err != nil {
		return nil, "", fmt.Errorf("failed to parse model output: %w", err)
	}

	analysis := &models.AIAnalysis{
		RootCause:            payload.RootCause,
		RootCauseProbability: clamp01(payload.RootCauseProbability),
		Provider:             p.Name(),
		AnalyzedAt:           time.Now(),
	}
	for _, incident := range req.Related {
		analysis.RelatedIncidentIDs = append(analysis.RelatedIncidentIDs, incident.ID)
	}
	for _, a := range payload.SuggestedActions {
		analysis.SuggestedActions = append(analysis.SuggestedActions, models.SuggestedAction{
			Action:           a.Action,
			Description:      a.Description,
			Confidence:       clamp01(a.Confidence),
			RequiresApproval: a.RequiresApproval,
		})
	}
	if payload.TrendAnalysis != nil {
		analysis.TrendAnalysis = &models.TrendAnalysis{
			IsDegrading:     payload.TrendAnalysis.IsDegrading,
			DegradationRate: payload.TrendAnalysis.DegradationRate,
		}
	}
	if sev := models.IncidentSeverity(payload.Severity); sev.Valid() {
		analysis.AISeverity = sev
	}
	if cat := models.IncidentCategory(payload.Category); cat.Valid() {
		analysis.AICategory = cat
	}
	switch s := models.StatusSuggestion(payload.StatusSuggestion); s {
	case models.SuggestionNeedsInvestigation, models.SuggestionRootCauseLikely, models.SuggestionReadyForResolution:
		analysis.StatusSuggestion = s
	}

	explanation := payload.Explanation
	if explanation == "" {
		explanation = payload.RootCause
	}
	return analysis, explanation, nil
}

func buildPrompt(req Request) (string, error) {
	incidentJSON, err := json.MarshalIndent(req.Incident, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal incident: %w", err)
	}

	var logLines strings.Builder
	for _, entry := range req.Logs {
		fmt.Fprintf(&logLines, "[%s] %s %s\n", entry.Level, entry.CreatedAt.Format(time.RFC3339), entry.Message)
	}

	prompt := fmt.Sprintf(`You are a root cause analysis agent for an incident tracking system.

INCIDENT:
%s

LOGS (%d lines):
%s

Respond with a single JSON object and nothing else, using exactly these keys:
{
  "rootCause": "one-sentence most likely root cause",
  "rootCauseProbability": 0.0-1.0,
  "suggestedActions": [
    {"action": "short imperative", "description": "what it does and why", "confidence": 0.0-1.0, "requiresApproval": true|false}
  ],
  "trendAnalysis": {"isDegrading": true|false, "degradationRate": number},
  "severity": "low|medium|high",
  "category": "performance|database|authentication|network|deployment",
  "statusSuggestion": "needs_investigation|likely_root_cause_identified|ready_for_resolution",
  "explanation": "two or three sentences for the operator"
}

Actions that would change system state must have requiresApproval true.`,
		string(incidentJSON), len(req.Logs), logLines.String())
	return prompt, nil
}

// stripFences strips a markdown code fence if the model wrapped its JSON in one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
