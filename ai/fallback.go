package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pulsedeck/backend/models"
)

// Rule maps log keywords to a root cause and remediation suggestions.
type Rule struct {
	ID            string                  `yaml:"id"`
	MatchKeywords []string                `yaml:"match_keywords"`
	Category      models.IncidentCategory `yaml:"category"`
	RootCause     string                  `yaml:"root_cause"`
	Actions       []RuleAction            `yaml:"actions"`
}

type RuleAction struct {
	Action           string  `yaml:"action"`
	Description      string  `yaml:"description"`
	Confidence       float64 `yaml:"confidence"`
	RequiresApproval bool    `yaml:"requires_approval"`
}

type rulePackFile struct {
	Rules []Rule `yaml:"rules"`
}

// RuleAnalyzer is the deterministic last resort of the provider chain. It
// never fails: when no rule matches it still emits a low-confidence analysis.
type RuleAnalyzer struct {
	rules []Rule
}

// NewRuleAnalyzer loads a YAML rule pack from path, falling back to the
// compiled-in defaults when path is empty or missing.
func NewRuleAnalyzer(path string) (*RuleAnalyzer, error) {
	if path == "" {
		return &RuleAnalyzer{rules: defaultRules}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RuleAnalyzer{rules: defaultRules}, nil
		}
		return nil, err
	}
	var pack rulePackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse rule pack: %w", err)
	}
	if len(pack.Rules) == 0 {
		return &RuleAnalyzer{rules: defaultRules}, nil
	}
	return &RuleAnalyzer{rules: pack.Rules}, nil
}

func (r *RuleAnalyzer) Name() string {
	return "rules"
}

func (r *RuleAnalyzer) Analyze(_ context.Context, req Request) (*models.AIAnalysis, string, error) {
	errorCount, warningCount := 0, 0
	for _, entry := range req.Logs {
		switch entry.Level {
		case models.LogError:
			errorCount++
		case models.LogWarning:
			warningCount++
		}
	}

	rule := r.bestMatch(req.Logs)

	analysis := &models.AIAnalysis{
		Provider:   r.Name(),
		AnalyzedAt: time.Now(),
	}
	for _, incident := range req.Related {
		analysis.RelatedIncidentIDs = append(analysis.RelatedIncidentIDs, incident.ID)
	}

	if rule != nil {
		analysis.RootCause = rule.RootCause
		analysis.RootCauseProbability = heuristicConfidence(errorCount, len(req.Logs))
		analysis.AICategory = rule.Category
		for _, a := range rule.Actions {
			analysis.SuggestedActions = append(analysis.SuggestedActions, models.SuggestedAction{
				Action:           a.Action,
				Description:      a.Description,
				Confidence:       a.Confidence,
				RequiresApproval: a.RequiresApproval,
			})
		}
	} else {
		analysis.RootCause = fmt.Sprintf("Undetermined; %d error log(s) observed for %q", errorCount, req.Incident.Title)
		analysis.RootCauseProbability = 0.2
		analysis.SuggestedActions = []models.SuggestedAction{{
			Action:           "Review recent logs",
			Description:      "No known failure pattern matched; inspect the raw log stream manually.",
			Confidence:       0.3,
			RequiresApproval: false,
		}}
	}

	analysis.AISeverity = heuristicSeverity(errorCount, len(req.Logs))
	analysis.TrendAnalysis = computeTrend(req.Logs)

	switch {
	case errorCount == 0:
		analysis.StatusSuggestion = models.SuggestionReadyForResolution
	case rule != nil:
		analysis.StatusSuggestion = models.SuggestionRootCauseLikely
	default:
		analysis.StatusSuggestion = models.SuggestionNeedsInvestigation
	}

	explanation := fmt.Sprintf(
		"Heuristic analysis of %d log line(s) (%d errors, %d warnings): %s",
		len(req.Logs), errorCount, warningCount, analysis.RootCause,
	)
	return analysis, explanation, nil
}

// bestMatch returns the rule whose keywords hit the most log lines.
func (r *RuleAnalyzer) bestMatch(logs []models.Log) *Rule {
	var best *Rule
	bestHits := 0
	for i := range r.rules {
		hits := 0
		for _, entry := range logs {
			msg := strings.ToLower(entry.Message)
			for _, kw := range r.rules[i].MatchKeywords {
				if strings.Contains(msg, strings.ToLower(kw)) {
					hits++
					break
				}
			}
		}
		if hits > bestHits {
			best = &r.rules[i]
			bestHits = hits
		}
	}
	return best
}

func heuristicConfidence(errorCount, total int) float64 {
	if total == 0 {
		return 0.3
	}
	ratio := float64(errorCount) / float64(total)
	// Rule matches cap out below model-grade confidence.
	return 0.4 + 0.3*ratio
}

func heuristicSeverity(errorCount, total int) models.IncidentSeverity {
	switch {
	case errorCount >= 10 || (total > 0 && errorCount*2 >= total):
		return models.SeverityHigh
	case errorCount > 0:
		return models.SeverityMedium
	}
	return models.SeverityLow
}

// computeTrend compares error density between the older and newer halves of the
// log stream.
func computeTrend(logs []models.Log) *models.TrendAnalysis {
	if len(logs) < 4 {
		return &models.TrendAnalysis{}
	}
	mid := len(logs) / 2
	older, newer := 0, 0
	for i, entry := range logs {
		if entry.Level != models.LogError {
			continue
		}
		if i < mid {
			older++
		} else {
			newer++
		}
	}
	rate := float64(newer-older) / float64(mid)
	return &models.TrendAnalysis{
		IsDegrading:     newer > older,
		DegradationRate: rate,
	}
}

var defaultRules = []Rule{
	{
		ID:            "db-connections",
		MatchKeywords: []string{"connection pool", "too many connections", "deadlock", "query timeout"},
		Category:      models.CategoryDatabase,
		RootCause:     "Database connection exhaustion or long-running queries",
		Actions: []RuleAction{
			{Action: "Restart connection pool", Description: "Recycle the application's database connection pool.", Confidence: 0.6, RequiresApproval: true},
			{Action: "Inspect slow query log", Description: "Identify queries holding connections open.", Confidence: 0.7, RequiresApproval: false},
		},
	},
	{
		ID:            "memory-pressure",
		MatchKeywords: []string{"out of memory", "oom", "heap", "memory limit"},
		Category:      models.CategoryPerformance,
		RootCause:     "Memory pressure or a leak in the affected service",
		Actions: []RuleAction{
			{Action: "Restart service", Description: "Restart the affected service to reclaim memory.", Confidence: 0.6, RequiresApproval: true},
			{Action: "Capture heap profile", Description: "Take a heap profile before restarting to find the leak.", Confidence: 0.65, RequiresApproval: false},
		},
	},
	{
		ID:            "auth-failures",
		MatchKeywords: []string{"unauthorized", "invalid token", "jwt", "certificate", "forbidden"},
		Category:      models.CategoryAuthentication,
		RootCause:     "Expired or misconfigured credentials",
		Actions: []RuleAction{
			{Action: "Rotate credentials", Description: "Reissue the expired token or certificate.", Confidence: 0.6, RequiresApproval: true},
			{Action: "Check clock skew", Description: "Token validation fails when node clocks drift.", Confidence: 0.4, RequiresApproval: false},
		},
	},
	{
		ID:            "network-timeouts",
		MatchKeywords: []string{"timeout", "connection refused", "dns", "unreachable", "reset by peer"},
		Category:      models.CategoryNetwork,
		RootCause:     "Network connectivity failure between the service and a dependency",
		Actions: []RuleAction{
			{Action: "Check upstream health", Description: "Probe the dependency the timeouts point at.", Confidence: 0.7, RequiresApproval: false},
			{Action: "Fail over to replica", Description: "Route traffic away from the unreachable endpoint.", Confidence: 0.5, RequiresApproval: true},
		},
	},
	{
		ID:            "bad-deploy",
		MatchKeywords: []string{"deploy", "rollback", "version mismatch", "migration failed", "startup failed"},
		Category:      models.CategoryDeployment,
		RootCause:     "A recent deployment introduced the failure",
		Actions: []RuleAction{
			{Action: "Roll back deployment", Description: "Revert to the last known-good release.", Confidence: 0.7, RequiresApproval: true},
			{Action: "Diff release changelog", Description: "Review what shipped in the suspect release.", Confidence: 0.6, RequiresApproval: false},
		},
	},
}
