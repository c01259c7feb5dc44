package models

import "time"

// SuggestedAction is an AI-proposed remediation step. Actions are inert until an
// operator approves them; nothing in this system executes them.
type SuggestedAction struct {
	ID               string  `firestore:"id" json:"id"`
	Action           string  `firestore:"action" json:"action"`
	Description      string  `firestore:"description" json:"description"`
	Confidence       float64 `firestore:"confidence" json:"confidence"`
	RequiresApproval bool    `firestore:"requires_approval" json:"requiresApproval"`

	Approved   bool       `firestore:"approved" json:"approved"`
	ApprovedAt *time.Time `firestore:"approved_at,omitempty" json:"approvedAt,omitempty"`
	ApprovedBy string     `firestore:"approved_by,omitempty" json:"approvedBy,omitempty"`
}

// TrendAnalysis describes whether the incident's log stream is getting worse.
type TrendAnalysis struct {
	IsDegrading     bool    `firestore:"is_degrading" json:"isDegrading"`
	DegradationRate float64 `firestore:"degradation_rate" json:"degradationRate"`
}

// StatusSuggestion is the analyzer's opinion on where the incident stands.
type StatusSuggestion string

const (
	SuggestionNeedsInvestigation StatusSuggestion = "needs_investigation"
	SuggestionRootCauseLikely    StatusSuggestion = "likely_root_cause_identified"
	SuggestionReadyForResolution StatusSuggestion = "ready_for_resolution"
)

// AIAnalysis is the structured suggestion attached to an incident. The latest
// analysis overwrites any prior snapshot.
type AIAnalysis struct {
	RootCause           string            `firestore:"root_cause,omitempty" json:"rootCause,omitempty"`
	RootCauseProbability float64          `firestore:"root_cause_probability,omitempty" json:"rootCauseProbability,omitempty"`
	RelatedIncidentIDs  []string          `firestore:"related_incident_ids,omitempty" json:"relatedIncidentIds,omitempty"`
	SuggestedActions    []SuggestedAction `firestore:"suggested_actions,omitempty" json:"suggestedActions,omitempty"`
	TrendAnalysis       *TrendAnalysis    `firestore:"trend_analysis,omitempty" json:"trendAnalysis,omitempty"`
	AISeverity          IncidentSeverity  `firestore:"ai_severity,omitempty" json:"aiSeverity,omitempty"`
	AICategory          IncidentCategory  `firestore:"ai_category,omitempty" json:"aiCategory,omitempty"`
	StatusSuggestion    StatusSuggestion  `firestore:"status_suggestion,omitempty" json:"statusSuggestion,omitempty"`
	Provider            string            `firestore:"provider,omitempty" json:"provider,omitempty"`
	AnalyzedAt          time.Time         `firestore:"analyzed_at" json:"analyzedAt"`
}

// ActionByID returns the suggested action with the given id, or nil.
func (a *AIAnalysis) ActionByID(id string) *SuggestedAction {
	if a == nil {
		return nil
	}
	for i := range a.SuggestedActions {
		if a.SuggestedActions[i].ID == id {
			return &a.SuggestedActions[i]
		}
	}
	return nil
}

// IncidentRef is the compact incident header echoed in analysis responses.
type IncidentRef struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Status   IncidentStatus   `json:"status"`
	Severity IncidentSeverity `json:"severity"`
	Category IncidentCategory `json:"category"`
}

// IncidentAnalysisResponse is the single wire contract for an analysis result,
// returned identically by the REST and JSON-RPC surfaces.
type IncidentAnalysisResponse struct {
	Incident     IncidentRef `json:"incident"`
	AIAnalysis   AIAnalysis  `json:"aiAnalysis"`
	Explanation  string      `json:"explanation"`
	LogsAnalyzed int         `json:"logsAnalyzed"`
	ErrorCount   int         `json:"errorCount"`
	WarningCount int         `json:"warningCount"`
}
