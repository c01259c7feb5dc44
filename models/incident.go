package models

import "time"

// IncidentStatus is the lifecycle state of an incident.
type IncidentStatus string

const (
	StatusOpen          IncidentStatus = "open"
	StatusInvestigating IncidentStatus = "investigating"
	StatusResolved      IncidentStatus = "resolved"
	StatusAutoResolved  IncidentStatus = "auto-resolved"
)

// IsTerminal reports whether no further status transitions are accepted.
func (s IncidentStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusAutoResolved
}

// Valid reports whether s is one of the known status values.
func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInvestigating, StatusResolved, StatusAutoResolved:
		return true
	}
	return false
}

type IncidentSeverity string

const (
	SeverityLow    IncidentSeverity = "low"
	SeverityMedium IncidentSeverity = "medium"
	SeverityHigh   IncidentSeverity = "high"
)

func (s IncidentSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

type IncidentCategory string

const (
	CategoryPerformance    IncidentCategory = "performance"
	CategoryDatabase       IncidentCategory = "database"
	CategoryAuthentication IncidentCategory = "authentication"
	CategoryNetwork        IncidentCategory = "network"
	CategoryDeployment     IncidentCategory = "deployment"
)

func (c IncidentCategory) Valid() bool {
	switch c {
	case CategoryPerformance, CategoryDatabase, CategoryAuthentication, CategoryNetwork, CategoryDeployment:
		return true
	}
	return false
}

// Actor identifies who performed an operation.
type Actor string

const (
	ActorSystem   Actor = "system"
	ActorEngineer Actor = "engineer"
	ActorAI       Actor = "ai"
)

// IncidentMetadata holds aggregate counters maintained alongside an incident.
type IncidentMetadata struct {
	FirstDetectedAt time.Time `firestore:"first_detected_at" json:"firstDetectedAt"`
	LastUpdatedAt   time.Time `firestore:"last_updated_at" json:"lastUpdatedAt"`
	LogCount        int       `firestore:"log_count" json:"logCount"`
	ErrorCount      int       `firestore:"error_count" json:"errorCount"`
}

// Incident represents a tracked problem, optionally linked to a registered service.
type Incident struct {
	ID          string           `firestore:"id" json:"id"`
	Title       string           `firestore:"title" json:"title"`
	Description string           `firestore:"description" json:"description"`
	ServiceID   string           `firestore:"service_id,omitempty" json:"serviceId,omitempty"`
	ServiceName string           `firestore:"service_name,omitempty" json:"serviceName,omitempty"`
	Severity    IncidentSeverity `firestore:"severity" json:"severity"`
	Category    IncidentCategory `firestore:"category" json:"category"`
	Source      Actor            `firestore:"source" json:"source"`
	Status      IncidentStatus   `firestore:"status" json:"status"`

	AIAnalysis *AIAnalysis     `firestore:"ai_analysis,omitempty" json:"aiAnalysis,omitempty"`
	Timeline   []TimelineEvent `firestore:"timeline" json:"timeline"`

	ResolvedAt     *time.Time `firestore:"resolved_at,omitempty" json:"resolvedAt,omitempty"`
	ResolvedBy     string     `firestore:"resolved_by,omitempty" json:"resolvedBy,omitempty"`
	ResolutionTime int64      `firestore:"resolution_time,omitempty" json:"resolutionTime,omitempty"` // milliseconds

	Metadata IncidentMetadata `firestore:"metadata" json:"metadata"`

	// Version increments on every mutation; used for optimistic concurrency.
	Version   int64     `firestore:"version" json:"version"`
	CreatedAt time.Time `firestore:"created_at" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updated_at" json:"updatedAt"`
}

// LatestTimelineAt returns the timestamp of the most recent timeline entry.
func (i *Incident) LatestTimelineAt() time.Time {
	if len(i.Timeline) == 0 {
		return time.Time{}
	}
	return i.Timeline[len(i.Timeline)-1].Timestamp
}

type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

func (l LogLevel) Valid() bool {
	switch l {
	case LogInfo, LogWarning, LogError:
		return true
	}
	return false
}

// Log is a single diagnostic line attached to an incident. Append-only.
type Log struct {
	ID         string    `firestore:"id" json:"id"`
	IncidentID string    `firestore:"incident_id" json:"incidentId"`
	Message    string    `firestore:"message" json:"message"`
	Level      LogLevel  `firestore:"level" json:"level"`
	CreatedAt  time.Time `firestore:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `firestore:"updated_at" json:"updatedAt"`
}

// IncidentSummary carries log aggregates computed at read time.
type IncidentSummary struct {
	TotalLogs   int   `json:"totalLogs"`
	ErrorLogs   int   `json:"errorLogs"`
	WarningLogs int   `json:"warningLogs"`
	Duration    int64 `json:"duration"` // milliseconds
}

// IncidentDetail is the full read model for a single incident.
type IncidentDetail struct {
	Incident
	Logs    []Log           `json:"logs"`
	Summary IncidentSummary `json:"summary"`
}

// IncidentFilter narrows list queries. Zero values mean no constraint.
type IncidentFilter struct {
	Status    IncidentStatus
	Severity  IncidentSeverity
	Category  IncidentCategory
	ServiceID string
	Limit     int
}

// CreateIncidentRequest is the request body for creating an incident.
type CreateIncidentRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	ServiceID   string           `json:"serviceId"`
	Severity    IncidentSeverity `json:"severity"`
	Category    IncidentCategory `json:"category"`
	Source      Actor            `json:"source"`
}

// UpdateStatusRequest is the request body for a status transition.
type UpdateStatusRequest struct {
	Status IncidentStatus `json:"status" binding:"required"`
	Notes  string         `json:"notes"`
	// ExpectedVersion, when non-zero, rejects the update unless it matches the
	// incident's current version.
	ExpectedVersion int64 `json:"expectedVersion"`
}

// ApproveActionRequest identifies a suggested action to approve. ActionID is the
// stable identifier issued when an analysis is attached.
//
// Deprecated: ActionIndex. Suggested-action lists are regenerated on each
// analysis, so positions are not stable.
type ApproveActionRequest struct {
	ActionID    string `json:"actionId"`
	ActionIndex *int   `json:"actionIndex,omitempty"`
}

// AppendLogRequest is the request body for appending a log line.
type AppendLogRequest struct {
	Message string   `json:"message" binding:"required"`
	Level   LogLevel `json:"level"`
}
