package models

import "time"

// EventKind tags the shape of a timeline event's details.
type EventKind string

const (
	EventStatusChange EventKind = "status_change"
	EventApproval     EventKind = "approval"
	EventHealthCheck  EventKind = "health_check"
	EventCreated      EventKind = "created"
	EventFreeform     EventKind = "freeform"
)

// StatusChangeDetails records a status transition.
type StatusChangeDetails struct {
	From  IncidentStatus `firestore:"from" json:"from"`
	To    IncidentStatus `firestore:"to" json:"to"`
	Notes string         `firestore:"notes,omitempty" json:"notes,omitempty"`
}

// ApprovalDetails records an operator approving a suggested action.
type ApprovalDetails struct {
	ActionID   string  `firestore:"action_id" json:"actionId"`
	Action     string  `firestore:"action" json:"action"`
	Confidence float64 `firestore:"confidence" json:"confidence"`
}

// HealthCheckDetails records a probe result that raised or recovered an incident.
type HealthCheckDetails struct {
	Healthy      bool   `firestore:"healthy" json:"healthy"`
	ResponseTime int64  `firestore:"response_time" json:"responseTime"`
	Error        string `firestore:"error,omitempty" json:"error,omitempty"`
	// HealthData may hold raw upstream response bodies (sometimes HTML) and is
	// stripped from history payloads.
	HealthData string `firestore:"health_data,omitempty" json:"healthData,omitempty"`
}

// EventDetails is a tagged union of the known detail shapes. Exactly one of the
// typed fields is set, matching Kind. Extra is a free-form fallback retained for
// events written before the shapes were pinned down.
//
// Deprecated: Extra. New writers must use a typed shape.
type EventDetails struct {
	Kind         EventKind            `firestore:"kind" json:"kind"`
	StatusChange *StatusChangeDetails `firestore:"status_change,omitempty" json:"statusChange,omitempty"`
	Approval     *ApprovalDetails     `firestore:"approval,omitempty" json:"approval,omitempty"`
	HealthCheck  *HealthCheckDetails  `firestore:"health_check,omitempty" json:"healthCheck,omitempty"`
	Extra        map[string]any       `firestore:"extra,omitempty" json:"extra,omitempty"`
}

// TimelineEvent is one entry in an incident's append-only audit trail.
type TimelineEvent struct {
	Timestamp time.Time      `firestore:"timestamp" json:"timestamp"`
	Event     string         `firestore:"event" json:"event"`
	Status    IncidentStatus `firestore:"status" json:"status"`
	Actor     Actor          `firestore:"actor" json:"actor"`
	Details   *EventDetails  `firestore:"details,omitempty" json:"details,omitempty"`
}

// Redacted returns a copy safe for history payloads: raw health payloads and the
// legacy healthData extra key are dropped.
func (e TimelineEvent) Redacted() TimelineEvent {
	if e.Details == nil {
		return e
	}
	d := *e.Details
	if d.HealthCheck != nil && d.HealthCheck.HealthData != "" {
		hc := *d.HealthCheck
		hc.HealthData = ""
		d.HealthCheck = &hc
	}
	if _, ok := d.Extra["healthData"]; ok {
		extra := make(map[string]any, len(d.Extra)-1)
		for k, v := range d.Extra {
			if k != "healthData" {
				extra[k] = v
			}
		}
		d.Extra = extra
	}
	e.Details = &d
	return e
}
