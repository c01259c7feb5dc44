package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/pulsedeck/backend/models"
)

const incidentEventsTopic = "incident-events"

// Incident event types published to Kafka.
const (
	EventIncidentCreated = "incident.created"
	EventStatusChanged   = "incident.status_changed"
	EventActionApproved  = "incident.action_approved"
)

// IncidentEvent is the message published on incident lifecycle changes.
type IncidentEvent struct {
	Type       string                `json:"type"`
	IncidentID string                `json:"incident_id"`
	Status     models.IncidentStatus `json:"status"`
	Actor      models.Actor          `json:"actor"`
	Timestamp  time.Time             `json:"timestamp"`
}

// EventPublisher writes incident lifecycle events to Kafka. A nil publisher is
// valid and publishes nothing, so event streaming stays optional.
type EventPublisher struct {
	writer *kafka.Writer
}

// NewEventPublisher returns nil when no brokers are configured.
func NewEventPublisher(brokers []string) *EventPublisher {
	if len(brokers) == 0 {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        incidentEventsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	log.Printf("[EventPublisher] publishing incident events to %v", brokers)
	return &EventPublisher{writer: writer}
}

// Publish sends the event best-effort. Failures are logged, never propagated:
// event streaming must not break the request path.
func (p *EventPublisher) Publish(ctx context.Context, evt IncidentEvent) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[EventPublisher] failed to marshal event: %v", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(evt.IncidentID),
		Value: payload,
		Time:  evt.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("[EventPublisher] failed to publish %s for incident %s: %v", evt.Type, evt.IncidentID, err)
	}
}

func (p *EventPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
