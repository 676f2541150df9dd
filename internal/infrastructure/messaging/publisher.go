// Package messaging publishes gate domain events to Amazon EventBridge.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gates-backend/internal/domain/gate"
)

// Detail types of the published events.
const (
	DetailTypeStateChanged = "GateStateChanged"
	DetailTypeCommentAdded = "GateCommentAdded"
)

// PutEventsAPI is the subset of the EventBridge client the publisher uses.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

var _ PutEventsAPI = (*eventbridge.Client)(nil)

// detail is the JSON document carried by every event.
type detail struct {
	EventID     string `json:"event_id"`
	EventType   string `json:"event_type"`
	Group       string `json:"group"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
	State       string `json:"state,omitempty"`
	CommentID   string `json:"comment_id,omitempty"`
	OccurredAt  string `json:"occurred_at"`
	TraceID     string `json:"trace_id,omitempty"`
}

// EventBridgePublisher sends one PutEvents entry per domain event.
type EventBridgePublisher struct {
	client   PutEventsAPI
	eventBus string
	source   string
	logger   *zap.Logger
}

// NewEventBridgePublisher creates a publisher for eventBus. Empty values fall
// back to the default bus and the "gates" source.
func NewEventBridgePublisher(client PutEventsAPI, eventBus, source string, logger *zap.Logger) *EventBridgePublisher {
	if eventBus == "" {
		eventBus = "default"
	}
	if source == "" {
		source = "gates"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBridgePublisher{
		client:   client,
		eventBus: eventBus,
		source:   source,
		logger:   logger.Named("events"),
	}
}

// PublishStateChanged publishes a GateStateChanged event.
func (p *EventBridgePublisher) PublishStateChanged(ctx context.Context, event gate.StateChanged) error {
	return p.publish(ctx, DetailTypeStateChanged, event.Key, event.Timestamp, func(d *detail) {
		d.State = event.State.String()
	})
}

// PublishCommentAdded publishes a GateCommentAdded event.
func (p *EventBridgePublisher) PublishCommentAdded(ctx context.Context, event gate.CommentAdded) error {
	return p.publish(ctx, DetailTypeCommentAdded, event.Key, event.Timestamp, func(d *detail) {
		d.CommentID = event.CommentID
	})
}

func (p *EventBridgePublisher) publish(ctx context.Context, detailType string, key gate.Key, at time.Time, fill func(*detail)) error {
	d := detail{
		EventID:     uuid.NewString(),
		EventType:   detailType,
		Group:       key.Group,
		Service:     key.Service,
		Environment: key.Environment,
		OccurredAt:  at.UTC().Format(time.RFC3339Nano),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		d.TraceID = sc.TraceID().String()
	}
	fill(&d)

	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal %s detail: %w", detailType, err)
	}

	output, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			EventBusName: aws.String(p.eventBus),
			Source:       aws.String(p.source),
			DetailType:   aws.String(detailType),
			Detail:       aws.String(string(body)),
			Time:         aws.Time(at),
			Resources:    []string{key.String()},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to put %s event: %w", detailType, err)
	}
	if output.FailedEntryCount > 0 {
		for _, entry := range output.Entries {
			if entry.ErrorCode != nil {
				return fmt.Errorf("%s event rejected: %s: %s", detailType,
					aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
			}
		}
		return fmt.Errorf("%s event rejected", detailType)
	}

	p.logger.Debug("event published",
		zap.String("detail_type", detailType),
		zap.String("gate", key.String()),
		zap.String("event_id", d.EventID),
	)
	return nil
}
