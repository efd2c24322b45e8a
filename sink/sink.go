// Package sink forwards shaped analytics events to the pipeline as
// CloudEvents.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"analytics-service/models"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

const (
	EventSource     = "analytics-service"
	eventTypePrefix = "com.storefront.analytics."

	ExtEmitTag   = "emittag"
	ExtVisitorID = "visitorid"
)

// Sink receives the events a render emitted.
type Sink interface {
	Emit(ctx context.Context, visitorID string, events ...models.NormalizedEvent) error
	Close() error
}

// NewCloudEvent wraps ev in a CloudEvent. The event name becomes the subject
// and the emit tag and visitor id become extensions.
func NewCloudEvent(visitorID string, ev models.NormalizedEvent) (cloudevents.Event, error) {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetSource(EventSource)
	e.SetType(eventTypePrefix + string(ev.Kind))
	e.SetTime(time.Now().UTC())
	e.SetSpecVersion(cloudevents.VersionV1)
	e.SetSubject(ev.Name)

	if ev.EmitTag != "" {
		e.SetExtension(ExtEmitTag, ev.EmitTag)
	}
	if visitorID != "" {
		e.SetExtension(ExtVisitorID, visitorID)
	}

	if err := e.SetData(cloudevents.ApplicationJSON, ev); err != nil {
		return e, fmt.Errorf("set event data: %w", err)
	}
	return e, nil
}

func encode(visitorID string, ev models.NormalizedEvent) (cloudevents.Event, []byte, error) {
	e, err := NewCloudEvent(visitorID, ev)
	if err != nil {
		return e, nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return e, nil, fmt.Errorf("marshal cloudevent: %w", err)
	}
	return e, data, nil
}

// Type selects the sink implementation.
type Type string

const (
	TypeLog   Type = "log"
	TypeKafka Type = "kafka"
	TypeSNS   Type = "sns"
	TypeNone  Type = "none"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeLog, TypeKafka, TypeSNS, TypeNone:
		return t, nil
	case "":
		return TypeLog, nil
	default:
		return "", fmt.Errorf("unknown sink type %q", s)
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Emit(context.Context, string, ...models.NormalizedEvent) error { return nil }
func (Nop) Close() error                                                  { return nil }
