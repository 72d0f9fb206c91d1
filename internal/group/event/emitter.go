package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink receives emitted events. Delivery is best effort; sinks must not
// block engine operations.
type Sink interface {
	Deliver(ctx context.Context, evt Event)
}

// Emitter assigns ids and timestamps to events and hands them to a sink.
type Emitter struct {
	sink Sink
	now  func() time.Time
}

// NewEmitter builds an emitter around the given sink. A nil sink drops
// every event.
func NewEmitter(sink Sink, now func() time.Time) *Emitter {
	if now == nil {
		now = time.Now
	}
	return &Emitter{sink: sink, now: now}
}

// Emit marshals the payload and delivers the event. Marshal failures drop
// the event; notifications never fail engine operations.
func (e *Emitter) Emit(ctx context.Context, groupID uint64, eventType Type, payload any) {
	if e == nil || e.sink == nil {
		return
	}
	if !eventType.IsValid() {
		return
	}
	var payloadJSON []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			slog.Warn("drop event with unmarshalable payload", "type", eventType, "error", err)
			return
		}
		payloadJSON = encoded
	}
	e.sink.Deliver(ctx, Event{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		Type:        eventType,
		Timestamp:   e.now().UTC(),
		PayloadJSON: payloadJSON,
	})
}

// LogSink writes events to a slog logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink builds a sink over the given logger, defaulting to slog's
// default logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Deliver logs the event with structured attributes.
func (s *LogSink) Deliver(ctx context.Context, evt Event) {
	s.logger.InfoContext(ctx, "group event",
		"event_id", evt.ID,
		"group_id", evt.GroupID,
		"type", evt.Type,
		"payload", string(evt.PayloadJSON),
	)
}

// CaptureSink collects events in memory for tests.
type CaptureSink struct {
	mu     sync.Mutex
	events []Event
}

// Deliver appends the event to the capture buffer.
func (s *CaptureSink) Deliver(_ context.Context, evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

// Events returns a copy of the captured events.
func (s *CaptureSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Types returns the captured event types in emission order.
func (s *CaptureSink) Types() []Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Type, 0, len(s.events))
	for _, evt := range s.events {
		out = append(out, evt.Type)
	}
	return out
}
