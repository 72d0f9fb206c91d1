package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestTypeDomain(t *testing.T) {
	cases := []struct {
		eventType Type
		want      string
	}{
		{TypeGroupCreated, "group"},
		{TypePayoutExecuted, "group"},
		{TypeRefundRequested, "refund"},
		{Type("bare"), "bare"},
	}
	for _, tc := range cases {
		if got := tc.eventType.Domain(); got != tc.want {
			t.Errorf("%s: expected domain %q, got %q", tc.eventType, tc.want, got)
		}
	}
}

func TestEmitterAssignsIdentityAndTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sink := &CaptureSink{}
	emitter := NewEmitter(sink, func() time.Time { return now })

	emitter.Emit(context.Background(), 7, TypeMemberJoined, MemberJoinedPayload{Member: "bob", MemberCount: 2})

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	evt := events[0]
	if evt.ID == "" {
		t.Fatal("expected assigned event id")
	}
	if evt.GroupID != 7 || evt.Type != TypeMemberJoined || !evt.Timestamp.Equal(now) {
		t.Fatalf("event mismatch: %+v", evt)
	}
	var payload MemberJoinedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Member != "bob" || payload.MemberCount != 2 {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestEmitterDropsInvalidType(t *testing.T) {
	sink := &CaptureSink{}
	emitter := NewEmitter(sink, nil)
	emitter.Emit(context.Background(), 1, Type("  "), nil)
	if len(sink.Events()) != 0 {
		t.Fatal("expected invalid event type to be dropped")
	}
}

func TestNilEmitterAndSinkAreSafe(t *testing.T) {
	var emitter *Emitter
	emitter.Emit(context.Background(), 1, TypeGroupCreated, nil)

	NewEmitter(nil, nil).Emit(context.Background(), 1, TypeGroupCreated, nil)
}
