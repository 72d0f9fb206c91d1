package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/group/event"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
	"github.com/ajofund/ajo/internal/storage"
	"github.com/ajofund/ajo/internal/storage/bbolt"
)

type allowAll struct{}

func (allowAll) Approved(context.Context, string) error { return nil }

type denyAll struct{}

func (denyAll) Approved(context.Context, string) error {
	return apperrors.New(apperrors.CodeUnauthorized, "denied")
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	svc   *Service
	store storage.Store
	sink  *event.CaptureSink
	clock *testClock
	ok    auth.Approver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := bbolt.Open(filepath.Join(t.TempDir(), "ajo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	clock := &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	sink := &event.CaptureSink{}
	svc := New(store, WithClock(clock.Now), WithEventSink(sink))
	return &fixture{svc: svc, store: store, sink: sink, clock: clock, ok: allowAll{}}
}

func defaultInput() group.CreateGroupInput {
	return group.CreateGroupInput{
		Creator:            "alice",
		ContributionAmount: 100_000_000,
		CycleDuration:      604800 * time.Second,
		MaxMembers:         3,
		GracePeriod:        86400 * time.Second,
		PenaltyRate:        5,
	}
}

// createFullGroup creates a 3-member group and admits bob and carol.
func (f *fixture) createFullGroup(t *testing.T) uint64 {
	t.Helper()
	ctx := context.Background()
	id, err := f.svc.CreateGroup(ctx, f.ok, defaultInput())
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	for _, member := range []string{"bob", "carol"} {
		if err := f.svc.JoinGroup(ctx, f.ok, id, member); err != nil {
			t.Fatalf("join %s: %v", member, err)
		}
	}
	return id
}

// contributeAll makes every member contribute on time for the current cycle.
func (f *fixture) contributeAll(t *testing.T, id uint64) {
	t.Helper()
	ctx := context.Background()
	for _, member := range []string{"alice", "bob", "carol"} {
		if err := f.svc.Contribute(ctx, f.ok, id, member); err != nil {
			t.Fatalf("contribute %s: %v", member, err)
		}
	}
}

func wantCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if !apperrors.IsCode(err, code) {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}
