package service

import (
	"context"
	"testing"

	apperrors "github.com/ajofund/ajo/internal/platform/errors"
)

func TestInitializeOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Initialize(ctx, f.ok, "root"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	err := f.svc.Initialize(ctx, f.ok, "other")
	wantCode(t, err, apperrors.CodeAlreadyInitialized)

	err = f.svc.Initialize(ctx, f.ok, "")
	wantCode(t, err, apperrors.CodeUnauthorized)
}

func TestPauseRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No admin set yet.
	err := f.svc.Pause(ctx, f.ok, "root")
	wantCode(t, err, apperrors.CodeUnauthorizedPause)

	if err := f.svc.Initialize(ctx, f.ok, "root"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	err = f.svc.Pause(ctx, f.ok, "alice")
	wantCode(t, err, apperrors.CodeUnauthorizedPause)
	err = f.svc.Unpause(ctx, f.ok, "alice")
	wantCode(t, err, apperrors.CodeUnauthorizedUnpause)

	err = f.svc.Pause(ctx, denyAll{}, "root")
	wantCode(t, err, apperrors.CodeUnauthorized)
}

func TestPauseBlocksMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.Initialize(ctx, f.ok, "root"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	id := f.createFullGroup(t)

	if err := f.svc.Pause(ctx, f.ok, "root"); err != nil {
		t.Fatalf("pause: %v", err)
	}
	paused, err := f.svc.IsPaused(ctx)
	if err != nil || !paused {
		t.Fatalf("expected paused engine, got %v err=%v", paused, err)
	}

	_, err = f.svc.CreateGroup(ctx, f.ok, defaultInput())
	wantCode(t, err, apperrors.CodeEnginePaused)
	err = f.svc.JoinGroup(ctx, f.ok, id, "dave")
	wantCode(t, err, apperrors.CodeEnginePaused)
	err = f.svc.Contribute(ctx, f.ok, id, "bob")
	wantCode(t, err, apperrors.CodeEnginePaused)
	err = f.svc.ExecutePayout(ctx, id)
	wantCode(t, err, apperrors.CodeEnginePaused)
	err = f.svc.CancelGroup(ctx, f.ok, id, "alice")
	wantCode(t, err, apperrors.CodeEnginePaused)
	err = f.svc.RequestRefund(ctx, f.ok, id, "bob")
	wantCode(t, err, apperrors.CodeEnginePaused)
	err = f.svc.ExecuteRefund(ctx, id)
	wantCode(t, err, apperrors.CodeEnginePaused)
	err = f.svc.EmergencyRefund(ctx, f.ok, id, "root")
	wantCode(t, err, apperrors.CodeEnginePaused)

	// Reads still work while paused.
	if _, err := f.svc.GetGroup(ctx, id); err != nil {
		t.Fatalf("get group while paused: %v", err)
	}
	if _, err := f.svc.GetGroupStatus(ctx, id); err != nil {
		t.Fatalf("get status while paused: %v", err)
	}

	if err := f.svc.Unpause(ctx, f.ok, "root"); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if err := f.svc.Contribute(ctx, f.ok, id, "bob"); err != nil {
		t.Fatalf("contribute after unpause: %v", err)
	}
}
