package service

import (
	"context"
	"testing"
	"time"

	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/group/event"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
)

func TestCreateGroupAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		id, err := f.svc.CreateGroup(ctx, f.ok, defaultInput())
		if err != nil {
			t.Fatalf("create group: %v", err)
		}
		if id != want {
			t.Fatalf("expected id %d, got %d", want, id)
		}
		g, err := f.svc.GetGroup(ctx, id)
		if err != nil {
			t.Fatalf("get group: %v", err)
		}
		if len(g.Members) != 1 || g.Members[0] != "alice" {
			t.Fatalf("expected creator as members[0], got %v", g.Members)
		}
	}
}

func TestCreateGroupValidatesBeforeApproval(t *testing.T) {
	f := newFixture(t)
	input := defaultInput()
	input.ContributionAmount = 0

	// Validation precedes the approval capability, so even a denying
	// approver sees the validation code.
	_, err := f.svc.CreateGroup(context.Background(), denyAll{}, input)
	wantCode(t, err, apperrors.CodeContributionAmountZero)
}

func TestCreateGroupRequiresApproval(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateGroup(context.Background(), denyAll{}, defaultInput())
	wantCode(t, err, apperrors.CodeUnauthorized)

	_, err = f.svc.CreateGroup(context.Background(), nil, defaultInput())
	wantCode(t, err, apperrors.CodeUnauthorized)
}

func TestJoinGroupRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)

	err := f.svc.JoinGroup(ctx, f.ok, id, "bob")
	wantCode(t, err, apperrors.CodeAlreadyMember)

	err = f.svc.JoinGroup(ctx, f.ok, id, "dave")
	wantCode(t, err, apperrors.CodeMaxMembersExceeded)

	err = f.svc.JoinGroup(ctx, f.ok, 99, "dave")
	wantCode(t, err, apperrors.CodeGroupNotFound)

	// Membership list is unchanged after rejected joins.
	members, err := f.svc.ListMembers(ctx, id)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %v", members)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, members)
		}
	}
}

func TestJoinCancelledGroupRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.svc.CreateGroup(ctx, f.ok, defaultInput())
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := f.svc.CancelGroup(ctx, f.ok, id, "alice"); err != nil {
		t.Fatalf("cancel group: %v", err)
	}

	err = f.svc.JoinGroup(ctx, f.ok, id, "bob")
	wantCode(t, err, apperrors.CodeGroupCancelled)

	err = f.svc.Contribute(ctx, f.ok, id, "alice")
	wantCode(t, err, apperrors.CodeGroupCancelled)
}

func TestIsMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)

	member, err := f.svc.IsMember(ctx, id, "bob")
	if err != nil || !member {
		t.Fatalf("expected bob to be a member, got %v err=%v", member, err)
	}
	member, err = f.svc.IsMember(ctx, id, "dave")
	if err != nil || member {
		t.Fatalf("expected dave not to be a member, got %v err=%v", member, err)
	}
}

func TestGroupMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)

	_, err := f.svc.GetGroupMetadata(ctx, id)
	wantCode(t, err, apperrors.CodeNotFound)

	md := group.GroupMetadata{Name: "lagos circle", Description: "weekly savings", Rules: "contribute before sunday"}
	err = f.svc.SetGroupMetadata(ctx, f.ok, id, "bob", md)
	wantCode(t, err, apperrors.CodeUnauthorized)

	if err := f.svc.SetGroupMetadata(ctx, f.ok, id, "alice", md); err != nil {
		t.Fatalf("set metadata: %v", err)
	}
	got, err := f.svc.GetGroupMetadata(ctx, id)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if got.Name != md.Name || got.Description != md.Description || got.Rules != md.Rules {
		t.Fatalf("metadata mismatch: %+v", got)
	}

	long := md
	long.Rules = string(make([]byte, group.MaxMetadataRulesLen+1))
	err = f.svc.SetGroupMetadata(ctx, f.ok, id, "alice", long)
	wantCode(t, err, apperrors.CodeMetadataTooLong)
}

func TestCreateAndJoinEmitEvents(t *testing.T) {
	f := newFixture(t)
	f.createFullGroup(t)

	types := f.sink.Types()
	want := []event.Type{event.TypeGroupCreated, event.TypeMemberJoined, event.TypeMemberJoined}
	if len(types) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected event order %v, got %v", want, types)
		}
	}
}

func TestCreateGroupTimestampsFromClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Advance(3 * time.Hour)

	id, err := f.svc.CreateGroup(ctx, f.ok, defaultInput())
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	g, err := f.svc.GetGroup(ctx, id)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if !g.CreatedAt.Equal(f.clock.Now()) || !g.CycleStartTime.Equal(f.clock.Now()) {
		t.Fatalf("expected clock-pinned timestamps, got %v / %v", g.CreatedAt, g.CycleStartTime)
	}
}
