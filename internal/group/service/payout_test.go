package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/group/event"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
)

const (
	cycleDuration = 604800 * time.Second
	gracePeriod   = 86400 * time.Second
)

func lastPayoutAmount(t *testing.T, sink *event.CaptureSink) (string, int64) {
	t.Helper()
	events := sink.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == event.TypePayoutExecuted {
			var payload event.PayoutExecutedPayload
			if err := json.Unmarshal(events[i].PayloadJSON, &payload); err != nil {
				t.Fatalf("unmarshal payout payload: %v", err)
			}
			return payload.Recipient, payload.Amount
		}
	}
	t.Fatal("no payout event emitted")
	return "", 0
}

func TestExecutePayoutWaitsForGraceEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)
	f.contributeAll(t, id)

	err := f.svc.ExecutePayout(ctx, id)
	wantCode(t, err, apperrors.CodeOutsideCycleWindow)

	// Still inside the grace window.
	f.clock.Advance(cycleDuration + gracePeriod - time.Second)
	err = f.svc.ExecutePayout(ctx, id)
	wantCode(t, err, apperrors.CodeOutsideCycleWindow)

	f.clock.Advance(time.Second)
	if err := f.svc.ExecutePayout(ctx, id); err != nil {
		t.Fatalf("execute payout: %v", err)
	}
}

func TestExecutePayoutRequiresAllContributions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)

	if err := f.svc.Contribute(ctx, f.ok, id, "alice"); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	f.clock.Advance(cycleDuration + gracePeriod)
	err := f.svc.ExecutePayout(ctx, id)
	wantCode(t, err, apperrors.CodeIncompleteContributions)

	// The failed payout left the rotation untouched.
	g, err := f.svc.GetGroup(ctx, id)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if g.PayoutIndex != 0 || g.CurrentCycle != 1 {
		t.Fatalf("expected untouched rotation, got index=%d cycle=%d", g.PayoutIndex, g.CurrentCycle)
	}
}

func TestExecutePayoutPaysBaseAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)
	f.contributeAll(t, id)

	f.clock.Advance(cycleDuration + gracePeriod)
	if err := f.svc.ExecutePayout(ctx, id); err != nil {
		t.Fatalf("execute payout: %v", err)
	}

	recipient, amount := lastPayoutAmount(t, f.sink)
	if recipient != "alice" || amount != 300_000_000 {
		t.Fatalf("expected alice paid 300000000, got %s paid %d", recipient, amount)
	}

	g, err := f.svc.GetGroup(ctx, id)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if g.CurrentCycle != 2 || g.PayoutIndex != 1 {
		t.Fatalf("expected cycle 2 index 1, got cycle=%d index=%d", g.CurrentCycle, g.PayoutIndex)
	}
	if !g.CycleStartTime.Equal(f.clock.Now()) {
		t.Fatalf("expected fresh cycle start, got %v", g.CycleStartTime)
	}

	paid, err := f.svc.HasReceivedPayout(ctx, id, "alice")
	if err != nil || !paid {
		t.Fatalf("expected payout flag for alice, got %v err=%v", paid, err)
	}
}

func TestExecutePayoutIncludesPenaltyPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)

	// bob pays late, alice and carol on time.
	for _, member := range []string{"alice", "carol"} {
		if err := f.svc.Contribute(ctx, f.ok, id, member); err != nil {
			t.Fatalf("contribute %s: %v", member, err)
		}
	}
	f.clock.Advance(cycleDuration + time.Hour)
	if err := f.svc.Contribute(ctx, f.ok, id, "bob"); err != nil {
		t.Fatalf("late contribute: %v", err)
	}

	f.clock.Advance(gracePeriod - time.Hour)
	if err := f.svc.ExecutePayout(ctx, id); err != nil {
		t.Fatalf("execute payout: %v", err)
	}

	_, amount := lastPayoutAmount(t, f.sink)
	if amount != 305_000_000 {
		t.Fatalf("expected payout with penalty bonus 305000000, got %d", amount)
	}

	types := f.sink.Types()
	sawPenaltyDistribution := false
	for _, eventType := range types {
		if eventType == event.TypePenaltyDistributed {
			sawPenaltyDistribution = true
		}
	}
	if !sawPenaltyDistribution {
		t.Fatalf("expected penalty distribution event, got %v", types)
	}
}

func TestFullRotationCompletesGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)

	recipients := []string{"alice", "bob", "carol"}
	for cycle := 1; cycle <= 3; cycle++ {
		f.contributeAll(t, id)
		f.clock.Advance(cycleDuration + gracePeriod)
		if err := f.svc.ExecutePayout(ctx, id); err != nil {
			t.Fatalf("payout cycle %d: %v", cycle, err)
		}
		recipient, _ := lastPayoutAmount(t, f.sink)
		if recipient != recipients[cycle-1] {
			t.Fatalf("cycle %d: expected recipient %s, got %s", cycle, recipients[cycle-1], recipient)
		}
	}

	complete, err := f.svc.IsComplete(ctx, id)
	if err != nil || !complete {
		t.Fatalf("expected complete group, got %v err=%v", complete, err)
	}
	g, err := f.svc.GetGroup(ctx, id)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if g.State != group.StateComplete || g.PayoutIndex != 3 {
		t.Fatalf("expected terminal complete state, got state=%s index=%d", g.State, g.PayoutIndex)
	}

	// No further mutations succeed.
	err = f.svc.Contribute(ctx, f.ok, id, "alice")
	wantCode(t, err, apperrors.CodeGroupComplete)
	err = f.svc.ExecutePayout(ctx, id)
	wantCode(t, err, apperrors.CodeGroupComplete)
	err = f.svc.JoinGroup(ctx, f.ok, id, "dave")
	wantCode(t, err, apperrors.CodeGroupComplete)

	types := f.sink.Types()
	if types[len(types)-1] != event.TypeGroupCompleted {
		t.Fatalf("expected completion event last, got %v", types)
	}
}

func TestGroupStatusProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createFullGroup(t)

	if err := f.svc.Contribute(ctx, f.ok, id, "bob"); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	status, err := f.svc.GetGroupStatus(ctx, id)
	if err != nil {
		t.Fatalf("get group status: %v", err)
	}
	if !status.IsCycleActive || status.IsInGracePeriod {
		t.Fatalf("expected active cycle, got %+v", status)
	}
	if status.ContributedCount != 1 || status.MemberCount != 3 {
		t.Fatalf("expected 1/3 contributed, got %d/%d", status.ContributedCount, status.MemberCount)
	}
	if len(status.PendingMembers) != 2 || status.PendingMembers[0] != "alice" || status.PendingMembers[1] != "carol" {
		t.Fatalf("expected pending [alice carol], got %v", status.PendingMembers)
	}
	if status.NextRecipient != "alice" || !status.HasNextRecipient {
		t.Fatalf("expected next recipient alice, got %+v", status)
	}

	f.clock.Advance(cycleDuration + time.Hour)
	status, err = f.svc.GetGroupStatus(ctx, id)
	if err != nil {
		t.Fatalf("get group status: %v", err)
	}
	if status.IsCycleActive || !status.IsInGracePeriod {
		t.Fatalf("expected grace window, got %+v", status)
	}
}
