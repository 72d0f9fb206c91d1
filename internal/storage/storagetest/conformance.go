// Package storagetest runs a shared conformance suite against store backends.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/storage"
)

// Factory opens a fresh, empty store for one test.
type Factory func(t *testing.T) storage.Store

// Run exercises every record family against the backend under test.
func Run(t *testing.T, open Factory) {
	t.Helper()

	t.Run("group id counter", func(t *testing.T) { testGroupIDCounter(t, open) })
	t.Run("group round trip", func(t *testing.T) { testGroupRoundTrip(t, open) })
	t.Run("contributions", func(t *testing.T) { testContributions(t, open) })
	t.Run("penalties", func(t *testing.T) { testPenalties(t, open) })
	t.Run("payout flags", func(t *testing.T) { testPayoutFlags(t, open) })
	t.Run("metadata", func(t *testing.T) { testMetadata(t, open) })
	t.Run("refund governance", func(t *testing.T) { testRefundGovernance(t, open) })
	t.Run("admin and pause", func(t *testing.T) { testAdminAndPause(t, open) })
}

func testGroupIDCounter(t *testing.T, open Factory) {
	store := open(t)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		id, err := store.NextGroupID(ctx)
		if err != nil {
			t.Fatalf("next group id: %v", err)
		}
		if id != want {
			t.Fatalf("expected sequential id %d, got %d", want, id)
		}
	}
}

func testGroupRoundTrip(t *testing.T, open Factory) {
	store := open(t)
	ctx := context.Background()

	if _, err := store.GetGroup(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing group, got %v", err)
	}

	g := group.Group{
		ID:                 1,
		Creator:            "alice",
		ContributionAmount: 100_000_000,
		CycleDuration:      7 * 24 * time.Hour,
		GracePeriod:        24 * time.Hour,
		PenaltyRate:        5,
		MaxMembers:         3,
		Members:            []string{"alice", "bob"},
		CurrentCycle:       2,
		PayoutIndex:        1,
		CreatedAt:          time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		CycleStartTime:     time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
		State:              group.StateActive,
	}
	if err := store.PutGroup(ctx, g); err != nil {
		t.Fatalf("put group: %v", err)
	}
	got, err := store.GetGroup(ctx, 1)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if got.Creator != g.Creator || got.ContributionAmount != g.ContributionAmount ||
		got.CycleDuration != g.CycleDuration || got.GracePeriod != g.GracePeriod ||
		got.PenaltyRate != g.PenaltyRate || got.CurrentCycle != g.CurrentCycle ||
		got.PayoutIndex != g.PayoutIndex || got.State != g.State {
		t.Fatalf("group round trip mismatch: %+v vs %+v", got, g)
	}
	if len(got.Members) != 2 || got.Members[0] != "alice" || got.Members[1] != "bob" {
		t.Fatalf("expected member order preserved, got %v", got.Members)
	}
	if !got.CreatedAt.Equal(g.CreatedAt) || !got.CycleStartTime.Equal(g.CycleStartTime) {
		t.Fatalf("timestamp round trip mismatch: %v / %v", got.CreatedAt, got.CycleStartTime)
	}
}

func testContributions(t *testing.T, open Factory) {
	store := open(t)
	ctx := context.Background()

	has, err := store.HasContribution(ctx, 1, 1, "bob")
	if err != nil || has {
		t.Fatalf("expected no contribution, got has=%v err=%v", has, err)
	}
	if _, err := store.GetContribution(ctx, 1, 1, "bob"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := group.ContributionRecord{
		GroupID:       1,
		Cycle:         1,
		Member:        "bob",
		HasPaid:       true,
		Timestamp:     time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC),
		IsLate:        true,
		PenaltyAmount: 5_000_000,
	}
	if err := store.PutContribution(ctx, rec); err != nil {
		t.Fatalf("put contribution: %v", err)
	}
	got, err := store.GetContribution(ctx, 1, 1, "bob")
	if err != nil {
		t.Fatalf("get contribution: %v", err)
	}
	if !got.HasPaid || !got.IsLate || got.PenaltyAmount != rec.PenaltyAmount || !got.Timestamp.Equal(rec.Timestamp) {
		t.Fatalf("contribution round trip mismatch: %+v", got)
	}

	// Cycle scoping: same member, next cycle is a different record.
	has, err = store.HasContribution(ctx, 1, 2, "bob")
	if err != nil || has {
		t.Fatalf("expected cycle isolation, got has=%v err=%v", has, err)
	}
}

func testPenalties(t *testing.T, open Factory) {
	store := open(t)
	ctx := context.Background()

	if _, err := store.GetPenaltyRecord(ctx, 1, "bob"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := group.NewMemberPenaltyRecord(1, "bob")
	rec.RecordContribution(true, 5_000_000)
	if err := store.PutPenaltyRecord(ctx, rec); err != nil {
		t.Fatalf("put penalty record: %v", err)
	}
	got, err := store.GetPenaltyRecord(ctx, 1, "bob")
	if err != nil {
		t.Fatalf("get penalty record: %v", err)
	}
	if got.LateCount != 1 || got.TotalPenalties != 5_000_000 || got.ReliabilityScore != 0 {
		t.Fatalf("penalty record mismatch: %+v", got)
	}

	pool, err := store.GetPenaltyPool(ctx, 1, 1)
	if err != nil || pool != 0 {
		t.Fatalf("expected empty pool, got %d err=%v", pool, err)
	}
	if err := store.AddToPenaltyPool(ctx, 1, 1, 5_000_000); err != nil {
		t.Fatalf("add to pool: %v", err)
	}
	if err := store.AddToPenaltyPool(ctx, 1, 1, 2_000_000); err != nil {
		t.Fatalf("add to pool: %v", err)
	}
	pool, err = store.GetPenaltyPool(ctx, 1, 1)
	if err != nil || pool != 7_000_000 {
		t.Fatalf("expected accumulated pool 7000000, got %d err=%v", pool, err)
	}
	pool, err = store.GetPenaltyPool(ctx, 1, 2)
	if err != nil || pool != 0 {
		t.Fatalf("expected cycle-scoped pool, got %d err=%v", pool, err)
	}
}

func testPayoutFlags(t *testing.T, open Factory) {
	store := open(t)
	ctx := context.Background()

	has, err := store.HasReceivedPayout(ctx, 1, "alice")
	if err != nil || has {
		t.Fatalf("expected no payout flag, got has=%v err=%v", has, err)
	}
	if err := store.MarkPayoutReceived(ctx, 1, "alice"); err != nil {
		t.Fatalf("mark payout: %v", err)
	}
	has, err = store.HasReceivedPayout(ctx, 1, "alice")
	if err != nil || !has {
		t.Fatalf("expected payout flag, got has=%v err=%v", has, err)
	}
}

func testMetadata(t *testing.T, open Factory) {
	store := open(t)
	ctx := context.Background()

	if _, err := store.GetMetadata(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	md := group.GroupMetadata{GroupID: 1, Name: "lagos circle", Description: "weekly", Rules: "pay on time"}
	if err := store.PutMetadata(ctx, md); err != nil {
		t.Fatalf("put metadata: %v", err)
	}
	got, err := store.GetMetadata(ctx, 1)
	if err != nil || got != md {
		t.Fatalf("metadata round trip mismatch: %+v err=%v", got, err)
	}
}

func testRefundGovernance(t *testing.T, open Factory) {
	store := open(t)
	ctx := context.Background()

	has, err := store.HasRefundRequest(ctx, 1)
	if err != nil || has {
		t.Fatalf("expected no refund request, got has=%v err=%v", has, err)
	}
	req := group.NewRefundRequest(1, "bob", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	req.VotesFor = 2
	req.VotesAgainst = 1
	if err := store.PutRefundRequest(ctx, req); err != nil {
		t.Fatalf("put refund request: %v", err)
	}
	got, err := store.GetRefundRequest(ctx, 1)
	if err != nil {
		t.Fatalf("get refund request: %v", err)
	}
	if got.Requester != "bob" || got.VotesFor != 2 || got.VotesAgainst != 1 ||
		!got.VotingDeadline.Equal(req.VotingDeadline) {
		t.Fatalf("refund request mismatch: %+v", got)
	}

	voted, err := store.HasRefundVote(ctx, 1, "carol")
	if err != nil || voted {
		t.Fatalf("expected no vote, got voted=%v err=%v", voted, err)
	}
	vote := group.RefundVote{GroupID: 1, Member: "carol", InFavor: true, Timestamp: req.CreatedAt.Add(time.Hour)}
	if err := store.PutRefundVote(ctx, vote); err != nil {
		t.Fatalf("put refund vote: %v", err)
	}
	voted, err = store.HasRefundVote(ctx, 1, "carol")
	if err != nil || !voted {
		t.Fatalf("expected vote recorded, got voted=%v err=%v", voted, err)
	}

	if _, err := store.GetRefundRecord(ctx, 1, "carol"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	rec := group.RefundRecord{
		GroupID:   1,
		Member:    "carol",
		Amount:    100_000_000,
		Timestamp: req.CreatedAt.Add(8 * 24 * time.Hour),
		Reason:    group.RefundReasonMemberVote,
	}
	if err := store.PutRefundRecord(ctx, rec); err != nil {
		t.Fatalf("put refund record: %v", err)
	}
	gotRec, err := store.GetRefundRecord(ctx, 1, "carol")
	if err != nil {
		t.Fatalf("get refund record: %v", err)
	}
	if gotRec.Amount != rec.Amount || gotRec.Reason != rec.Reason || !gotRec.Timestamp.Equal(rec.Timestamp) {
		t.Fatalf("refund record mismatch: %+v", gotRec)
	}
}

func testAdminAndPause(t *testing.T, open Factory) {
	store := open(t)
	ctx := context.Background()

	if _, err := store.GetAdmin(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before initialization, got %v", err)
	}
	if err := store.SetAdmin(ctx, "admin-1"); err != nil {
		t.Fatalf("set admin: %v", err)
	}
	admin, err := store.GetAdmin(ctx)
	if err != nil || admin != "admin-1" {
		t.Fatalf("expected admin-1, got %q err=%v", admin, err)
	}

	paused, err := store.IsPaused(ctx)
	if err != nil || paused {
		t.Fatalf("expected unpaused store, got paused=%v err=%v", paused, err)
	}
	if err := store.SetPaused(ctx, true); err != nil {
		t.Fatalf("set paused: %v", err)
	}
	paused, err = store.IsPaused(ctx)
	if err != nil || !paused {
		t.Fatalf("expected paused store, got paused=%v err=%v", paused, err)
	}
	if err := store.SetPaused(ctx, false); err != nil {
		t.Fatalf("unset paused: %v", err)
	}
	paused, err = store.IsPaused(ctx)
	if err != nil || paused {
		t.Fatalf("expected unpaused store, got paused=%v err=%v", paused, err)
	}
}
