package projection

import (
	"testing"
	"time"

	"github.com/ajofund/ajo/internal/group"
)

func sampleGroup() group.Group {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return group.Group{
		ID:                 1,
		Creator:            "alice",
		ContributionAmount: 100_000_000,
		CycleDuration:      7 * 24 * time.Hour,
		GracePeriod:        24 * time.Hour,
		PenaltyRate:        5,
		MaxMembers:         3,
		Members:            []string{"alice", "bob", "carol"},
		CurrentCycle:       1,
		PayoutIndex:        0,
		CreatedAt:          start,
		CycleStartTime:     start,
		State:              group.StateActive,
	}
}

func TestBuildActiveCycle(t *testing.T) {
	g := sampleGroup()
	now := g.CycleStartTime.Add(time.Hour)

	status := Build(g, []string{"bob", "carol"}, 0, now)
	if !status.IsCycleActive || status.IsInGracePeriod {
		t.Fatalf("expected active cycle, got active=%v grace=%v", status.IsCycleActive, status.IsInGracePeriod)
	}
	if status.ContributedCount != 1 || status.MemberCount != 3 {
		t.Fatalf("expected 1/3 contributed, got %d/%d", status.ContributedCount, status.MemberCount)
	}
	if len(status.PendingMembers) != 2 || status.PendingMembers[0] != "bob" || status.PendingMembers[1] != "carol" {
		t.Fatalf("expected pending order preserved, got %v", status.PendingMembers)
	}
	if !status.HasNextRecipient || status.NextRecipient != "alice" {
		t.Fatalf("expected next recipient alice, got %q", status.NextRecipient)
	}
	if !status.CycleEndTime.Equal(g.CycleEnd()) || !status.GracePeriodEndTime.Equal(g.GraceEnd()) {
		t.Fatal("expected cycle timing fields to match group windows")
	}
}

func TestBuildGracePeriod(t *testing.T) {
	g := sampleGroup()
	now := g.CycleEnd().Add(time.Hour)

	status := Build(g, nil, 5_000_000, now)
	if status.IsCycleActive || !status.IsInGracePeriod {
		t.Fatalf("expected grace window, got active=%v grace=%v", status.IsCycleActive, status.IsInGracePeriod)
	}
	if status.PenaltyPool != 5_000_000 {
		t.Fatalf("expected penalty pool in status, got %d", status.PenaltyPool)
	}
	if status.ContributedCount != 3 {
		t.Fatalf("expected all contributed, got %d", status.ContributedCount)
	}
}

func TestBuildCompleteGroup(t *testing.T) {
	g := sampleGroup()
	g.PayoutIndex = 3
	g.IsComplete = true
	g.State = group.StateComplete

	status := Build(g, nil, 0, g.GraceEnd().Add(time.Hour))
	if status.HasNextRecipient {
		t.Fatal("expected no next recipient for complete group")
	}
	if status.IsCycleActive || status.IsInGracePeriod {
		t.Fatal("expected no cycle timing flags for complete group")
	}
	if !status.IsComplete || status.State != group.StateComplete {
		t.Fatalf("expected complete status, got %+v", status)
	}
}
