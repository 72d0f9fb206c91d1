// Package projection builds read-only aggregations over group state so
// callers do not re-derive cycle timing and pending-member lists.
package projection

import (
	"time"

	"github.com/ajofund/ajo/internal/group"
)

// GroupStatus is the full status snapshot for one group.
type GroupStatus struct {
	GroupID            uint64      `json:"group_id"`
	State              group.State `json:"state"`
	IsComplete         bool        `json:"is_complete"`
	CurrentCycle       int         `json:"current_cycle"`
	PayoutIndex        int         `json:"payout_index"`
	NextRecipient      string      `json:"next_recipient,omitempty"`
	HasNextRecipient   bool        `json:"has_next_recipient"`
	MemberCount        int         `json:"member_count"`
	ContributedCount   int         `json:"contributed_count"`
	PendingMembers     []string    `json:"pending_members"`
	CycleStartTime     time.Time   `json:"cycle_start_time"`
	CycleEndTime       time.Time   `json:"cycle_end_time"`
	GracePeriodEndTime time.Time   `json:"grace_period_end_time"`
	IsCycleActive      bool        `json:"is_cycle_active"`
	IsInGracePeriod    bool        `json:"is_in_grace_period"`
	PenaltyPool        int64       `json:"penalty_pool"`
}

// Build assembles the status snapshot from a group, the pending members for
// its current cycle (in member order), and the cycle's penalty pool.
func Build(g group.Group, pending []string, penaltyPool int64, now time.Time) GroupStatus {
	status := GroupStatus{
		GroupID:            g.ID,
		State:              g.State,
		IsComplete:         g.IsComplete,
		CurrentCycle:       g.CurrentCycle,
		PayoutIndex:        g.PayoutIndex,
		MemberCount:        len(g.Members),
		ContributedCount:   len(g.Members) - len(pending),
		PendingMembers:     pending,
		CycleStartTime:     g.CycleStartTime,
		CycleEndTime:       g.CycleEnd(),
		GracePeriodEndTime: g.GraceEnd(),
		PenaltyPool:        penaltyPool,
	}
	if recipient, err := g.NextRecipient(); err == nil {
		status.NextRecipient = recipient
		status.HasNextRecipient = true
	}
	if g.State == group.StateActive {
		status.IsCycleActive = now.Before(status.CycleEndTime)
		status.IsInGracePeriod = !now.Before(status.CycleEndTime) && !now.After(status.GracePeriodEndTime)
	}
	return status
}
