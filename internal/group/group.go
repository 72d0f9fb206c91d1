// Package group holds the rotating savings group state machine: admission,
// cycle timing, payout rotation, and refund governance records.
package group

import (
	"slices"
	"strings"
	"time"
)

// State describes the group lifecycle label.
type State string

const (
	StateActive    State = "active"
	StateCancelled State = "cancelled"
	StateComplete  State = "complete"
)

const (
	// MinMembers is the smallest allowed member cap.
	MinMembers = 2
	// MaxMembersLimit is the largest allowed member cap.
	MaxMembersLimit = 100
	// MaxGracePeriod bounds how long after cycle end late contributions are accepted.
	MaxGracePeriod = 7 * 24 * time.Hour
	// MaxPenaltyRate is the highest allowed late-contribution penalty percentage.
	MaxPenaltyRate = 100
)

// Group represents one savings circle. Members are ordered by join time and
// that order is the payout order.
type Group struct {
	ID                 uint64        `json:"id"`
	Creator            string        `json:"creator"`
	ContributionAmount int64         `json:"contribution_amount"`
	CycleDuration      time.Duration `json:"cycle_duration"`
	GracePeriod        time.Duration `json:"grace_period"`
	PenaltyRate        int           `json:"penalty_rate"`
	MaxMembers         int           `json:"max_members"`
	Members            []string      `json:"members"`
	CurrentCycle       int           `json:"current_cycle"`
	PayoutIndex        int           `json:"payout_index"`
	CreatedAt          time.Time     `json:"created_at"`
	CycleStartTime     time.Time     `json:"cycle_start_time"`
	IsComplete         bool          `json:"is_complete"`
	State              State         `json:"state"`
}

// CreateGroupInput describes the configuration needed to create a group.
type CreateGroupInput struct {
	Creator            string
	ContributionAmount int64
	CycleDuration      time.Duration
	MaxMembers         int
	GracePeriod        time.Duration
	PenaltyRate        int
}

// NewGroup validates the configuration and builds a fresh group with the
// creator as its first member. The caller assigns the ID.
func NewGroup(input CreateGroupInput, now func() time.Time) (Group, error) {
	if now == nil {
		now = time.Now
	}
	creator := strings.TrimSpace(input.Creator)
	if input.ContributionAmount == 0 {
		return Group{}, ErrAmountZero
	}
	if input.ContributionAmount < 0 {
		return Group{}, ErrAmountNegative
	}
	if input.CycleDuration <= 0 {
		return Group{}, ErrCycleDurationZero
	}
	if input.MaxMembers < MinMembers {
		return Group{}, ErrMaxMembersBelowMinimum
	}
	if input.MaxMembers > MaxMembersLimit {
		return Group{}, ErrMaxMembersAboveLimit
	}
	if input.GracePeriod < 0 || input.GracePeriod > MaxGracePeriod {
		return Group{}, ErrInvalidGracePeriod
	}
	if input.PenaltyRate < 0 || input.PenaltyRate > MaxPenaltyRate {
		return Group{}, ErrInvalidPenaltyRate
	}

	createdAt := now().UTC()
	return Group{
		Creator:            creator,
		ContributionAmount: input.ContributionAmount,
		CycleDuration:      input.CycleDuration,
		GracePeriod:        input.GracePeriod,
		PenaltyRate:        input.PenaltyRate,
		MaxMembers:         input.MaxMembers,
		Members:            []string{creator},
		CurrentCycle:       1,
		PayoutIndex:        0,
		CreatedAt:          createdAt,
		CycleStartTime:     createdAt,
		IsComplete:         false,
		State:              StateActive,
	}, nil
}

// Contains reports whether the principal is a member of the group.
func (g Group) Contains(member string) bool {
	return slices.Contains(g.Members, member)
}

// Admit appends a new member, preserving join order.
func (g *Group) Admit(member string) error {
	if g.State == StateCancelled {
		return ErrGroupCancelled
	}
	if g.IsComplete {
		return ErrGroupComplete
	}
	if g.Contains(member) {
		return ErrAlreadyMember
	}
	if len(g.Members) >= g.MaxMembers {
		return ErrMaxMembersExceeded
	}
	g.Members = append(g.Members, member)
	return nil
}

// CycleEnd returns when the current cycle's on-time window closes.
func (g Group) CycleEnd() time.Time {
	return g.CycleStartTime.Add(g.CycleDuration)
}

// GraceEnd returns when late contributions stop being accepted.
func (g Group) GraceEnd() time.Time {
	return g.CycleEnd().Add(g.GracePeriod)
}

// ClassifyContribution decides whether a contribution at the given time is
// on time or late, and how much penalty it carries. Beyond the grace window
// the contribution is rejected.
func (g Group) ClassifyContribution(at time.Time) (isLate bool, penalty int64, err error) {
	if at.Before(g.CycleEnd()) {
		return false, 0, nil
	}
	if at.After(g.GraceEnd()) {
		return false, 0, ErrGracePeriodExpired
	}
	return true, g.ContributionAmount * int64(g.PenaltyRate) / 100, nil
}

// NextRecipient returns the member due for the next payout.
func (g Group) NextRecipient() (string, error) {
	if g.PayoutIndex < 0 || g.PayoutIndex >= len(g.Members) {
		return "", ErrNoMembers
	}
	return g.Members[g.PayoutIndex], nil
}

// BasePayout is the payout amount before the cycle's penalty pool is added.
func (g Group) BasePayout() int64 {
	return g.ContributionAmount * int64(len(g.Members))
}

// AdvanceRotation moves the payout pointer past the recipient that was just
// paid. When the pointer reaches the end of the member list the group
// completes; otherwise the next cycle opens at the given time. This is the
// only place IsComplete and State change together.
func (g *Group) AdvanceRotation(now time.Time) {
	g.PayoutIndex++
	if g.PayoutIndex == len(g.Members) {
		g.IsComplete = true
		g.State = StateComplete
		return
	}
	g.CurrentCycle++
	g.CycleStartTime = now.UTC()
}

// Cancel transitions the group to its terminal cancelled state.
func (g *Group) Cancel() error {
	switch g.State {
	case StateCancelled:
		return ErrGroupCancelled
	case StateComplete:
		return ErrGroupComplete
	}
	g.State = StateCancelled
	return nil
}
