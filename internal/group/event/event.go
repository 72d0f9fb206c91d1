// Package event defines the notification events emitted by the savings engine.
// Events are informational; nothing in the engine consumes them.
package event

import (
	"strings"
	"time"
)

// Type identifies the type of a group event.
type Type string

// Group lifecycle events.
const (
	// TypeGroupCreated records the creation of a group.
	TypeGroupCreated Type = "group.created"
	// TypeMemberJoined records a member joining a group.
	TypeMemberJoined Type = "group.member_joined"
	// TypeContributionMade records an on-time contribution.
	TypeContributionMade Type = "group.contribution_made"
	// TypeContributionLate records a late, penalized contribution.
	TypeContributionLate Type = "group.contribution_late"
	// TypePayoutExecuted records a cycle payout.
	TypePayoutExecuted Type = "group.payout_executed"
	// TypePenaltyDistributed records a penalty pool paid out with a payout.
	TypePenaltyDistributed Type = "group.penalty_distributed"
	// TypeGroupCompleted records a group finishing its full rotation.
	TypeGroupCompleted Type = "group.completed"
	// TypeGroupCancelled records a group entering its terminal cancelled state.
	TypeGroupCancelled Type = "group.cancelled"
)

// Refund governance events.
const (
	// TypeRefundRequested records the opening of a refund vote.
	TypeRefundRequested Type = "refund.requested"
	// TypeRefundVoteCast records a member's refund vote.
	TypeRefundVoteCast Type = "refund.vote_cast"
	// TypeRefundProcessed records the decision of a refund vote.
	TypeRefundProcessed Type = "refund.processed"
	// TypeRefundEmergency records an admin emergency refund.
	TypeRefundEmergency Type = "refund.emergency"
)

// Event represents one emitted notification.
type Event struct {
	// ID is a unique identifier assigned at emission.
	ID string
	// GroupID is the group the event belongs to.
	GroupID uint64
	// Type identifies the kind of event.
	Type Type
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "group", "refund").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}
