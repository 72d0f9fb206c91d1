package group

import "time"

// ContributionRecord captures one member's contribution for one cycle.
// Immutable once written.
type ContributionRecord struct {
	GroupID       uint64    `json:"group_id"`
	Cycle         int       `json:"cycle"`
	Member        string    `json:"member"`
	HasPaid       bool      `json:"has_paid"`
	Timestamp     time.Time `json:"timestamp"`
	IsLate        bool      `json:"is_late"`
	PenaltyAmount int64     `json:"penalty_amount"`
}

// MemberPenaltyRecord is the running punctuality aggregate for one member.
type MemberPenaltyRecord struct {
	GroupID          uint64 `json:"group_id"`
	Member           string `json:"member"`
	LateCount        int    `json:"late_count"`
	OnTimeCount      int    `json:"on_time_count"`
	TotalPenalties   int64  `json:"total_penalties"`
	ReliabilityScore int    `json:"reliability_score"`
}

// NewMemberPenaltyRecord returns the zero aggregate: full reliability until
// a contribution says otherwise.
func NewMemberPenaltyRecord(groupID uint64, member string) MemberPenaltyRecord {
	return MemberPenaltyRecord{
		GroupID:          groupID,
		Member:           member,
		ReliabilityScore: 100,
	}
}

// RecordContribution folds one contribution into the aggregate.
func (r *MemberPenaltyRecord) RecordContribution(isLate bool, penalty int64) {
	if isLate {
		r.LateCount++
		r.TotalPenalties += penalty
	} else {
		r.OnTimeCount++
	}
	total := r.LateCount + r.OnTimeCount
	if total == 0 {
		r.ReliabilityScore = 100
		return
	}
	r.ReliabilityScore = r.OnTimeCount * 100 / total
}

// RefundReason labels which governance path produced a refund record.
type RefundReason string

const (
	RefundReasonCreatorCancellation RefundReason = "creator_cancellation"
	RefundReasonMemberVote          RefundReason = "member_vote"
	RefundReasonEmergency           RefundReason = "emergency_refund"
)

// RefundRecord marks that a member was refunded when a group dissolved.
type RefundRecord struct {
	GroupID   uint64       `json:"group_id"`
	Member    string       `json:"member"`
	Amount    int64        `json:"amount"`
	Timestamp time.Time    `json:"timestamp"`
	Reason    RefundReason `json:"reason"`
}

const (
	// VotingPeriod is how long a refund request accepts votes.
	VotingPeriod = 7 * 24 * time.Hour
	// ApprovalThresholdPercent is the share of in-favor votes needed to
	// approve a refund.
	ApprovalThresholdPercent = 51
)

// RefundRequest tracks a member-initiated vote to dissolve a group.
type RefundRequest struct {
	GroupID        uint64    `json:"group_id"`
	Requester      string    `json:"requester"`
	CreatedAt      time.Time `json:"created_at"`
	VotingDeadline time.Time `json:"voting_deadline"`
	VotesFor       int       `json:"votes_for"`
	VotesAgainst   int       `json:"votes_against"`
	Executed       bool      `json:"executed"`
	Approved       bool      `json:"approved"`
}

// NewRefundRequest opens a refund vote with the fixed voting period.
func NewRefundRequest(groupID uint64, requester string, now time.Time) RefundRequest {
	created := now.UTC()
	return RefundRequest{
		GroupID:        groupID,
		Requester:      requester,
		CreatedAt:      created,
		VotingDeadline: created.Add(VotingPeriod),
	}
}

// VotingOpen reports whether votes are still accepted at the given time.
func (r RefundRequest) VotingOpen(at time.Time) bool {
	return !at.After(r.VotingDeadline)
}

// ApprovalPercent computes the in-favor share of cast votes; zero votes
// means zero percent.
func (r RefundRequest) ApprovalPercent() int {
	total := r.VotesFor + r.VotesAgainst
	if total == 0 {
		return 0
	}
	return r.VotesFor * 100 / total
}

// Decide marks the request executed and records whether it cleared the
// approval threshold.
func (r *RefundRequest) Decide() bool {
	r.Executed = true
	r.Approved = r.ApprovalPercent() >= ApprovalThresholdPercent
	return r.Approved
}

// RefundVote is one member's vote on a refund request.
type RefundVote struct {
	GroupID   uint64    `json:"group_id"`
	Member    string    `json:"member"`
	InFavor   bool      `json:"in_favor"`
	Timestamp time.Time `json:"timestamp"`
}

// Metadata field length limits.
const (
	MaxMetadataNameLen        = 50
	MaxMetadataDescriptionLen = 250
	MaxMetadataRulesLen       = 1000
)

// GroupMetadata holds optional descriptive fields. Informational only.
type GroupMetadata struct {
	GroupID     uint64 `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rules       string `json:"rules"`
}

// Validate enforces the metadata length limits.
func (m GroupMetadata) Validate() error {
	if len(m.Name) > MaxMetadataNameLen ||
		len(m.Description) > MaxMetadataDescriptionLen ||
		len(m.Rules) > MaxMetadataRulesLen {
		return ErrMetadataTooLong
	}
	return nil
}
