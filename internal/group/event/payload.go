package event

// GroupCreatedPayload captures the payload for group.created events.
type GroupCreatedPayload struct {
	Creator            string `json:"creator"`
	ContributionAmount int64  `json:"contribution_amount"`
	CycleDurationSecs  int64  `json:"cycle_duration_seconds"`
	GracePeriodSecs    int64  `json:"grace_period_seconds"`
	PenaltyRate        int    `json:"penalty_rate"`
	MaxMembers         int    `json:"max_members"`
}

// MemberJoinedPayload captures the payload for group.member_joined events.
type MemberJoinedPayload struct {
	Member      string `json:"member"`
	MemberCount int    `json:"member_count"`
}

// ContributionPayload captures the payload for contribution events, on time
// or late.
type ContributionPayload struct {
	Member        string `json:"member"`
	Cycle         int    `json:"cycle"`
	Amount        int64  `json:"amount"`
	PenaltyAmount int64  `json:"penalty_amount,omitempty"`
}

// PayoutExecutedPayload captures the payload for group.payout_executed events.
type PayoutExecutedPayload struct {
	Recipient string `json:"recipient"`
	Cycle     int    `json:"cycle"`
	Amount    int64  `json:"amount"`
}

// PenaltyDistributedPayload captures the payload for group.penalty_distributed events.
type PenaltyDistributedPayload struct {
	Recipient string `json:"recipient"`
	Cycle     int    `json:"cycle"`
	Amount    int64  `json:"amount"`
}

// GroupCompletedPayload captures the payload for group.completed events.
type GroupCompletedPayload struct {
	TotalCycles int `json:"total_cycles"`
}

// GroupCancelledPayload captures the payload for group.cancelled events.
type GroupCancelledPayload struct {
	Reason         string `json:"reason"`
	RefundedCount  int    `json:"refunded_count"`
	RefundedAmount int64  `json:"refunded_amount"`
}

// RefundRequestedPayload captures the payload for refund.requested events.
type RefundRequestedPayload struct {
	Requester      string `json:"requester"`
	VotingDeadline int64  `json:"voting_deadline_unix"`
}

// RefundVoteCastPayload captures the payload for refund.vote_cast events.
type RefundVoteCastPayload struct {
	Voter   string `json:"voter"`
	InFavor bool   `json:"in_favor"`
}

// RefundProcessedPayload captures the payload for refund.processed events.
type RefundProcessedPayload struct {
	Approved        bool `json:"approved"`
	ApprovalPercent int  `json:"approval_percent"`
	VotesFor        int  `json:"votes_for"`
	VotesAgainst    int  `json:"votes_against"`
}

// RefundEmergencyPayload captures the payload for refund.emergency events.
type RefundEmergencyPayload struct {
	Admin          string `json:"admin"`
	RefundedCount  int    `json:"refunded_count"`
	RefundedAmount int64  `json:"refunded_amount"`
}
