package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

// InitializeInput represents the MCP tool input for engine initialization.
type InitializeInput struct {
	Admin         string `json:"admin" jsonschema:"principal to install as the engine admin"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the admin principal"`
}

// InitializeResult represents the MCP tool output for engine initialization.
type InitializeResult struct {
	Admin string `json:"admin" jsonschema:"installed admin principal"`
}

// PauseInput represents the MCP tool input for pausing or unpausing the engine.
type PauseInput struct {
	Principal     string `json:"principal" jsonschema:"acting admin principal"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the principal"`
}

// PauseResult represents the MCP tool output for pause state changes.
type PauseResult struct {
	Paused bool `json:"paused" jsonschema:"whether the engine is paused"`
}

// CreateGroupInput represents the MCP tool input for group creation.
type CreateGroupInput struct {
	Creator            string `json:"creator" jsonschema:"creator principal; becomes the first member and first payout recipient"`
	ContributionAmount int64  `json:"contribution_amount" jsonschema:"per-cycle contribution in minor units"`
	CycleDurationSecs  int64  `json:"cycle_duration_secs" jsonschema:"cycle length in seconds"`
	MaxMembers         int    `json:"max_members" jsonschema:"member cap (2 to 100)"`
	GracePeriodSecs    int64  `json:"grace_period_secs" jsonschema:"late window in seconds (up to 7 days)"`
	PenaltyRate        int    `json:"penalty_rate" jsonschema:"late penalty as a percentage of the contribution (0 to 100)"`
	ApprovalGrant      string `json:"approval_grant" jsonschema:"signed approval grant for the creator"`
}

// CreateGroupResult represents the MCP tool output for group creation.
type CreateGroupResult struct {
	GroupID uint64 `json:"group_id" jsonschema:"sequential group identifier"`
}

// JoinGroupInput represents the MCP tool input for joining a group.
type JoinGroupInput struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Member        string `json:"member" jsonschema:"joining member principal"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the member"`
}

// JoinGroupResult represents the MCP tool output for joining a group.
type JoinGroupResult struct {
	GroupID     uint64 `json:"group_id" jsonschema:"group identifier"`
	Member      string `json:"member" jsonschema:"admitted member principal"`
	MemberCount int    `json:"member_count" jsonschema:"members after the join"`
}

// GroupLookupInput represents the MCP tool input for group reads.
type GroupLookupInput struct {
	GroupID uint64 `json:"group_id" jsonschema:"group identifier"`
}

// GroupResult represents the MCP tool output for a group record.
type GroupResult struct {
	GroupID            uint64   `json:"group_id" jsonschema:"group identifier"`
	Creator            string   `json:"creator" jsonschema:"creator principal"`
	ContributionAmount int64    `json:"contribution_amount" jsonschema:"per-cycle contribution in minor units"`
	CycleDurationSecs  int64    `json:"cycle_duration_secs" jsonschema:"cycle length in seconds"`
	GracePeriodSecs    int64    `json:"grace_period_secs" jsonschema:"late window in seconds"`
	PenaltyRate        int      `json:"penalty_rate" jsonschema:"late penalty percentage"`
	MaxMembers         int      `json:"max_members" jsonschema:"member cap"`
	Members            []string `json:"members" jsonschema:"members in payout order"`
	CurrentCycle       int      `json:"current_cycle" jsonschema:"current cycle number, starting at 1"`
	PayoutIndex        int      `json:"payout_index" jsonschema:"count of payouts executed so far"`
	State              string   `json:"state" jsonschema:"group state (active, cancelled, complete)"`
	IsComplete         bool     `json:"is_complete" jsonschema:"whether every member has been paid"`
	CreatedAt          string   `json:"created_at" jsonschema:"RFC3339 timestamp when the group was created"`
	CycleStartTime     string   `json:"cycle_start_time" jsonschema:"RFC3339 timestamp when the current cycle started"`
}

// GroupStatusResult represents the MCP tool output for the status projection.
type GroupStatusResult struct {
	GroupID            uint64   `json:"group_id" jsonschema:"group identifier"`
	State              string   `json:"state" jsonschema:"group state (active, cancelled, complete)"`
	IsComplete         bool     `json:"is_complete" jsonschema:"whether every member has been paid"`
	CurrentCycle       int      `json:"current_cycle" jsonschema:"current cycle number"`
	PayoutIndex        int      `json:"payout_index" jsonschema:"count of payouts executed so far"`
	NextRecipient      string   `json:"next_recipient,omitempty" jsonschema:"member due the next payout"`
	MemberCount        int      `json:"member_count" jsonschema:"number of members"`
	ContributedCount   int      `json:"contributed_count" jsonschema:"members who paid this cycle"`
	PendingMembers     []string `json:"pending_members" jsonschema:"members who have not paid this cycle"`
	CycleStartTime     string   `json:"cycle_start_time" jsonschema:"RFC3339 timestamp when the current cycle started"`
	CycleEndTime       string   `json:"cycle_end_time" jsonschema:"RFC3339 timestamp when on-time contributions close"`
	GracePeriodEndTime string   `json:"grace_period_end_time" jsonschema:"RFC3339 timestamp when late contributions close"`
	IsCycleActive      bool     `json:"is_cycle_active" jsonschema:"whether on-time contributions are open"`
	IsInGracePeriod    bool     `json:"is_in_grace_period" jsonschema:"whether the late window is open"`
	PenaltyPool        int64    `json:"penalty_pool" jsonschema:"penalties accumulated for the current cycle"`
}

// ListMembersResult represents the MCP tool output for member listings.
type ListMembersResult struct {
	GroupID uint64   `json:"group_id" jsonschema:"group identifier"`
	Members []string `json:"members" jsonschema:"members in payout order"`
}

// SetMetadataInput represents the MCP tool input for setting group metadata.
type SetMetadataInput struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Principal     string `json:"principal" jsonschema:"acting principal; must be the creator"`
	Name          string `json:"name,omitempty" jsonschema:"group display name (up to 50 bytes)"`
	Description   string `json:"description,omitempty" jsonschema:"group description (up to 250 bytes)"`
	Rules         string `json:"rules,omitempty" jsonschema:"group rules text (up to 1000 bytes)"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the principal"`
}

// MetadataResult represents the MCP tool output for group metadata.
type MetadataResult struct {
	GroupID     uint64 `json:"group_id" jsonschema:"group identifier"`
	Name        string `json:"name" jsonschema:"group display name"`
	Description string `json:"description" jsonschema:"group description"`
	Rules       string `json:"rules" jsonschema:"group rules text"`
}

// IsMemberResult represents the MCP tool output for a membership check.
type IsMemberResult struct {
	GroupID  uint64 `json:"group_id" jsonschema:"group identifier"`
	Member   string `json:"member" jsonschema:"checked principal"`
	IsMember bool   `json:"is_member" jsonschema:"whether the principal is a member"`
}

// IsCompleteResult represents the MCP tool output for a completion check.
type IsCompleteResult struct {
	GroupID    uint64 `json:"group_id" jsonschema:"group identifier"`
	IsComplete bool   `json:"is_complete" jsonschema:"whether every member has been paid"`
}

// ContributeInput represents the MCP tool input for recording a contribution.
type ContributeInput struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Member        string `json:"member" jsonschema:"contributing member principal"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the member"`
}

// ContributeResult represents the MCP tool output for a recorded contribution.
type ContributeResult struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Cycle         int    `json:"cycle" jsonschema:"cycle the contribution belongs to"`
	Member        string `json:"member" jsonschema:"contributing member principal"`
	IsLate        bool   `json:"is_late" jsonschema:"whether the contribution landed in the grace window"`
	PenaltyAmount int64  `json:"penalty_amount" jsonschema:"penalty charged for a late contribution"`
}

// ContributionStatusInput represents the MCP tool input for cycle status reads.
type ContributionStatusInput struct {
	GroupID uint64 `json:"group_id" jsonschema:"group identifier"`
	Cycle   int    `json:"cycle" jsonschema:"cycle number to inspect"`
}

// ContributionStatusResult represents the MCP tool output for cycle status.
type ContributionStatusResult struct {
	GroupID     uint64   `json:"group_id" jsonschema:"group identifier"`
	Cycle       int      `json:"cycle" jsonschema:"inspected cycle number"`
	Contributed []string `json:"contributed" jsonschema:"members who paid, in member order"`
	Pending     []string `json:"pending" jsonschema:"members who have not paid, in member order"`
	PenaltyPool int64    `json:"penalty_pool" jsonschema:"penalties accumulated for the cycle"`
}

// ContributionDetailInput represents the MCP tool input for reading one
// contribution record.
type ContributionDetailInput struct {
	GroupID uint64 `json:"group_id" jsonschema:"group identifier"`
	Cycle   int    `json:"cycle" jsonschema:"cycle number to inspect"`
	Member  string `json:"member" jsonschema:"member principal"`
}

// ContributionDetailResult represents the MCP tool output for one
// contribution record.
type ContributionDetailResult struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Cycle         int    `json:"cycle" jsonschema:"cycle the contribution belongs to"`
	Member        string `json:"member" jsonschema:"contributing member principal"`
	Timestamp     string `json:"timestamp" jsonschema:"RFC3339 timestamp of the contribution"`
	IsLate        bool   `json:"is_late" jsonschema:"whether the contribution landed in the grace window"`
	PenaltyAmount int64  `json:"penalty_amount" jsonschema:"penalty charged for a late contribution"`
}

// PenaltyPoolResult represents the MCP tool output for a cycle's penalty pool.
type PenaltyPoolResult struct {
	GroupID     uint64 `json:"group_id" jsonschema:"group identifier"`
	Cycle       int    `json:"cycle" jsonschema:"inspected cycle number"`
	PenaltyPool int64  `json:"penalty_pool" jsonschema:"penalties accumulated for the cycle"`
}

// MemberRecordInput represents the MCP tool input for member reliability reads.
type MemberRecordInput struct {
	GroupID uint64 `json:"group_id" jsonschema:"group identifier"`
	Member  string `json:"member" jsonschema:"member principal"`
}

// MemberReliabilityResult represents the MCP tool output for a member's
// punctuality aggregate.
type MemberReliabilityResult struct {
	GroupID          uint64 `json:"group_id" jsonschema:"group identifier"`
	Member           string `json:"member" jsonschema:"member principal"`
	LateCount        int    `json:"late_count" jsonschema:"late contributions to date"`
	OnTimeCount      int    `json:"on_time_count" jsonschema:"on-time contributions to date"`
	TotalPenalties   int64  `json:"total_penalties" jsonschema:"penalties accumulated to date"`
	ReliabilityScore int    `json:"reliability_score" jsonschema:"on-time share of contributions (0 to 100)"`
}

// ExecutePayoutResult represents the MCP tool output for a payout.
type ExecutePayoutResult struct {
	GroupID      uint64 `json:"group_id" jsonschema:"group identifier"`
	Recipient    string `json:"recipient" jsonschema:"member who received the payout"`
	Amount       int64  `json:"amount" jsonschema:"payout amount including the cycle penalty pool"`
	PenaltyBonus int64  `json:"penalty_bonus" jsonschema:"penalty pool share of the payout"`
	CurrentCycle int    `json:"current_cycle" jsonschema:"cycle number after the rotation advanced"`
	PayoutIndex  int    `json:"payout_index" jsonschema:"payouts executed so far"`
	IsComplete   bool   `json:"is_complete" jsonschema:"whether the rotation has finished"`
}

// CancelGroupInput represents the MCP tool input for creator cancellation.
type CancelGroupInput struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Principal     string `json:"principal" jsonschema:"acting principal; must be the creator"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the principal"`
}

// CancelGroupResult represents the MCP tool output for cancellation.
type CancelGroupResult struct {
	GroupID uint64 `json:"group_id" jsonschema:"group identifier"`
	State   string `json:"state" jsonschema:"group state after cancellation"`
}

// RequestRefundInput represents the MCP tool input for opening a refund vote.
type RequestRefundInput struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Requester     string `json:"requester" jsonschema:"requesting member principal"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the requester"`
}

// RequestRefundResult represents the MCP tool output for a refund request.
type RequestRefundResult struct {
	GroupID        uint64 `json:"group_id" jsonschema:"group identifier"`
	Requester      string `json:"requester" jsonschema:"requesting member principal"`
	VotingDeadline string `json:"voting_deadline" jsonschema:"RFC3339 timestamp when voting closes"`
}

// VoteRefundInput represents the MCP tool input for casting a refund vote.
type VoteRefundInput struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Voter         string `json:"voter" jsonschema:"voting member principal"`
	InFavor       bool   `json:"in_favor" jsonschema:"whether the vote supports the refund"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the voter"`
}

// VoteRefundResult represents the MCP tool output for a cast vote.
type VoteRefundResult struct {
	GroupID      uint64 `json:"group_id" jsonschema:"group identifier"`
	VotesFor     int    `json:"votes_for" jsonschema:"in-favor votes so far"`
	VotesAgainst int    `json:"votes_against" jsonschema:"against votes so far"`
}

// ExecuteRefundResult represents the MCP tool output for a refund tally.
type ExecuteRefundResult struct {
	GroupID         uint64 `json:"group_id" jsonschema:"group identifier"`
	Approved        bool   `json:"approved" jsonschema:"whether the vote cleared the 51 percent threshold"`
	ApprovalPercent int    `json:"approval_percent" jsonschema:"in-favor share of cast votes"`
	State           string `json:"state" jsonschema:"group state after the tally"`
}

// EmergencyRefundInput represents the MCP tool input for an admin refund.
type EmergencyRefundInput struct {
	GroupID       uint64 `json:"group_id" jsonschema:"group identifier"`
	Admin         string `json:"admin" jsonschema:"acting admin principal"`
	ApprovalGrant string `json:"approval_grant" jsonschema:"signed approval grant for the admin"`
}

// RefundRequestResult represents the MCP tool output for a refund request read.
type RefundRequestResult struct {
	GroupID         uint64 `json:"group_id" jsonschema:"group identifier"`
	Requester       string `json:"requester" jsonschema:"requesting member principal"`
	CreatedAt       string `json:"created_at" jsonschema:"RFC3339 timestamp when the request opened"`
	VotingDeadline  string `json:"voting_deadline" jsonschema:"RFC3339 timestamp when voting closes"`
	VotesFor        int    `json:"votes_for" jsonschema:"in-favor votes"`
	VotesAgainst    int    `json:"votes_against" jsonschema:"against votes"`
	Executed        bool   `json:"executed" jsonschema:"whether the request has been decided"`
	Approved        bool   `json:"approved" jsonschema:"whether the decision approved the refund"`
	ApprovalPercent int    `json:"approval_percent" jsonschema:"in-favor share of cast votes"`
}

// RefundRecordResult represents the MCP tool output for a member refund read.
type RefundRecordResult struct {
	GroupID   uint64 `json:"group_id" jsonschema:"group identifier"`
	Member    string `json:"member" jsonschema:"refunded member principal"`
	Amount    int64  `json:"amount" jsonschema:"refunded amount in minor units"`
	Timestamp string `json:"timestamp" jsonschema:"RFC3339 timestamp of the refund"`
	Reason    string `json:"reason" jsonschema:"refund reason (creator_cancellation, member_vote, emergency_refund)"`
}

func initializeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_initialize",
		Description: "Installs the singleton engine admin. Succeeds exactly once.",
	}
}

func pauseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_pause",
		Description: "Pauses the engine. Admin only; every mutating operation is rejected while paused.",
	}
}

func unpauseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_unpause",
		Description: "Unpauses the engine. Admin only.",
	}
}

func createGroupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_create_group",
		Description: "Creates a savings group. The creator becomes the first member and first payout recipient.",
	}
}

func joinGroupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_join_group",
		Description: "Joins an active group. Join order is payout order.",
	}
}

func getGroupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_get_group",
		Description: "Reads a group record.",
	}
}

func groupStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_group_status",
		Description: "Reads the group lifecycle projection: cycle windows, pending members, next recipient, and penalty pool.",
	}
}

func listMembersTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_list_members",
		Description: "Lists group members in payout order.",
	}
}

func setMetadataTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_set_group_metadata",
		Description: "Sets descriptive group metadata. Creator only.",
	}
}

func getMetadataTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_get_group_metadata",
		Description: "Reads a group's descriptive metadata.",
	}
}

func isMemberTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_is_member",
		Description: "Checks whether a principal is a member of a group.",
	}
}

func isCompleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_is_complete",
		Description: "Checks whether a group's payout rotation has finished.",
	}
}

func contributeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_contribute",
		Description: "Records a member's contribution for the current cycle. Contributions in the grace window incur a penalty.",
	}
}

func contributionStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_contribution_status",
		Description: "Reads paid and pending members for a cycle, plus its penalty pool.",
	}
}

func contributionDetailTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_contribution_detail",
		Description: "Reads one member's contribution record for a cycle.",
	}
}

func penaltyPoolTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_penalty_pool",
		Description: "Reads the penalty pool accumulated for a cycle.",
	}
}

func memberReliabilityTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_member_reliability",
		Description: "Reads a member's punctuality aggregate: late count, on-time count, penalties, reliability score.",
	}
}

func executePayoutTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_execute_payout",
		Description: "Pays the next member in rotation once the grace period has ended and every member has contributed.",
	}
}

func cancelGroupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_cancel_group",
		Description: "Cancels a group before any payout and refunds current-cycle contributors. Creator only.",
	}
}

func requestRefundTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_request_refund",
		Description: "Opens a 7-day refund vote after a cycle has fully timed out. Any member; one request per group.",
	}
}

func voteRefundTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_vote_refund",
		Description: "Casts a member's vote on the group's refund request. One vote per member.",
	}
}

func executeRefundTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_execute_refund",
		Description: "Tallies the refund vote after the deadline. An approved refund dissolves the group and refunds contributors.",
	}
}

func emergencyRefundTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_emergency_refund",
		Description: "Dissolves a group and refunds contributors, bypassing the vote. Admin only.",
	}
}

func refundRequestStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_refund_request_status",
		Description: "Reads the group's refund request and vote tally.",
	}
}

func refundRecordTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ajo_refund_record",
		Description: "Reads a member's refund record from a dissolved group.",
	}
}
