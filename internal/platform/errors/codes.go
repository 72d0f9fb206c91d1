// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeGroupNotFound         Code = "GROUP_NOT_FOUND"
	CodeRefundRequestNotFound Code = "REFUND_REQUEST_NOT_FOUND"
	CodeNotFound              Code = "NOT_FOUND"

	// Validation errors
	CodeContributionAmountZero     Code = "CONTRIBUTION_AMOUNT_ZERO"
	CodeContributionAmountNegative Code = "CONTRIBUTION_AMOUNT_NEGATIVE"
	CodeCycleDurationZero          Code = "CYCLE_DURATION_ZERO"
	CodeMaxMembersBelowMinimum     Code = "MAX_MEMBERS_BELOW_MINIMUM"
	CodeMaxMembersAboveLimit       Code = "MAX_MEMBERS_ABOVE_LIMIT"
	CodeInvalidGracePeriod         Code = "INVALID_GRACE_PERIOD"
	CodeInvalidPenaltyRate         Code = "INVALID_PENALTY_RATE"
	CodeMetadataTooLong            Code = "METADATA_TOO_LONG"

	// Authorization errors
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeOnlyCreatorCanCancel  Code = "ONLY_CREATOR_CAN_CANCEL"
	CodeNotMember             Code = "NOT_MEMBER"
	CodeUnauthorizedPause     Code = "UNAUTHORIZED_PAUSE"
	CodeUnauthorizedUnpause   Code = "UNAUTHORIZED_UNPAUSE"
	CodeApprovalGrantInvalid  Code = "APPROVAL_GRANT_INVALID"
	CodeApprovalGrantExpired  Code = "APPROVAL_GRANT_EXPIRED"
	CodeApprovalGrantMismatch Code = "APPROVAL_GRANT_MISMATCH"

	// State conflict errors
	CodeAlreadyMember           Code = "ALREADY_MEMBER"
	CodeAlreadyContributed      Code = "ALREADY_CONTRIBUTED"
	CodeAlreadyVoted            Code = "ALREADY_VOTED"
	CodeGroupComplete           Code = "GROUP_COMPLETE"
	CodeGroupCancelled          Code = "GROUP_CANCELLED"
	CodeMaxMembersExceeded      Code = "MAX_MEMBERS_EXCEEDED"
	CodeRefundRequestExists     Code = "REFUND_REQUEST_EXISTS"
	CodeRefundAlreadyExecuted   Code = "REFUND_ALREADY_EXECUTED"
	CodeRefundNotApproved       Code = "REFUND_NOT_APPROVED"
	CodeAlreadyInitialized      Code = "ALREADY_INITIALIZED"
	CodeEnginePaused            Code = "ENGINE_PAUSED"
	CodeNoMembers               Code = "NO_MEMBERS"
	CodeIncompleteContributions Code = "INCOMPLETE_CONTRIBUTIONS"
	CodePayoutsStarted          Code = "PAYOUTS_STARTED"

	// Timing errors
	CodeGracePeriodExpired Code = "GRACE_PERIOD_EXPIRED"
	CodeOutsideCycleWindow Code = "OUTSIDE_CYCLE_WINDOW"
	CodeCycleNotExpired    Code = "CYCLE_NOT_EXPIRED"
	CodeVotingPeriodActive Code = "VOTING_PERIOD_ACTIVE"
	CodeVotingPeriodEnded  Code = "VOTING_PERIOD_ENDED"
	CodeGraceNotExpired    Code = "GRACE_NOT_EXPIRED"
)

// Category groups codes by how callers should react to them.
type Category string

const (
	CategoryNotFound      Category = "not_found"
	CategoryValidation    Category = "validation"
	CategoryAuthorization Category = "authorization"
	CategoryConflict      Category = "conflict"
	CategoryTiming        Category = "timing"
	CategoryUnknown       Category = "unknown"
)

// Category maps domain codes to their failure category.
func (c Code) Category() Category {
	switch c {
	case CodeGroupNotFound,
		CodeRefundRequestNotFound,
		CodeNotFound:
		return CategoryNotFound

	case CodeContributionAmountZero,
		CodeContributionAmountNegative,
		CodeCycleDurationZero,
		CodeMaxMembersBelowMinimum,
		CodeMaxMembersAboveLimit,
		CodeInvalidGracePeriod,
		CodeInvalidPenaltyRate,
		CodeMetadataTooLong:
		return CategoryValidation

	case CodeUnauthorized,
		CodeOnlyCreatorCanCancel,
		CodeNotMember,
		CodeUnauthorizedPause,
		CodeUnauthorizedUnpause,
		CodeApprovalGrantInvalid,
		CodeApprovalGrantExpired,
		CodeApprovalGrantMismatch:
		return CategoryAuthorization

	case CodeAlreadyMember,
		CodeAlreadyContributed,
		CodeAlreadyVoted,
		CodeGroupComplete,
		CodeGroupCancelled,
		CodeMaxMembersExceeded,
		CodeRefundRequestExists,
		CodeRefundAlreadyExecuted,
		CodeRefundNotApproved,
		CodeAlreadyInitialized,
		CodeEnginePaused,
		CodeNoMembers,
		CodeIncompleteContributions,
		CodePayoutsStarted:
		return CategoryConflict

	case CodeGracePeriodExpired,
		CodeOutsideCycleWindow,
		CodeCycleNotExpired,
		CodeVotingPeriodActive,
		CodeVotingPeriodEnded,
		CodeGraceNotExpired:
		return CategoryTiming
	}
	return CategoryUnknown
}
