package group

import apperrors "github.com/ajofund/ajo/internal/platform/errors"

var (
	// ErrAmountZero indicates a zero contribution amount.
	ErrAmountZero = apperrors.New(apperrors.CodeContributionAmountZero, "contribution amount must be greater than zero")
	// ErrAmountNegative indicates a negative contribution amount.
	ErrAmountNegative = apperrors.New(apperrors.CodeContributionAmountNegative, "contribution amount must not be negative")
	// ErrCycleDurationZero indicates a missing cycle duration.
	ErrCycleDurationZero = apperrors.New(apperrors.CodeCycleDurationZero, "cycle duration must be greater than zero")
	// ErrMaxMembersBelowMinimum indicates a member cap under the minimum group size.
	ErrMaxMembersBelowMinimum = apperrors.New(apperrors.CodeMaxMembersBelowMinimum, "group needs at least two members")
	// ErrMaxMembersAboveLimit indicates a member cap over the supported maximum.
	ErrMaxMembersAboveLimit = apperrors.New(apperrors.CodeMaxMembersAboveLimit, "group member cap exceeds the supported maximum")
	// ErrInvalidGracePeriod indicates a grace period beyond the allowed maximum.
	ErrInvalidGracePeriod = apperrors.New(apperrors.CodeInvalidGracePeriod, "grace period exceeds the allowed maximum")
	// ErrInvalidPenaltyRate indicates a penalty rate above 100 percent.
	ErrInvalidPenaltyRate = apperrors.New(apperrors.CodeInvalidPenaltyRate, "penalty rate must be at most 100")

	// ErrGroupComplete indicates an operation against a completed group.
	ErrGroupComplete = apperrors.New(apperrors.CodeGroupComplete, "group has completed its rotation")
	// ErrGroupCancelled indicates an operation against a cancelled group.
	ErrGroupCancelled = apperrors.New(apperrors.CodeGroupCancelled, "group is cancelled")
	// ErrAlreadyMember indicates a duplicate join attempt.
	ErrAlreadyMember = apperrors.New(apperrors.CodeAlreadyMember, "principal is already a member")
	// ErrMaxMembersExceeded indicates a join attempt against a full group.
	ErrMaxMembersExceeded = apperrors.New(apperrors.CodeMaxMembersExceeded, "group is full")
	// ErrNotMember indicates the acting principal is not in the group.
	ErrNotMember = apperrors.New(apperrors.CodeNotMember, "principal is not a member of the group")
	// ErrNoMembers indicates a payout attempt with the rotation pointer out of range.
	ErrNoMembers = apperrors.New(apperrors.CodeNoMembers, "no member at the rotation pointer")

	// ErrGracePeriodExpired indicates a contribution after the grace window closed.
	ErrGracePeriodExpired = apperrors.New(apperrors.CodeGracePeriodExpired, "grace period has expired")

	// ErrMetadataTooLong indicates a metadata field over its length limit.
	ErrMetadataTooLong = apperrors.New(apperrors.CodeMetadataTooLong, "metadata field exceeds its length limit")
)
