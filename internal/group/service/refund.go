package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/group/event"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
	"github.com/ajofund/ajo/internal/storage"
)

// CancelGroup dissolves a group before any payout has happened. Creator
// only; every current-cycle contributor is refunded their contribution.
func (s *Service) CancelGroup(ctx context.Context, approver auth.Approver, groupID uint64, principal string) error {
	if err := s.approve(ctx, approver, principal); err != nil {
		return err
	}
	if err := s.ensureUnpaused(ctx); err != nil {
		return err
	}
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if principal != g.Creator {
		return apperrors.New(apperrors.CodeOnlyCreatorCanCancel, "only the creator can cancel the group")
	}
	if g.PayoutIndex != 0 {
		return apperrors.New(apperrors.CodePayoutsStarted, "group cannot be cancelled after a payout")
	}
	if err := g.Cancel(); err != nil {
		return err
	}

	now := s.clock().UTC()
	contributors, err := s.currentCycleContributors(ctx, g)
	if err != nil {
		return err
	}

	// All reads done; write phase.
	total, err := s.refundContributors(ctx, g, contributors, group.RefundReasonCreatorCancellation, now)
	if err != nil {
		return err
	}
	if err := s.store.PutGroup(ctx, g); err != nil {
		return err
	}

	s.events.Emit(ctx, groupID, event.TypeGroupCancelled, event.GroupCancelledPayload{
		Reason:         string(group.RefundReasonCreatorCancellation),
		RefundedCount:  len(contributors),
		RefundedAmount: total,
	})
	s.logger.InfoContext(ctx, "group cancelled",
		"group_id", groupID,
		"creator", principal,
		"refunded", len(contributors),
	)
	return nil
}

// RequestRefund opens a refund vote after a cycle has fully timed out.
// Any member may request; one request per group, ever.
func (s *Service) RequestRefund(ctx context.Context, approver auth.Approver, groupID uint64, requester string) error {
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return apperrors.New(apperrors.CodeUnauthorized, "requester principal is required")
	}
	if err := s.approve(ctx, approver, requester); err != nil {
		return err
	}
	if err := s.ensureUnpaused(ctx); err != nil {
		return err
	}
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if g.State == group.StateCancelled {
		return group.ErrGroupCancelled
	}
	if g.IsComplete {
		return group.ErrGroupComplete
	}
	if !g.Contains(requester) {
		return group.ErrNotMember
	}
	now := s.clock().UTC()
	if !now.After(g.GraceEnd()) {
		return apperrors.New(apperrors.CodeCycleNotExpired, "cycle has not fully timed out")
	}
	exists, err := s.store.HasRefundRequest(ctx, groupID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.New(apperrors.CodeRefundRequestExists, "a refund request already exists for this group")
	}

	req := group.NewRefundRequest(groupID, requester, now)
	if err := s.store.PutRefundRequest(ctx, req); err != nil {
		return err
	}

	s.events.Emit(ctx, groupID, event.TypeRefundRequested, event.RefundRequestedPayload{
		Requester:      requester,
		VotingDeadline: req.VotingDeadline.Unix(),
	})
	s.logger.InfoContext(ctx, "refund requested", "group_id", groupID, "requester", requester, "deadline", req.VotingDeadline)
	return nil
}

// VoteRefund casts a member's vote on the group's refund request. One vote
// per member, only while the voting window is open.
func (s *Service) VoteRefund(ctx context.Context, approver auth.Approver, groupID uint64, voter string, inFavor bool) error {
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return apperrors.New(apperrors.CodeUnauthorized, "voter principal is required")
	}
	if err := s.approve(ctx, approver, voter); err != nil {
		return err
	}
	if err := s.ensureUnpaused(ctx); err != nil {
		return err
	}
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.Contains(voter) {
		return group.ErrNotMember
	}
	req, err := s.getRefundRequest(ctx, groupID)
	if err != nil {
		return err
	}
	if req.Executed {
		return apperrors.New(apperrors.CodeRefundAlreadyExecuted, "refund request is already decided")
	}
	voted, err := s.store.HasRefundVote(ctx, groupID, voter)
	if err != nil {
		return err
	}
	if voted {
		return apperrors.New(apperrors.CodeAlreadyVoted, "member already voted on this request")
	}
	now := s.clock().UTC()
	if !req.VotingOpen(now) {
		return apperrors.New(apperrors.CodeVotingPeriodEnded, "voting period has ended")
	}

	if inFavor {
		req.VotesFor++
	} else {
		req.VotesAgainst++
	}

	// All reads done; write phase.
	if err := s.store.PutRefundVote(ctx, group.RefundVote{
		GroupID:   groupID,
		Member:    voter,
		InFavor:   inFavor,
		Timestamp: now,
	}); err != nil {
		return err
	}
	if err := s.store.PutRefundRequest(ctx, req); err != nil {
		return err
	}

	s.events.Emit(ctx, groupID, event.TypeRefundVoteCast, event.RefundVoteCastPayload{
		Voter:   voter,
		InFavor: inFavor,
	})
	s.logger.InfoContext(ctx, "refund vote cast", "group_id", groupID, "voter", voter, "in_favor", inFavor)
	return nil
}

// ExecuteRefund tallies the vote once the voting deadline has passed.
// Callable by anyone. An unapproved request is marked decided and reported
// as RefundNotApproved; the group stays active. An approved request refunds
// every current-cycle contributor and cancels the group.
func (s *Service) ExecuteRefund(ctx context.Context, groupID uint64) error {
	if err := s.ensureUnpaused(ctx); err != nil {
		return err
	}
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	req, err := s.getRefundRequest(ctx, groupID)
	if err != nil {
		return err
	}
	if req.Executed {
		return apperrors.New(apperrors.CodeRefundAlreadyExecuted, "refund request is already decided")
	}
	now := s.clock().UTC()
	if req.VotingOpen(now) {
		return apperrors.New(apperrors.CodeVotingPeriodActive, "voting period is still active")
	}

	approved := req.Decide()
	if !approved {
		// Persisting the decision is the point of this branch; the coded
		// failure reports the tally to the caller.
		if err := s.store.PutRefundRequest(ctx, req); err != nil {
			return err
		}
		s.events.Emit(ctx, groupID, event.TypeRefundProcessed, event.RefundProcessedPayload{
			Approved:        false,
			ApprovalPercent: req.ApprovalPercent(),
			VotesFor:        req.VotesFor,
			VotesAgainst:    req.VotesAgainst,
		})
		s.logger.InfoContext(ctx, "refund rejected", "group_id", groupID, "approval_percent", req.ApprovalPercent())
		return apperrors.New(apperrors.CodeRefundNotApproved, "refund vote did not reach the approval threshold")
	}

	if err := g.Cancel(); err != nil {
		return err
	}
	contributors, err := s.currentCycleContributors(ctx, g)
	if err != nil {
		return err
	}

	// All reads done; write phase.
	if err := s.store.PutRefundRequest(ctx, req); err != nil {
		return err
	}
	total, err := s.refundContributors(ctx, g, contributors, group.RefundReasonMemberVote, now)
	if err != nil {
		return err
	}
	if err := s.store.PutGroup(ctx, g); err != nil {
		return err
	}

	s.events.Emit(ctx, groupID, event.TypeRefundProcessed, event.RefundProcessedPayload{
		Approved:        true,
		ApprovalPercent: req.ApprovalPercent(),
		VotesFor:        req.VotesFor,
		VotesAgainst:    req.VotesAgainst,
	})
	s.events.Emit(ctx, groupID, event.TypeGroupCancelled, event.GroupCancelledPayload{
		Reason:         string(group.RefundReasonMemberVote),
		RefundedCount:  len(contributors),
		RefundedAmount: total,
	})
	s.logger.InfoContext(ctx, "refund executed",
		"group_id", groupID,
		"approval_percent", req.ApprovalPercent(),
		"refunded", len(contributors),
	)
	return nil
}

// EmergencyRefund lets the admin dissolve a group and refund contributors,
// bypassing the voting protocol.
func (s *Service) EmergencyRefund(ctx context.Context, approver auth.Approver, groupID uint64, principal string) error {
	if err := s.requireAdmin(ctx, approver, principal, apperrors.CodeUnauthorized); err != nil {
		return err
	}
	if err := s.ensureUnpaused(ctx); err != nil {
		return err
	}
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if err := g.Cancel(); err != nil {
		return err
	}

	now := s.clock().UTC()
	contributors, err := s.currentCycleContributors(ctx, g)
	if err != nil {
		return err
	}

	// All reads done; write phase.
	total, err := s.refundContributors(ctx, g, contributors, group.RefundReasonEmergency, now)
	if err != nil {
		return err
	}
	if err := s.store.PutGroup(ctx, g); err != nil {
		return err
	}

	s.events.Emit(ctx, groupID, event.TypeRefundEmergency, event.RefundEmergencyPayload{
		Admin:          principal,
		RefundedCount:  len(contributors),
		RefundedAmount: total,
	})
	s.events.Emit(ctx, groupID, event.TypeGroupCancelled, event.GroupCancelledPayload{
		Reason:         string(group.RefundReasonEmergency),
		RefundedCount:  len(contributors),
		RefundedAmount: total,
	})
	s.logger.WarnContext(ctx, "emergency refund executed", "group_id", groupID, "admin", principal, "refunded", len(contributors))
	return nil
}

// GetRefundRequest returns the group's refund request.
func (s *Service) GetRefundRequest(ctx context.Context, groupID uint64) (group.RefundRequest, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return group.RefundRequest{}, err
	}
	return s.getRefundRequest(ctx, groupID)
}

// GetRefundRecord returns a member's refund record.
func (s *Service) GetRefundRecord(ctx context.Context, groupID uint64, member string) (group.RefundRecord, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return group.RefundRecord{}, err
	}
	rec, err := s.store.GetRefundRecord(ctx, groupID, member)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return group.RefundRecord{}, apperrors.New(apperrors.CodeNotFound, "refund record not found")
		}
		return group.RefundRecord{}, err
	}
	return rec, nil
}

func (s *Service) getRefundRequest(ctx context.Context, groupID uint64) (group.RefundRequest, error) {
	req, err := s.store.GetRefundRequest(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return group.RefundRequest{}, apperrors.New(apperrors.CodeRefundRequestNotFound, "refund request not found")
		}
		return group.RefundRequest{}, err
	}
	return req, nil
}

// currentCycleContributors returns the members holding a contribution
// record for the group's current cycle, in member order.
func (s *Service) currentCycleContributors(ctx context.Context, g group.Group) ([]string, error) {
	var contributors []string
	for _, member := range g.Members {
		paid, err := s.store.HasContribution(ctx, g.ID, g.CurrentCycle, member)
		if err != nil {
			return nil, err
		}
		if paid {
			contributors = append(contributors, member)
		}
	}
	return contributors, nil
}

// refundContributors writes one refund record per contributor, each for the
// full per-cycle contribution.
func (s *Service) refundContributors(ctx context.Context, g group.Group, contributors []string, reason group.RefundReason, now time.Time) (int64, error) {
	var total int64
	for _, member := range contributors {
		if err := s.store.PutRefundRecord(ctx, group.RefundRecord{
			GroupID:   g.ID,
			Member:    member,
			Amount:    g.ContributionAmount,
			Timestamp: now,
			Reason:    reason,
		}); err != nil {
			return total, err
		}
		total += g.ContributionAmount
	}
	return total, nil
}
