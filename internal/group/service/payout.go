package service

import (
	"context"

	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/group/event"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
)

// ExecutePayout pays the current cycle's pool to the member at the rotation
// pointer. Callable by anyone once the grace period has fully elapsed and
// every member has contributed; the final group write is the last step of
// the operation.
func (s *Service) ExecutePayout(ctx context.Context, groupID uint64) error {
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

	now := s.clock().UTC()
	if now.Before(g.GraceEnd()) {
		return apperrors.New(apperrors.CodeOutsideCycleWindow, "grace period has not elapsed")
	}

	for _, member := range g.Members {
		paid, err := s.store.HasContribution(ctx, groupID, g.CurrentCycle, member)
		if err != nil {
			return err
		}
		if !paid {
			return apperrors.WithMetadata(
				apperrors.CodeIncompleteContributions,
				"not every member contributed this cycle",
				map[string]string{"Member": member},
			)
		}
	}

	recipient, err := g.NextRecipient()
	if err != nil {
		return err
	}
	pool, err := s.store.GetPenaltyPool(ctx, groupID, g.CurrentCycle)
	if err != nil {
		return err
	}
	amount := g.BasePayout() + pool
	cycle := g.CurrentCycle

	// All reads done; write phase.
	if err := s.store.MarkPayoutReceived(ctx, groupID, recipient); err != nil {
		return err
	}
	g.AdvanceRotation(now)
	if err := s.store.PutGroup(ctx, g); err != nil {
		return err
	}

	s.events.Emit(ctx, groupID, event.TypePayoutExecuted, event.PayoutExecutedPayload{
		Recipient: recipient,
		Cycle:     cycle,
		Amount:    amount,
	})
	if pool > 0 {
		s.events.Emit(ctx, groupID, event.TypePenaltyDistributed, event.PenaltyDistributedPayload{
			Recipient: recipient,
			Cycle:     cycle,
			Amount:    pool,
		})
	}
	if g.IsComplete {
		s.events.Emit(ctx, groupID, event.TypeGroupCompleted, event.GroupCompletedPayload{
			TotalCycles: cycle,
		})
	}
	s.logger.InfoContext(ctx, "payout executed",
		"group_id", groupID,
		"recipient", recipient,
		"cycle", cycle,
		"amount", amount,
		"penalty_pool", pool,
		"complete", g.IsComplete,
	)
	return nil
}

// IsComplete reports whether the group finished its full rotation.
func (s *Service) IsComplete(ctx context.Context, groupID uint64) (bool, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	return g.IsComplete, nil
}

// HasReceivedPayout reports whether a member has been paid.
func (s *Service) HasReceivedPayout(ctx context.Context, groupID uint64, member string) (bool, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return false, err
	}
	return s.store.HasReceivedPayout(ctx, groupID, member)
}
