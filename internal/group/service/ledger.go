package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/group/event"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
	"github.com/ajofund/ajo/internal/storage"
)

// ContributionStatus reports who has paid for one cycle, in member order.
type ContributionStatus struct {
	GroupID     uint64   `json:"group_id"`
	Cycle       int      `json:"cycle"`
	Contributed []string `json:"contributed"`
	Pending     []string `json:"pending"`
}

// Contribute records a member's contribution for the current cycle. The
// actual value settlement is the external ledger's concern and is assumed
// complete before this call.
func (s *Service) Contribute(ctx context.Context, approver auth.Approver, groupID uint64, member string) error {
	member = strings.TrimSpace(member)
	if member == "" {
		return apperrors.New(apperrors.CodeUnauthorized, "member principal is required")
	}
	if err := s.approve(ctx, approver, member); err != nil {
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
	if !g.Contains(member) {
		return group.ErrNotMember
	}
	already, err := s.store.HasContribution(ctx, groupID, g.CurrentCycle, member)
	if err != nil {
		return err
	}
	if already {
		return apperrors.New(apperrors.CodeAlreadyContributed, "member already contributed this cycle")
	}

	now := s.clock().UTC()
	isLate, penalty, err := g.ClassifyContribution(now)
	if err != nil {
		return err
	}

	penaltyRec, err := s.store.GetPenaltyRecord(ctx, groupID, member)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		penaltyRec = group.NewMemberPenaltyRecord(groupID, member)
	}
	penaltyRec.RecordContribution(isLate, penalty)

	// All reads done; write phase.
	rec := group.ContributionRecord{
		GroupID:       groupID,
		Cycle:         g.CurrentCycle,
		Member:        member,
		HasPaid:       true,
		Timestamp:     now,
		IsLate:        isLate,
		PenaltyAmount: penalty,
	}
	if err := s.store.PutContribution(ctx, rec); err != nil {
		return err
	}
	if err := s.store.PutPenaltyRecord(ctx, penaltyRec); err != nil {
		return err
	}
	if isLate && penalty > 0 {
		if err := s.store.AddToPenaltyPool(ctx, groupID, g.CurrentCycle, penalty); err != nil {
			return err
		}
	}

	eventType := event.TypeContributionMade
	if isLate {
		eventType = event.TypeContributionLate
	}
	s.events.Emit(ctx, groupID, eventType, event.ContributionPayload{
		Member:        member,
		Cycle:         g.CurrentCycle,
		Amount:        g.ContributionAmount,
		PenaltyAmount: penalty,
	})
	s.logger.InfoContext(ctx, "contribution recorded",
		"group_id", groupID,
		"member", member,
		"cycle", g.CurrentCycle,
		"late", isLate,
		"penalty", penalty,
	)
	return nil
}

// GetContributionStatus reports paid and pending members for a cycle,
// preserving member order.
func (s *Service) GetContributionStatus(ctx context.Context, groupID uint64, cycle int) (ContributionStatus, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return ContributionStatus{}, err
	}
	status := ContributionStatus{GroupID: groupID, Cycle: cycle}
	for _, member := range g.Members {
		paid, err := s.store.HasContribution(ctx, groupID, cycle, member)
		if err != nil {
			return ContributionStatus{}, err
		}
		if paid {
			status.Contributed = append(status.Contributed, member)
		} else {
			status.Pending = append(status.Pending, member)
		}
	}
	return status, nil
}

// GetContributionDetail returns one contribution record.
func (s *Service) GetContributionDetail(ctx context.Context, groupID uint64, cycle int, member string) (group.ContributionRecord, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return group.ContributionRecord{}, err
	}
	rec, err := s.store.GetContribution(ctx, groupID, cycle, member)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return group.ContributionRecord{}, apperrors.New(apperrors.CodeNotFound, "contribution record not found")
		}
		return group.ContributionRecord{}, err
	}
	return rec, nil
}

// GetMemberPenaltyRecord returns a member's punctuality aggregate. A member
// with no contributions yet has full reliability.
func (s *Service) GetMemberPenaltyRecord(ctx context.Context, groupID uint64, member string) (group.MemberPenaltyRecord, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return group.MemberPenaltyRecord{}, err
	}
	if !g.Contains(member) {
		return group.MemberPenaltyRecord{}, group.ErrNotMember
	}
	rec, err := s.store.GetPenaltyRecord(ctx, groupID, member)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return group.NewMemberPenaltyRecord(groupID, member), nil
		}
		return group.MemberPenaltyRecord{}, err
	}
	return rec, nil
}

// GetCyclePenaltyPool returns a cycle's accumulated penalty pool.
func (s *Service) GetCyclePenaltyPool(ctx context.Context, groupID uint64, cycle int) (int64, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return 0, err
	}
	return s.store.GetPenaltyPool(ctx, groupID, cycle)
}
