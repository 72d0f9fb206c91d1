package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/group/event"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
	"github.com/ajofund/ajo/internal/storage"
)

// CreateGroup validates the configuration, allocates the next sequential id,
// and persists a fresh group with the creator as its first member.
func (s *Service) CreateGroup(ctx context.Context, approver auth.Approver, input group.CreateGroupInput) (uint64, error) {
	g, err := group.NewGroup(input, s.clock)
	if err != nil {
		return 0, err
	}
	if err := s.approve(ctx, approver, g.Creator); err != nil {
		return 0, err
	}
	if err := s.ensureUnpaused(ctx); err != nil {
		return 0, err
	}

	id, err := s.store.NextGroupID(ctx)
	if err != nil {
		return 0, err
	}
	g.ID = id
	if err := s.store.PutGroup(ctx, g); err != nil {
		return 0, err
	}

	s.events.Emit(ctx, id, event.TypeGroupCreated, event.GroupCreatedPayload{
		Creator:            g.Creator,
		ContributionAmount: g.ContributionAmount,
		CycleDurationSecs:  int64(g.CycleDuration.Seconds()),
		GracePeriodSecs:    int64(g.GracePeriod.Seconds()),
		PenaltyRate:        g.PenaltyRate,
		MaxMembers:         g.MaxMembers,
	})
	s.logger.InfoContext(ctx, "group created",
		"group_id", id,
		"creator", g.Creator,
		"contribution_amount", g.ContributionAmount,
		"max_members", g.MaxMembers,
	)
	return id, nil
}

// JoinGroup admits a member into an active group. Members join for
// themselves; there are no proxy joins.
func (s *Service) JoinGroup(ctx context.Context, approver auth.Approver, groupID uint64, member string) error {
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
	if err := g.Admit(member); err != nil {
		return err
	}
	if err := s.store.PutGroup(ctx, g); err != nil {
		return err
	}

	s.events.Emit(ctx, groupID, event.TypeMemberJoined, event.MemberJoinedPayload{
		Member:      member,
		MemberCount: len(g.Members),
	})
	s.logger.InfoContext(ctx, "member joined", "group_id", groupID, "member", member, "member_count", len(g.Members))
	return nil
}

// GetGroup returns a group record.
func (s *Service) GetGroup(ctx context.Context, groupID uint64) (group.Group, error) {
	return s.getGroup(ctx, groupID)
}

// ListMembers returns the group's members in payout order.
func (s *Service) ListMembers(ctx context.Context, groupID uint64) ([]string, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(g.Members), nil
}

// IsMember reports whether the principal belongs to the group.
func (s *Service) IsMember(ctx context.Context, groupID uint64, member string) (bool, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	return g.Contains(member), nil
}

// SetGroupMetadata stores descriptive metadata. Creator only.
func (s *Service) SetGroupMetadata(ctx context.Context, approver auth.Approver, groupID uint64, principal string, md group.GroupMetadata) error {
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
		return apperrors.New(apperrors.CodeUnauthorized, "only the creator can set group metadata")
	}
	md.GroupID = groupID
	if err := md.Validate(); err != nil {
		return err
	}
	return s.store.PutMetadata(ctx, md)
}

// GetGroupMetadata returns the group's metadata, or NOT_FOUND when unset.
func (s *Service) GetGroupMetadata(ctx context.Context, groupID uint64) (group.GroupMetadata, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return group.GroupMetadata{}, err
	}
	md, err := s.store.GetMetadata(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return group.GroupMetadata{}, apperrors.New(apperrors.CodeNotFound, "group metadata is not set")
		}
		return group.GroupMetadata{}, err
	}
	return md, nil
}
