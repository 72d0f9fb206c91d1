package service

import (
	"context"

	"github.com/ajofund/ajo/internal/group/projection"
)

// GetGroupStatus assembles the full read-only status snapshot for a group.
func (s *Service) GetGroupStatus(ctx context.Context, groupID uint64) (projection.GroupStatus, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return projection.GroupStatus{}, err
	}
	var pending []string
	for _, member := range g.Members {
		paid, err := s.store.HasContribution(ctx, groupID, g.CurrentCycle, member)
		if err != nil {
			return projection.GroupStatus{}, err
		}
		if !paid {
			pending = append(pending, member)
		}
	}
	pool, err := s.store.GetPenaltyPool(ctx, groupID, g.CurrentCycle)
	if err != nil {
		return projection.GroupStatus{}, err
	}
	return projection.Build(g, pending, pool, s.clock().UTC()), nil
}
