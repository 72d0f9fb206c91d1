// Package storage defines the persistence contracts for the savings engine.
package storage

import (
	"context"
	"errors"

	"github.com/ajofund/ajo/internal/group"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// GroupStore persists group records and allocates sequential group ids.
type GroupStore interface {
	// NextGroupID atomically increments and returns the group id counter.
	// The first id handed out is 1.
	NextGroupID(ctx context.Context) (uint64, error)
	PutGroup(ctx context.Context, g group.Group) error
	GetGroup(ctx context.Context, id uint64) (group.Group, error)
}

// ContributionStore persists per-cycle contribution records.
type ContributionStore interface {
	PutContribution(ctx context.Context, rec group.ContributionRecord) error
	GetContribution(ctx context.Context, groupID uint64, cycle int, member string) (group.ContributionRecord, error)
	HasContribution(ctx context.Context, groupID uint64, cycle int, member string) (bool, error)
}

// PenaltyStore persists member penalty aggregates and cycle penalty pools.
type PenaltyStore interface {
	PutPenaltyRecord(ctx context.Context, rec group.MemberPenaltyRecord) error
	GetPenaltyRecord(ctx context.Context, groupID uint64, member string) (group.MemberPenaltyRecord, error)
	AddToPenaltyPool(ctx context.Context, groupID uint64, cycle int, amount int64) error
	GetPenaltyPool(ctx context.Context, groupID uint64, cycle int) (int64, error)
}

// PayoutStore tracks which members have received their payout.
type PayoutStore interface {
	MarkPayoutReceived(ctx context.Context, groupID uint64, member string) error
	HasReceivedPayout(ctx context.Context, groupID uint64, member string) (bool, error)
}

// MetadataStore persists optional group metadata.
type MetadataStore interface {
	PutMetadata(ctx context.Context, md group.GroupMetadata) error
	GetMetadata(ctx context.Context, groupID uint64) (group.GroupMetadata, error)
}

// RefundStore persists refund governance state.
type RefundStore interface {
	PutRefundRequest(ctx context.Context, req group.RefundRequest) error
	GetRefundRequest(ctx context.Context, groupID uint64) (group.RefundRequest, error)
	HasRefundRequest(ctx context.Context, groupID uint64) (bool, error)
	PutRefundVote(ctx context.Context, vote group.RefundVote) error
	HasRefundVote(ctx context.Context, groupID uint64, member string) (bool, error)
	PutRefundRecord(ctx context.Context, rec group.RefundRecord) error
	GetRefundRecord(ctx context.Context, groupID uint64, member string) (group.RefundRecord, error)
}

// AdminStore persists the singleton admin principal and the pause gate.
type AdminStore interface {
	SetAdmin(ctx context.Context, principal string) error
	GetAdmin(ctx context.Context) (string, error)
	SetPaused(ctx context.Context, paused bool) error
	IsPaused(ctx context.Context) (bool, error)
}

// Store composes every record family behind one backend.
type Store interface {
	GroupStore
	ContributionStore
	PenaltyStore
	PayoutStore
	MetadataStore
	RefundStore
	AdminStore
	Close() error
}
