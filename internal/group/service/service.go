// Package service implements the savings engine operations over the storage
// contracts: group registry, contribution ledger, payout rotation, refund
// governance, and status reads.
//
// Every mutating operation performs all validation reads before any write so
// a failed call leaves no partial state. The host serializes calls that touch
// overlapping state.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/group/event"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
	"github.com/ajofund/ajo/internal/storage"
)

// Service exposes the engine operations.
type Service struct {
	store  storage.Store
	clock  func() time.Time
	events *event.Emitter
	logger *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the wall clock. Test use.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithEventSink routes notifications to the given sink.
func WithEventSink(sink event.Sink) Option {
	return func(s *Service) {
		s.events = event.NewEmitter(sink, s.clock)
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Service over the given store. Events go to a slog sink
// unless a sink option overrides it.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = event.NewEmitter(event.NewLogSink(s.logger), s.clock)
	}
	return s
}

// approve runs the caller-supplied approval capability for a principal.
func (s *Service) approve(ctx context.Context, approver auth.Approver, principal string) error {
	if approver == nil {
		return apperrors.New(apperrors.CodeUnauthorized, "approval capability is required")
	}
	return approver.Approved(ctx, principal)
}

// ensureUnpaused rejects mutating calls while the pause gate is set.
func (s *Service) ensureUnpaused(ctx context.Context) error {
	paused, err := s.store.IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return apperrors.New(apperrors.CodeEnginePaused, "engine is paused")
	}
	return nil
}

// getGroup loads a group, translating a storage miss to the domain code.
func (s *Service) getGroup(ctx context.Context, groupID uint64) (group.Group, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return group.Group{}, apperrors.New(apperrors.CodeGroupNotFound, "group not found")
		}
		return group.Group{}, err
	}
	return g, nil
}
