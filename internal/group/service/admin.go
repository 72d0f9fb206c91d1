package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ajofund/ajo/internal/auth"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
	"github.com/ajofund/ajo/internal/storage"
)

// Initialize sets the singleton admin principal. It succeeds exactly once.
func (s *Service) Initialize(ctx context.Context, approver auth.Approver, admin string) error {
	admin = strings.TrimSpace(admin)
	if admin == "" {
		return apperrors.New(apperrors.CodeUnauthorized, "admin principal is required")
	}
	if err := s.approve(ctx, approver, admin); err != nil {
		return err
	}
	_, err := s.store.GetAdmin(ctx)
	if err == nil {
		return apperrors.New(apperrors.CodeAlreadyInitialized, "engine is already initialized")
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err := s.store.SetAdmin(ctx, admin); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "engine initialized", "admin", admin)
	return nil
}

// Pause sets the pause gate. Admin only; works while already paused.
func (s *Service) Pause(ctx context.Context, approver auth.Approver, principal string) error {
	if err := s.requireAdmin(ctx, approver, principal, apperrors.CodeUnauthorizedPause); err != nil {
		return err
	}
	if err := s.store.SetPaused(ctx, true); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "engine paused", "admin", principal)
	return nil
}

// Unpause clears the pause gate. Admin only.
func (s *Service) Unpause(ctx context.Context, approver auth.Approver, principal string) error {
	if err := s.requireAdmin(ctx, approver, principal, apperrors.CodeUnauthorizedUnpause); err != nil {
		return err
	}
	if err := s.store.SetPaused(ctx, false); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "engine unpaused", "admin", principal)
	return nil
}

// IsPaused reports the pause gate.
func (s *Service) IsPaused(ctx context.Context) (bool, error) {
	return s.store.IsPaused(ctx)
}

func (s *Service) requireAdmin(ctx context.Context, approver auth.Approver, principal string, code apperrors.Code) error {
	if err := s.approve(ctx, approver, principal); err != nil {
		return err
	}
	admin, err := s.store.GetAdmin(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(code, "engine admin is not initialized")
		}
		return err
	}
	if principal != admin {
		return apperrors.New(code, "principal is not the engine admin")
	}
	return nil
}
