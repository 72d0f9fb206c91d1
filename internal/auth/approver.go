// Package auth verifies that the acting principal approved an engine call.
//
// The production implementation checks Ed25519-signed approval grants: short
// lived JWTs minted by a wallet or custody service the engine trusts, bound
// to the principal they vouch for.
package auth

import (
	"context"

	apperrors "github.com/ajofund/ajo/internal/platform/errors"
)

// Approver reports whether the named principal approved the current call.
type Approver interface {
	Approved(ctx context.Context, principal string) error
}

// StaticApprover approves a fixed set of principals. Test use only.
type StaticApprover map[string]bool

// Approved reports whether the principal is on the allow list.
func (a StaticApprover) Approved(_ context.Context, principal string) error {
	if a[principal] {
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeUnauthorized,
		"principal has not approved this call",
		map[string]string{"Principal": principal},
	)
}
