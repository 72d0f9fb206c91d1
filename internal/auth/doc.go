// Package auth verifies approval grants for engine operations.
//
// Every mutating operation acts on behalf of a principal and requires an
// Approver capability. The production implementation validates a signed
// Ed25519 JWT grant issued by an external wallet or custody service and
// checks that it vouches for the acting principal. Tests substitute a
// StaticApprover.
package auth
