// Package refreshtokens declares the refresh-token ledger contract: the
// persistent record of opaque session tokens, their expiry, and their
// revocation state.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dsavelev/sessiond/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of
	// now+validity and revoked = false. The token string is the unique
	// lookup key.
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string and returns
	// its full record, revoked or not. Returns common.ErrorNotFound when the
	// token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// RevokeActive marks the token revoked only if it is not revoked yet.
	// Returns common.ErrorNotFound when no active row was updated, which is
	// how concurrent rotation losers are told apart: of N callers presenting
	// the same token, exactly one sees nil.
	RevokeActive(ctx context.Context, token string) error

	// Revoke marks the token revoked unconditionally. Revoking an absent or
	// already-revoked token is a no-op, not an error.
	Revoke(ctx context.Context, token string) error

	// DeleteAllForUser removes every token owned by userID. Cleanup hook for
	// account deletion; the session flows never call it.
	DeleteAllForUser(ctx context.Context, userID int64) error
}
