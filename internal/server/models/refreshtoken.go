package models

import "time"

// RefreshToken is a server-tracked session record. Token is the opaque
// lookup key handed to the client. Revoked is terminal: a revoked token is
// never reinstated. Expiry is derived at check time from Expires, so a token
// can be revoked and expired at once; either state alone rejects it.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	Expires   time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at the given moment.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.Expires.Before(now)
}
