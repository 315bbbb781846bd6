package auth

import (
	"time"
)

// AccessClaims is the payload of a signed access token. It is never
// persisted; signature plus expiry are the whole proof.
type AccessClaims struct {
	Sub  int64
	Role string
	Exp  time.Time
}

// RefreshSession is one long-lived login. The opaque token value is the
// lookup key; the database is the sole authority on its validity.
type RefreshSession struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}
