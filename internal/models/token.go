package models

import (
	"time"
)

// IssuedToken is a signed session token as returned to the user.
// Tokens are stateless and never persisted: the signature and the embedded
// expiry are all the server needs to verify one later.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
