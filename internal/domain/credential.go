package domain

import "time"

// DefaultTokenLifetime is the lifetime requested for service account tokens.
const DefaultTokenLifetime = 7200 * time.Second

// Credential is a short-lived bearer token. It lives in process memory only.
type Credential struct {
	Token      string
	ExpiresIn  time.Duration
	AcquiredAt time.Time

	invalidated bool
}

func NewCredential(token string, expiresIn time.Duration, acquiredAt time.Time) Credential {
	return Credential{Token: token, ExpiresIn: expiresIn, AcquiredAt: acquiredAt}
}

// Valid reports whether the token is set, not invalidated and inside its
// declared lifetime at now.
func (c Credential) Valid(now time.Time) bool {
	if c.Token == "" || c.invalidated {
		return false
	}
	if c.ExpiresIn > 0 && !now.Before(c.AcquiredAt.Add(c.ExpiresIn)) {
		return false
	}
	return true
}

func (c *Credential) Invalidate() {
	c.invalidated = true
}
