package domain

import "time"

// CodeTTL is how long an issued code stays valid.
const CodeTTL = 5 * time.Minute

// PendingCode is the single outstanding OTP for an email address.
// A new request replaces it; a successful verification consumes it.
type PendingCode struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether now is past the code's expiry.
func (p *PendingCode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
