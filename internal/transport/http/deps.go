package http

import (
	"time"

	"github.com/email-otp-api/internal/application/otp"
)

// Deps holds the application services the router mounts.
type Deps struct {
	OTPService otp.Service
	// Now backs the health timestamp; nil means time.Now.
	Now func() time.Time
}
