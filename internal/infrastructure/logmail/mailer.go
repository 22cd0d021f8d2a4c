// Package logmail is the development mail driver: messages are written to the
// log instead of being delivered.
package logmail

import (
	"context"
	"log/slog"

	"github.com/email-otp-api/internal/domain"
)

type Mailer struct {
	logger *slog.Logger
}

func NewMailer(logger *slog.Logger) *Mailer {
	return &Mailer{logger: logger}
}

func (m *Mailer) Send(ctx context.Context, em domain.EmailMessage) error {
	m.logger.InfoContext(ctx, "email not delivered (log mail driver)",
		"to", em.To,
		"from", em.From,
		"subject", em.Subject,
		"text", em.Text,
	)
	return nil
}
