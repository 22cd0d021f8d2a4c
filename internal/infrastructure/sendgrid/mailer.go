package sendgrid

import (
	"context"
	"fmt"

	"github.com/email-otp-api/internal/domain"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	DefaultHost  = "https://api.sendgrid.com"
	sendEndpoint = "/v3/mail/send"
)

// Mailer sends through the SendGrid v3 mail API.
type Mailer struct {
	apiKey string
	host   string
}

// NewMailer returns a Mailer for apiKey. An empty host uses DefaultHost.
func NewMailer(apiKey, host string) *Mailer {
	if host == "" {
		host = DefaultHost
	}
	return &Mailer{apiKey: apiKey, host: host}
}

func (m *Mailer) Send(ctx context.Context, em domain.EmailMessage) error {
	from := sgmail.NewEmail(em.FromName, em.From)
	to := sgmail.NewEmail("", em.To)
	body := sgmail.NewSingleEmail(from, em.Subject, to, em.Text, em.HTML)

	req := sendgrid.GetRequest(m.apiKey, sendEndpoint, m.host)
	req.Method = "POST"
	req.Body = sgmail.GetRequestBody(body)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
