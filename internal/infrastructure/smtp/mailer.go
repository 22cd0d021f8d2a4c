package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/email-otp-api/internal/config"
	"github.com/email-otp-api/internal/domain"
	"github.com/wneessen/go-mail"
)

const defaultTimeout = 10 * time.Second

// Mailer delivers messages over SMTP as multipart text + HTML.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	auth     string
	timeout  time.Duration
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		auth:     cfg.SMTPAuthMethod,
		timeout:  defaultTimeout,
	}
}

func (m *Mailer) Send(ctx context.Context, em domain.EmailMessage) error {
	msg, err := buildMsg(em)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(m.host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *Mailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTimeout(m.timeout),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(m.authType()),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	return opts
}

// authType maps SMTP_AUTH_METHOD to a go-mail auth type. Unknown values use PLAIN.
func (m *Mailer) authType() mail.SMTPAuthType {
	switch m.auth {
	case "LOGIN":
		return mail.SMTPAuthLogin
	case "CRAM-MD5":
		return mail.SMTPAuthCramMD5
	default:
		return mail.SMTPAuthPlain
	}
}

func buildMsg(em domain.EmailMessage) (*mail.Msg, error) {
	msg := mail.NewMsg()
	var err error
	if em.FromName != "" {
		err = msg.FromFormat(em.FromName, em.From)
	} else {
		err = msg.From(em.From)
	}
	if err != nil {
		return nil, fmt.Errorf("smtp from address: %w", err)
	}
	if err := msg.To(em.To); err != nil {
		return nil, fmt.Errorf("smtp to address: %w", err)
	}
	msg.Subject(em.Subject)
	msg.SetBodyString(mail.TypeTextPlain, em.Text)
	if em.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, em.HTML)
	}
	return msg, nil
}
