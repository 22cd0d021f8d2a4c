package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/email-otp-api/internal/domain"
	"github.com/email-otp-api/internal/pkg/clock"
	"github.com/email-otp-api/internal/pkg/id"
	"github.com/email-otp-api/internal/pkg/otpcode"
	"github.com/email-otp-api/internal/pkg/validate"
)

// Caller-facing messages.
const (
	MsgSent           = "OTP sent successfully!"
	MsgVerified       = "OTP verified successfully!"
	MsgEmailRequired  = "Email is required"
	MsgEmailInvalid   = "Invalid email format"
	MsgOTPRequired    = "OTP is required"
	MsgNotFound       = "No OTP found for this email"
	MsgExpired        = "OTP has expired"
	MsgMismatch       = "Invalid OTP"
	MsgDeliveryFailed = "Failed to send OTP"
	MsgInternal       = "Internal server error"
	emailSubject      = "Your OTP Code"
	emailTextTemplate = "Your OTP is %s"
	emailHTMLTemplate = "<p>Your OTP is <strong>%s</strong></p>"
)

// Store holds at most one pending code per email.
// Get must return expired entries and wrap domain.ErrNotFound when absent.
// Consume must check the issuance id and delete in one atomic step, reporting
// false when the entry is already gone or belongs to a newer issuance.
type Store interface {
	Put(ctx context.Context, p *domain.PendingCode) error
	Get(ctx context.Context, email string) (*domain.PendingCode, error)
	Delete(ctx context.Context, email string) error
	Consume(ctx context.Context, email, id string) (bool, error)
}

// Sender delivers one email message.
type Sender interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// AlertNotifier is told about codes that were stored but could not be delivered.
type AlertNotifier interface {
	DeliveryFailed(ctx context.Context, issuanceID, email string, cause error) error
}

type Service interface {
	// RequestCode issues a fresh code for email, replacing any pending one, and mails it.
	RequestCode(ctx context.Context, email string) error
	// VerifyCode consumes the pending code for email if code matches and has not expired.
	VerifyCode(ctx context.Context, email, code string) error
}

// ServiceDeps groups the collaborators of the OTP service. Alerts and Clock are optional.
type ServiceDeps struct {
	Store     Store
	Sender    Sender
	Alerts    AlertNotifier
	Clock     clock.Clocker
	FromEmail string
	FromName  string
	Generate  func() (string, error)
}

type service struct {
	store     Store
	sender    Sender
	alerts    AlertNotifier
	clock     clock.Clocker
	fromEmail string
	fromName  string
	generate  func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:     deps.Store,
		sender:    deps.Sender,
		alerts:    deps.Alerts,
		clock:     deps.Clock,
		fromEmail: deps.FromEmail,
		fromName:  deps.FromName,
		generate:  deps.Generate,
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.generate == nil {
		s.generate = otpcode.Generate
	}
	return s
}

func (s *service) RequestCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.NewError(domain.ErrInvalidInput, MsgEmailRequired)
	}
	if !validate.Email(email) {
		return domain.NewError(domain.ErrInvalidInput, MsgEmailInvalid)
	}

	code, err := s.generate()
	if err != nil {
		return domain.WrapError(domain.ErrInternal, MsgInternal, err)
	}
	now := s.clock.Now()
	p := &domain.PendingCode{
		ID:        id.NewAt(now),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(domain.CodeTTL),
	}
	// Stored before sending: a failed delivery leaves the code verifiable.
	if err := s.store.Put(ctx, p); err != nil {
		return domain.WrapError(domain.ErrInternal, MsgInternal, fmt.Errorf("store pending code: %w", err))
	}
	slog.Info("otp issued", "id", p.ID, "email", email, "expires_at", p.ExpiresAt)

	if err := s.sender.Send(ctx, s.message(email, code)); err != nil {
		slog.Error("otp delivery failed", "id", p.ID, "email", email, "err", err)
		s.alert(ctx, p, err)
		return domain.WrapError(domain.ErrDeliveryFailed, MsgDeliveryFailed, err)
	}
	return nil
}

func (s *service) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.NewError(domain.ErrInvalidInput, MsgEmailRequired)
	}
	if code == "" {
		return domain.NewError(domain.ErrInvalidInput, MsgOTPRequired)
	}

	p, err := s.store.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return domain.WrapError(domain.ErrInternal, MsgInternal, fmt.Errorf("load pending code: %w", err))
	}

	if p.Expired(s.clock.Now()) {
		if err := s.store.Delete(ctx, email); err != nil {
			slog.Warn("failed to delete expired otp", "id", p.ID, "err", err)
		}
		return domain.NewError(domain.ErrExpired, MsgExpired)
	}
	if code != p.Code {
		return domain.NewError(domain.ErrMismatch, MsgMismatch)
	}

	consumed, err := s.store.Consume(ctx, email, p.ID)
	if err != nil {
		return domain.WrapError(domain.ErrInternal, MsgInternal, fmt.Errorf("consume pending code: %w", err))
	}
	if !consumed {
		// Lost to a concurrent verify or a newer request.
		return domain.NewError(domain.ErrNotFound, MsgNotFound)
	}
	slog.Info("otp verified", "id", p.ID, "email", email)
	return nil
}

func (s *service) message(to, code string) domain.EmailMessage {
	return domain.EmailMessage{
		To:       to,
		From:     s.fromEmail,
		FromName: s.fromName,
		Subject:  emailSubject,
		Text:     fmt.Sprintf(emailTextTemplate, code),
		HTML:     fmt.Sprintf(emailHTMLTemplate, code),
	}
}

func (s *service) alert(ctx context.Context, p *domain.PendingCode, cause error) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.DeliveryFailed(context.WithoutCancel(ctx), p.ID, p.Email, cause); err != nil {
		slog.Warn("failed to publish delivery alert", "id", p.ID, "err", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
