package services

import (
	"context"
	"fmt"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"gopkg.in/gomail.v2"
)

// Mailer sends account emails.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
	d   *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPMailer{cfg: cfg, d: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset your AyurSutra password")
	msg.SetBody("text/plain", fmt.Sprintf(
		"We received a request to reset your password.\n\nOpen this link to choose a new one:\n%s\n\nIf you did not ask for this, you can ignore this email.",
		link,
	))
	msg.AddAlternative("text/html", fmt.Sprintf(
		`<p>We received a request to reset your password.</p><p><a href="%s">Choose a new password</a></p><p>If you did not ask for this, you can ignore this email.</p>`,
		link,
	))

	done := make(chan error, 1)
	go func() {
		done <- m.d.DialAndSend(msg)
	}()

	// Respect ctx deadline if it's sooner than the configured timeout.
	wait := m.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return context.DeadlineExceeded
	}
}

// LogMailer writes reset links to the log instead of sending them. Used in
// demo mode and when SMTP is not configured.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.log.Info("password reset requested", "to", to, "link", link)
	return nil
}
