package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/swediversity/swediversity-api/pkg/config"
)

// Mailer delivers transactional mail. Delivery is best effort; callers decide
// how failures are reported.
type Mailer interface {
	SendResetLink(email, resetToken string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	resetURL string
}

// NewSMTPMailer constructs a mailer from the mail configuration.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.FromAddress,
		resetURL: cfg.ResetURL,
	}
}

// SendResetLink mails a password reset link containing the signed token.
func (m *SMTPMailer) SendResetLink(email, resetToken string) error {
	link := fmt.Sprintf("%s/%s", m.resetURL, resetToken)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Swediversity password reset request")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>A password reset was requested for your account. Follow the link below to choose a new password. The link expires in 20 minutes.</p><a href=%q>%s</a>`,
		link, link,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset link to %s: %w", email, err)
	}
	return nil
}
