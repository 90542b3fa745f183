package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig carries the transport settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
	// FrontendBaseURL is the storefront origin the reset link points at.
	FrontendBaseURL string
}

// SMTPMailer sends recovery emails over SMTP with STARTTLS.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendRecoveryEmail mails a reset link of the form
// <frontend-base-url>/reset-password?token=<token>.
func (m *SMTPMailer) SendRecoveryEmail(ctx context.Context, email, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendBaseURL, token)

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.User); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject("Password recovery - Expre-Shop")
	msg.SetBodyString(gomail.TypeTextHTML, recoveryBody(resetLink))

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}

func recoveryBody(resetLink string) string {
	return fmt.Sprintf(`<p>Hello,</p>
<p>Click the link below to reset your password:</p>
<p><a href="%s">%s</a></p>
<p>This link will expire in 1 hour.</p>`, resetLink, resetLink)
}
