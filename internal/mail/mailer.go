// AngelaMos | 2026
// mailer.go

package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/carterperez-dev/templates/user-api/internal/config"
)

const SubjectResetPassword = "Reset Password link"

var ErrEmptyRecipient = errors.New("mail: empty recipient")

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Delivery reports whether the SMTP server accepted the message.
type Delivery struct {
	Delivered bool
}

type Mailer interface {
	Send(ctx context.Context, msg Message) (Delivery, error)
}

type SMTPMailer struct {
	cfg    config.MailConfig
	logger *slog.Logger
	send   func(m *gomail.Message) error
}

func NewSMTPMailer(cfg config.MailConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)

	m := &SMTPMailer{cfg: cfg, logger: logger}
	m.send = func(gm *gomail.Message) error {
		return d.DialAndSend(gm)
	}
	return m
}

// Send returns an error only when the message cannot be built. A rejected
// or failed SMTP exchange is logged and reported as Delivered=false.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (Delivery, error) {
	if strings.TrimSpace(msg.To) == "" {
		return Delivery{}, ErrEmptyRecipient
	}

	if !m.cfg.Configured() {
		m.logger.WarnContext(ctx, "mail config missing, message not sent",
			slog.String("subject", msg.Subject),
		)
		return Delivery{Delivered: false}, nil
	}

	if err := ctx.Err(); err != nil {
		return Delivery{}, fmt.Errorf("send mail: %w", err)
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.FromEmail)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	if err := m.send(gm); err != nil {
		m.logger.ErrorContext(ctx, "mail delivery failed",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()),
		)
		return Delivery{Delivered: false}, nil
	}

	m.logger.InfoContext(ctx, "mail sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return Delivery{Delivered: true}, nil
}

func ResetPasswordMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: SubjectResetPassword,
		Text:    link,
		HTML: fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Reset your password</h2>
    <p>Use the link below to choose a new password:</p>
    <p><a href="%s">%s</a></p>
    <p>If you did not request a reset you can ignore this email.</p>
  </div>
</body>
</html>`, link, link),
	}
}
