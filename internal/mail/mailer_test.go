// AngelaMos | 2026
// mailer_test.go

package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/carterperez-dev/templates/user-api/internal/config"
)

func testMailer(send func(*gomail.Message) error) *SMTPMailer {
	m := NewSMTPMailer(config.MailConfig{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		FromEmail: "noreply@example.com",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.send = send
	return m
}

func TestSMTPMailer_Send(t *testing.T) {
	var got *gomail.Message
	m := testMailer(func(gm *gomail.Message) error {
		got = gm
		return nil
	})

	msg := ResetPasswordMessage("a@x.com", "https://api.example.com/auth/password-reset/T1")
	d, err := m.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, d.Delivered)

	require.NotNil(t, got)
	assert.Equal(t, []string{"a@x.com"}, got.GetHeader("To"))
	assert.Equal(t, []string{SubjectResetPassword}, got.GetHeader("Subject"))
	assert.Equal(t, []string{"noreply@example.com"}, got.GetHeader("From"))
}

func TestSMTPMailer_SendFailureIsNotDelivered(t *testing.T) {
	m := testMailer(func(*gomail.Message) error {
		return errors.New("554 rejected")
	})

	d, err := m.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Text: "t"})
	require.NoError(t, err)
	assert.False(t, d.Delivered)
}

func TestSMTPMailer_DialFailureIsNotDelivered(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	m := NewSMTPMailer(config.MailConfig{
		SMTPHost:  "127.0.0.1",
		SMTPPort:  port,
		FromEmail: "noreply@example.com",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	d, err := m.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Text: "t"})
	require.NoError(t, err)
	assert.False(t, d.Delivered)
}

func TestSMTPMailer_EmptyRecipient(t *testing.T) {
	m := testMailer(func(*gomail.Message) error {
		t.Fatal("send must not be called")
		return nil
	})

	_, err := m.Send(context.Background(), Message{To: "  "})
	assert.ErrorIs(t, err, ErrEmptyRecipient)
}

func TestSMTPMailer_Unconfigured(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.send = func(*gomail.Message) error {
		t.Fatal("send must not be called")
		return nil
	}

	d, err := m.Send(context.Background(), Message{To: "a@x.com"})
	require.NoError(t, err)
	assert.False(t, d.Delivered)
}

func TestResetPasswordMessage(t *testing.T) {
	link := "http://localhost:3000/auth/password-reset/abc"
	msg := ResetPasswordMessage("a@x.com", link)

	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "Reset Password link", msg.Subject)
	assert.Equal(t, link, msg.Text)
	assert.Contains(t, msg.HTML, `href="`+link+`"`)
}
