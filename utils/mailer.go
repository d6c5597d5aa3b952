// utils/mailer.go
package utils

import (
	"errors"
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// ErrMailNotConfigured surfaces as a 500 to the caller — the relay is a
// deployment concern, not a user error.
var ErrMailNotConfigured = errors.New("smtp relay not configured")

// Mailer sends plain-text mail through the configured SMTP relay.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewMailerFromEnv reads SMTP_* vars. Returns a mailer even when
// incomplete; Send reports ErrMailNotConfigured in that case so the
// server can still boot for local work without a relay.
func NewMailerFromEnv() *Mailer {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (m *Mailer) Configured() bool {
	return m.host != "" && m.user != "" && m.pass != "" && m.from != ""
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Configured() {
		return ErrMailNotConfigured
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
