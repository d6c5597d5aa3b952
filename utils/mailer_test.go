package utils

import (
	"errors"
	"testing"
)

func TestNewMailerFromEnvDefaults(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("SMTP_PASS", "")
	t.Setenv("SMTP_FROM", "")

	m := NewMailerFromEnv()
	if m.port != "587" {
		t.Errorf("default port = %q, want 587", m.port)
	}
	if m.Configured() {
		t.Error("empty env reported as configured")
	}
}

func TestMailerConfigured(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USER", "relay-user")
	t.Setenv("SMTP_PASS", "relay-pass")
	t.Setenv("SMTP_FROM", "noreply@esportsarena.in")

	m := NewMailerFromEnv()
	if !m.Configured() {
		t.Error("full env reported as not configured")
	}
	if m.port != "2525" {
		t.Errorf("port = %q, want 2525", m.port)
	}
}

func TestSendWithoutRelay(t *testing.T) {
	m := &Mailer{}
	err := m.Send("player@example.com", "Hello", "body")
	if !errors.Is(err, ErrMailNotConfigured) {
		t.Errorf("err = %v, want ErrMailNotConfigured", err)
	}
}
