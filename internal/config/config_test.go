package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS",
		"SESSION_TTL", "APP_NAME", "REMINDER_TIME", "TIMEZONE", "REMINDER_SEND_TIMEOUT",
		"NOTIFIER", "SMTP_SERVER", "SMTP_PORT", "EMAIL_USER", "EMAIL_PASSWORD", "EMAIL_FROM",
		"POSTMARK_TOKEN", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "recuring.db", cfg.DatabaseURL)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "07:00", cfg.ReminderTime)
	assert.Equal(t, 30*time.Second, cfg.ReminderSendTimeout)
	assert.Equal(t, "log", cfg.Notifier)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "RecuRing", cfg.AppName)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REMINDER_TIME", "06:30")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")
	t.Setenv("NOTIFIER", "SMTP")
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "06:30", cfg.ReminderTime)
	assert.Equal(t, "smtp", cfg.Notifier)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"SESSION_TTL": "forever"}},
		{name: "bad port", env: map[string]string{"SMTP_PORT": "smtp"}},
		{name: "unknown notifier", env: map[string]string{"NOTIFIER": "pigeon"}},
		{name: "smtp without server", env: map[string]string{"NOTIFIER": "smtp", "EMAIL_USER": "a@example.com"}},
		{name: "postmark without token", env: map[string]string{"NOTIFIER": "postmark", "EMAIL_FROM": "a@example.com"}},
		{name: "telegram without chat", env: map[string]string{"TELEGRAM_TOKEN": "123:abc"}},
		{name: "unknown timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "chatty"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
