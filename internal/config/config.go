package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL    string        `validate:"required"`
	HTTPAddr       string        `validate:"required"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
	LogFormat      string        `validate:"oneof=text json"`
	AllowedOrigins []string      `validate:"min=1,dive,required"`
	SessionTTL     time.Duration `validate:"gt=0"`
	AppName        string        `validate:"required"`

	ReminderTime        string        `validate:"required"`
	Timezone            string
	ReminderSendTimeout time.Duration `validate:"gt=0"`

	Notifier      string `validate:"oneof=log smtp postmark"`
	SMTPServer    string `validate:"required_if=Notifier smtp"`
	SMTPPort      int    `validate:"gte=0,lte=65535"`
	EmailUser     string `validate:"required_if=Notifier smtp"`
	EmailPassword string
	EmailFrom     string `validate:"required_if=Notifier postmark"`
	PostmarkToken string `validate:"required_if=Notifier postmark"`

	TelegramToken  string
	TelegramChatID int64 `validate:"required_with=TelegramToken"`
}

// Location resolves Timezone, falling back to the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load reads configuration from an optional .env file and environment
// variables with sane defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	cfg := Config{
		DatabaseURL:    env("DATABASE_URL", "recuring.db"),
		HTTPAddr:       env("HTTP_ADDR", ":5000"),
		LogLevel:       strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(env("LOG_FORMAT", "text")),
		AllowedOrigins: splitList(env("CORS_ALLOWED_ORIGINS", "*")),
		AppName:        env("APP_NAME", "RecuRing"),
		ReminderTime:   env("REMINDER_TIME", "07:00"),
		Timezone:       env("TIMEZONE", ""),
		Notifier:       strings.ToLower(env("NOTIFIER", "log")),
		SMTPServer:     env("SMTP_SERVER", ""),
		EmailUser:      env("EMAIL_USER", ""),
		EmailPassword:  os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:      env("EMAIL_FROM", ""),
		PostmarkToken:  env("POSTMARK_TOKEN", ""),
		TelegramToken:  env("TELEGRAM_TOKEN", ""),
	}
	cfg.SessionTTL = parseDuration("SESSION_TTL", "24h", &errs)
	cfg.ReminderSendTimeout = parseDuration("REMINDER_SEND_TIMEOUT", "30s", &errs)
	cfg.SMTPPort = int(parseInt("SMTP_PORT", "587", &errs))
	cfg.TelegramChatID = parseInt("TELEGRAM_CHAT_ID", "0", &errs)

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints and that the timezone exists.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: TIMEZONE: %w", err)
	}
	return nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string, errs *[]error) time.Duration {
	raw := env(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func parseInt(key, def string, errs *[]error) int64 {
	raw := env(key, def)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
