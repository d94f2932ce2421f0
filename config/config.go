package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env              string
	ServerPort       string
	DatabaseURL      string
	JWTSecret        string
	JWTExpiration    time.Duration
	InviteExpiration time.Duration
	// WebhookURL is the automation endpoint tasks are relayed to.
	// Empty means the relay is unconfigured and returns an error.
	WebhookURL string
	// CalendarBaseURL is the calendar API root. Overridable for tests.
	CalendarBaseURL string
	LogLevel        string
	LogFormat       string
}

// Load reads configuration from TASTY_* environment variables over
// built-in defaults (e.g. TASTY_DATABASE_URL, TASTY_WEBHOOK_URL).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("env", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.url", "postgresql://postgres@localhost:5432/tastytracker")
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiration", 24*time.Hour)
	v.SetDefault("invite.expiration", 7*24*time.Hour)
	v.SetDefault("webhook.url", "")
	v.SetDefault("calendar.base_url", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix("TASTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Env:              v.GetString("env"),
		ServerPort:       v.GetString("server.port"),
		DatabaseURL:      v.GetString("database.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTExpiration:    v.GetDuration("jwt.expiration"),
		InviteExpiration: v.GetDuration("invite.expiration"),
		WebhookURL:       v.GetString("webhook.url"),
		CalendarBaseURL:  v.GetString("calendar.base_url"),
		LogLevel:         v.GetString("log.level"),
		LogFormat:        v.GetString("log.format"),
	}, nil
}
