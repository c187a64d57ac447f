// Package config provides configuration loading and validation for the bot.
// Values come from defaults, an optional config.yaml, and BOT_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines all application configuration parameters.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Messenger MessengerConfig `mapstructure:"messenger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the webhook HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
}

// MessengerConfig holds the platform credentials and Send API settings.
type MessengerConfig struct {
	VerifyToken string `mapstructure:"verify_token" validate:"required"`
	AppSecret   string `mapstructure:"app_secret"   validate:"required"`
	PageToken   string `mapstructure:"page_token"   validate:"required"`
	GraphURL    string `mapstructure:"graph_url"    validate:"required,url"`

	// ServerURL is the public base URL of this deployment, used to build
	// absolute links for image assets referenced in outbound messages.
	ServerURL string `mapstructure:"server_url" validate:"required,url"`

	SendTimeout    time.Duration `mapstructure:"send_timeout"     validate:"min=1s,max=2m"`
	SendMaxRetries int           `mapstructure:"send_max_retries" validate:"min=0,max=10"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ReminderConfig controls the stale-user reminder scan.
type ReminderConfig struct {
	// Threshold is the minimum account age before a user qualifies for
	// the one-time reminder message.
	Threshold time.Duration `mapstructure:"threshold" validate:"min=1m"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their cron schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// Load reads configuration from the given path (or ./config.yaml when empty),
// applies defaults and BOT_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, env vars and defaults still apply.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Credentials default to empty so the keys are known to viper and can
	// be supplied purely through BOT_* environment variables.
	v.SetDefault("messenger.verify_token", "")
	v.SetDefault("messenger.app_secret", "")
	v.SetDefault("messenger.page_token", "")
	v.SetDefault("messenger.server_url", "")
	v.SetDefault("messenger.graph_url", "https://graph.facebook.com/v2.6")
	v.SetDefault("messenger.send_timeout", 10*time.Second)
	v.SetDefault("messenger.send_max_retries", 2)

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("reminder.threshold", 24*time.Hour)

	v.SetDefault("scheduler.tasks.user_reminder.enabled", true)
	v.SetDefault("scheduler.tasks.user_reminder.schedule", "*/5 * * * *")
}
