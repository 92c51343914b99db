// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the expense bot.
type Config struct {
	AppEnv   string
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFile  string `mapstructure:"log_file"`

	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token       string        `mapstructure:"token" validate:"required"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// ServerConfig configures the ops HTTP server (/metrics, /healthz).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DBConfig configures the PostgreSQL connection.
type DBConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig configures the optional Redis session store. When Addr is empty
// sessions live in process memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ReminderConfig configures the escalation scheduler.
type ReminderConfig struct {
	// Time is the daily reminder time of day, "HH:MM" in Timezone.
	Time     string `mapstructure:"time" validate:"required"`
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// SheetsConfig configures the Google Sheets mirror sink.
type SheetsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	SheetName       string `mapstructure:"sheet_name"`
}

// AuthConfig maps authorization codes to operator display names.
type AuthConfig struct {
	Codes map[string]string `mapstructure:"codes"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// DSN returns the PostgreSQL connection string.
func (c *DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode,
	)
}

// ReminderAt parses the configured "HH:MM" reminder time.
func (c *ReminderConfig) ReminderAt() (hour, minute int, err error) {
	parts := strings.SplitN(c.Time, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("reminder time %q: expected HH:MM", c.Time)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("reminder time %q: bad hour", c.Time)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("reminder time %q: bad minute", c.Time)
	}

	return hour, minute, nil
}

// Location resolves the configured timezone.
func (c *ReminderConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
