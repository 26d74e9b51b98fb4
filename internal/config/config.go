package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Remote   RemoteConfig
	Employee EmployeeConfig
	Session  SessionConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	LogFile     string
	FrontendURL string
}

// RemoteConfig points at the attendance server of record.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EmployeeConfig identifies whose attendance this widget instance serves.
// A missing ID is not a startup failure: the widget boots and answers
// every attendance request with configuration guidance instead.
type EmployeeConfig struct {
	ID       string
	Timezone string
}

// SessionConfig holds the local session cache settings.
type SessionConfig struct {
	StorePath    string
	TickInterval time.Duration
}

func Load() (*Config, error) {
	// A .env file is a development convenience, not a requirement.
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	remoteTimeout, err := time.ParseDuration(getEnv("ATTENDANCE_API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_API_TIMEOUT: %w", err)
	}

	config.Remote = RemoteConfig{
		BaseURL: getEnv("ATTENDANCE_API_URL", ""),
		Timeout: remoteTimeout,
	}

	config.Employee = EmployeeConfig{
		ID:       getEnv("ATTENDANCE_EMPLOYEE_ID", ""),
		Timezone: getEnv("ATTENDANCE_TIMEZONE", "Asia/Jakarta"),
	}

	tickInterval, err := time.ParseDuration(getEnv("SESSION_TICK_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TICK_INTERVAL: %w", err)
	}

	config.Session = SessionConfig{
		StorePath:    getEnv("SESSION_STORE_PATH", "attendance-session.db"),
		TickInterval: tickInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("ATTENDANCE_API_URL is required")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("ATTENDANCE_API_TIMEOUT must be positive")
	}
	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("SESSION_TICK_INTERVAL must be positive")
	}
	return nil
}

// Location resolves the configured employee timezone, falling back to UTC
// when the name does not resolve.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Employee.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
