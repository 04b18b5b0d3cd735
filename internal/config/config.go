// Package config loads application configuration from an optional TOML file
// and environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Zone database for scratch images.

	"github.com/BurntSushi/toml"
)

// DefaultParameterPath is the parameter-service prefix used when none is configured.
const DefaultParameterPath = "/GithubPrNotification/"

// Config holds the application configuration. It is populated once at startup.
type Config struct {
	DBPath        string
	ParameterPath string
	SecretKey     []byte // 32-byte AES-256 key; nil disables secure parameters.

	// Fallbacks used when the parameter service has no value.
	GitHubToken string
	WebhookURL  string
	TargetUser  string

	GitHubBaseURL    string // Empty for github.com.
	Location         *time.Location
	ScanPageSize     int
	ListenAddr       string
	ScheduleInterval time.Duration // Zero disables the serve-mode scheduler.
	LogLevel         slog.Level
}

// fileConfig mirrors the TOML file layout. Every field is optional.
type fileConfig struct {
	DBPath           string `toml:"db_path"`
	ParameterPath    string `toml:"parameter_path"`
	SecretKey        string `toml:"secret_key"`
	GitHubToken      string `toml:"github_token"`
	WebhookURL       string `toml:"webhook_url"`
	TargetUser       string `toml:"target_user"`
	GitHubBaseURL    string `toml:"github_base_url"`
	Timezone         string `toml:"timezone"`
	ScanPageSize     int    `toml:"scan_page_size"`
	ListenAddr       string `toml:"listen_addr"`
	ScheduleInterval string `toml:"schedule_interval"`
	LogLevel         string `toml:"log_level"`
}

// Load reads configuration and returns a validated Config.
// If PRNOTIFIER_CONFIG names a TOML file it is read first; PRNOTIFIER_*
// environment variables then override individual keys.
// Defaults: db_path "prnotifier.db", parameter_path "/GithubPrNotification/",
// timezone "Asia/Tokyo", scan_page_size 100, listen_addr "127.0.0.1:8080",
// log_level "info", schedule_interval disabled.
func Load() (*Config, error) {
	fc := fileConfig{
		DBPath:        "prnotifier.db",
		ParameterPath: DefaultParameterPath,
		Timezone:      "Asia/Tokyo",
		ScanPageSize:  100,
		ListenAddr:    "127.0.0.1:8080",
		LogLevel:      "info",
	}

	if path, ok := os.LookupEnv("PRNOTIFIER_CONFIG"); ok && path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("PRNOTIFIER_CONFIG: reading %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&fc); err != nil {
		return nil, err
	}

	return fc.validate()
}

// applyEnvOverrides replaces file values with any PRNOTIFIER_* variable that
// is set. It is the only place the environment is read after the config path.
func applyEnvOverrides(fc *fileConfig) error {
	overrides := map[string]*string{
		"PRNOTIFIER_DB_PATH":           &fc.DBPath,
		"PRNOTIFIER_PARAMETER_PATH":    &fc.ParameterPath,
		"PRNOTIFIER_SECRET_KEY":        &fc.SecretKey,
		"PRNOTIFIER_GITHUB_TOKEN":      &fc.GitHubToken,
		"PRNOTIFIER_WEBHOOK_URL":       &fc.WebhookURL,
		"PRNOTIFIER_TARGET_USER":       &fc.TargetUser,
		"PRNOTIFIER_GITHUB_BASE_URL":   &fc.GitHubBaseURL,
		"PRNOTIFIER_TIMEZONE":          &fc.Timezone,
		"PRNOTIFIER_LISTEN_ADDR":       &fc.ListenAddr,
		"PRNOTIFIER_SCHEDULE_INTERVAL": &fc.ScheduleInterval,
		"PRNOTIFIER_LOG_LEVEL":         &fc.LogLevel,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("PRNOTIFIER_SCAN_PAGE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PRNOTIFIER_SCAN_PAGE_SIZE has invalid integer %q: %w", v, err)
		}
		fc.ScanPageSize = n
	}

	return nil
}

func (fc fileConfig) validate() (*Config, error) {
	cfg := &Config{
		DBPath:        fc.DBPath,
		ParameterPath: NormalizeParameterPath(fc.ParameterPath),
		GitHubToken:   fc.GitHubToken,
		WebhookURL:    fc.WebhookURL,
		TargetUser:    strings.TrimSpace(fc.TargetUser),
		GitHubBaseURL: fc.GitHubBaseURL,
		ScanPageSize:  fc.ScanPageSize,
		ListenAddr:    fc.ListenAddr,
	}

	if fc.SecretKey != "" {
		key, err := hex.DecodeString(fc.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("PRNOTIFIER_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("PRNOTIFIER_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		cfg.SecretKey = key
	}

	loc, err := time.LoadLocation(fc.Timezone)
	if err != nil {
		return nil, fmt.Errorf("PRNOTIFIER_TIMEZONE has invalid zone %q: %w", fc.Timezone, err)
	}
	cfg.Location = loc

	if cfg.ScanPageSize <= 0 {
		return nil, fmt.Errorf("PRNOTIFIER_SCAN_PAGE_SIZE must be positive, got %d", cfg.ScanPageSize)
	}

	if fc.ScheduleInterval != "" {
		d, err := time.ParseDuration(fc.ScheduleInterval)
		if err != nil {
			return nil, fmt.Errorf("PRNOTIFIER_SCHEDULE_INTERVAL has invalid duration %q: %w", fc.ScheduleInterval, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("PRNOTIFIER_SCHEDULE_INTERVAL must not be negative, got %s", d)
		}
		cfg.ScheduleInterval = d
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
		return nil, fmt.Errorf("PRNOTIFIER_LOG_LEVEL has invalid level %q: %w", fc.LogLevel, err)
	}

	return cfg, nil
}

// NormalizeParameterPath returns path with exactly one leading and one
// trailing slash. An empty path yields DefaultParameterPath.
func NormalizeParameterPath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return DefaultParameterPath
	}
	return "/" + trimmed + "/"
}
