package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/rtgscope/internal/util"
)

// Database holds libsql database configuration.
// URL may be a remote Turso URL or a local "file:" path.
type Database struct {
	URL       string `envconfig:"RTGSCOPE_DATABASE_URL"`
	AuthToken string `envconfig:"RTGSCOPE_DATABASE_AUTH_TOKEN"`
}

// Upstream describes the experiments API the dashboard reads from.
type Upstream struct {
	URL   string `envconfig:"RTGSCOPE_API_URL" default:"http://localhost:8000"`
	Token string `envconfig:"RTGSCOPE_API_TOKEN"`
}

// ELN holds electronic lab notebook client configuration.
type ELN struct {
	URL   string `envconfig:"RTGSCOPE_ELN_URL"`
	Token string `envconfig:"RTGSCOPE_ELN_TOKEN"`
}

// Auth holds the signing secret for API bearer tokens.
type Auth struct {
	SecretKey string `envconfig:"RTGSCOPE_SECRET_KEY" default:"changeme"`
}

// OTEL holds metrics exporter configuration.
type OTEL struct {
	Endpoint string `envconfig:"RTGSCOPE_OTEL_ENDPOINT"`
	Enabled  bool   `envconfig:"RTGSCOPE_OTEL_ENABLED"`
	Insecure bool   `envconfig:"RTGSCOPE_OTEL_INSECURE"`
}

// Log holds logging configuration.
type Log struct {
	Level string `envconfig:"RTGSCOPE_LOG_LEVEL" default:"info"`
}

// Dashboard holds configuration for the dashboard server.
type Dashboard struct {
	Upstream Upstream
	OTEL     OTEL
	Log      Log
}

// API holds configuration for the experiments API server.
type API struct {
	Database Database
	Auth     Auth
	OTEL     OTEL
	Log      Log
}

// Recorder holds configuration for registering experiments from the CLI.
type Recorder struct {
	Database Database
	ELN      ELN
	Log      Log
}

// LoadDashboard loads dashboard configuration from environment variables.
func LoadDashboard() (*Dashboard, error) {
	var cfg Dashboard
	if err := process(&cfg.Upstream, &cfg.OTEL, &cfg.Log); err != nil {
		return nil, fmt.Errorf("load dashboard config: %w", err)
	}
	cfg.Upstream.URL = strings.TrimRight(cfg.Upstream.URL, "/")
	return &cfg, nil
}

// LoadAPI loads experiments API configuration from environment variables.
func LoadAPI() (*API, error) {
	var cfg API
	if err := process(&cfg.Database, &cfg.Auth, &cfg.OTEL, &cfg.Log); err != nil {
		return nil, fmt.Errorf("load api config: %w", err)
	}
	if err := cfg.Database.setDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadRecorder loads recorder configuration from environment variables.
func LoadRecorder() (*Recorder, error) {
	var cfg Recorder
	if err := process(&cfg.Database, &cfg.ELN, &cfg.Log); err != nil {
		return nil, fmt.Errorf("load recorder config: %w", err)
	}
	if err := cfg.Database.setDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase loads only the database configuration.
func LoadDatabase() (*Database, error) {
	var cfg Database
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadAuth loads only the token signing configuration.
func LoadAuth() (*Auth, error) {
	var cfg Auth
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load auth config: %w", err)
	}
	return &cfg, nil
}

// process fills each section separately so field tags name the full
// variable instead of being prefixed with the section name.
func process(sections ...any) error {
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return err
		}
	}
	return nil
}

// IsRemote reports whether the database lives on a Turso server.
func (d Database) IsRemote() bool {
	return strings.HasPrefix(d.URL, "libsql://") ||
		strings.HasPrefix(d.URL, "https://") ||
		strings.HasPrefix(d.URL, "http://")
}

func (d *Database) setDefaults() error {
	if d.URL != "" {
		return nil
	}
	p, err := util.GetXDGDataPath("rtgscope.db")
	if err != nil {
		return err
	}
	d.URL = "file:" + p
	return nil
}
