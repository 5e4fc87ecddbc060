// Package config manages kaffid daemon configuration using koanf/v2.
//
// Supports YAML files and environment variable overrides, replacing the
// original system's configparser search path over /etc/kaffi,
// /etc/vis/kaffi, ~/.config/kaffi and ~/.config/vis/kaffi with a single
// -config flag plus KAFFI_-prefixed env overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the complete kaffid configuration.
type Config struct {
	MDB     MDBConfig     `koanf:"mdb"`
	Legi    LegiConfig    `koanf:"legi"`
	Ampel   AmpelConfig   `koanf:"ampel"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Alert   AlertConfig   `koanf:"alert"`
	VIS     VISConfig     `koanf:"vis"`
	AMIV    AMIVConfig    `koanf:"amiv"`
	VMP     VMPConfig     `koanf:"vmp"`
}

// MDBConfig configures the MDB serial link.
type MDBConfig struct {
	// Dial is a byteio dial string, e.g. "serial:///dev/ttyUSB0:9600".
	Dial string `koanf:"dial"`
	// ResponseTimeout bounds how long the peripheral may go without a
	// reply before the watchdog fires.
	ResponseTimeout time.Duration `koanf:"response_timeout"`
}

// LegiConfig configures the RFID reader link.
type LegiConfig struct {
	Dial string `koanf:"dial"`
	// EnableByte is written to re-arm the reader after each read.
	EnableByte byte `koanf:"enable_byte"`
}

// AmpelConfig configures the building traffic light probe.
type AmpelConfig struct {
	Host    string        `koanf:"host"`
	Suffix  string        `koanf:"suffix"`
	Timeout time.Duration `koanf:"timeout"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
	Path string `koanf:"path"`
}

// AlertConfig configures the SMTP watchdog alert.
type AlertConfig struct {
	SMTPAddr string   `koanf:"smtp_addr"`
	From     string   `koanf:"from"`
	To       []string `koanf:"to"`
	TailSize int      `koanf:"tail_size"`
}

// VISConfig configures the VIS org adapter.
type VISConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	Key     string        `koanf:"key"`
	Timeout time.Duration `koanf:"timeout"`
}

// AMIVConfig configures the AMIV org adapter.
type AMIVConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Secret  string        `koanf:"secret"`
	Timeout time.Duration `koanf:"timeout"`
}

// VMPConfig configures the VMP org adapter.
type VMPConfig struct {
	Enabled     bool          `koanf:"enabled"`
	StatusURL   string        `koanf:"status_url"`
	DispenseURL string        `koanf:"dispense_url"`
	Timeout     time.Duration `koanf:"timeout"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MDB: MDBConfig{
			Dial:            "serial:///dev/ttyUSB0:9600",
			ResponseTimeout: 5 * time.Second,
		},
		Legi: LegiConfig{
			Dial:       "serial:///dev/ttyUSB1:9600",
			EnableByte: 0x01,
		},
		Ampel: AmpelConfig{
			Suffix:  "/status",
			Timeout: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
			Path: "/metrics",
		},
		Alert: AlertConfig{
			TailSize: 10,
		},
	}
}

// envPrefix is the environment variable prefix for kaffid configuration.
// Variables are named KAFFI_<section>_<key>, e.g. KAFFI_MDB_DIAL.
const envPrefix = "KAFFI_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (KAFFI_ prefix), and merges on top of DefaultConfig().
// Missing fields inherit defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms KAFFI_MDB_DIAL -> mdb.dial and
// KAFFI_MDB_RESPONSE_TIMEOUT -> mdb.response_timeout.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

func loadDefaults(k *koanf.Koanf, d *Config) error {
	defaultMap := map[string]any{
		"mdb.dial":             d.MDB.Dial,
		"mdb.response_timeout": d.MDB.ResponseTimeout.String(),
		"legi.dial":            d.Legi.Dial,
		"legi.enable_byte":     d.Legi.EnableByte,
		"ampel.suffix":         d.Ampel.Suffix,
		"ampel.timeout":        d.Ampel.Timeout.String(),
		"log.level":            d.Log.Level,
		"log.format":           d.Log.Format,
		"metrics.addr":         d.Metrics.Addr,
		"metrics.path":         d.Metrics.Path,
		"alert.tail_size":      d.Alert.TailSize,
	}
	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}
	return nil
}

// Validation errors.
var (
	ErrEmptyMDBDial   = errors.New("mdb.dial must not be empty")
	ErrEmptyLegiDial  = errors.New("legi.dial must not be empty")
	ErrEmptyAmpelHost = errors.New("ampel.host must not be empty")
)

// Validate checks the configuration for logical errors.
func Validate(cfg *Config) error {
	if cfg.MDB.Dial == "" {
		return ErrEmptyMDBDial
	}
	if cfg.Legi.Dial == "" {
		return ErrEmptyLegiDial
	}
	if cfg.Ampel.Host == "" {
		return ErrEmptyAmpelHost
	}
	return nil
}

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
