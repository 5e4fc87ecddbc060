package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/worxli/kaffi/internal/config"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kaffi.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.MDB.Dial != "serial:///dev/ttyUSB0:9600" {
		t.Errorf("MDB.Dial = %q", cfg.MDB.Dial)
	}
	if cfg.MDB.ResponseTimeout != 5*time.Second {
		t.Errorf("MDB.ResponseTimeout = %v, want 5s", cfg.MDB.ResponseTimeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
mdb:
  dial: "serial:///dev/ttyUSB2:9600"
  response_timeout: "2s"
legi:
  dial: "serial:///dev/ttyUSB3:9600"
ampel:
  host: "ampel.example.ch"
log:
  level: "debug"
  format: "text"
`
	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.MDB.Dial != "serial:///dev/ttyUSB2:9600" {
		t.Errorf("MDB.Dial = %q", cfg.MDB.Dial)
	}
	if cfg.MDB.ResponseTimeout != 2*time.Second {
		t.Errorf("MDB.ResponseTimeout = %v, want 2s", cfg.MDB.ResponseTimeout)
	}
	if cfg.Ampel.Host != "ampel.example.ch" {
		t.Errorf("Ampel.Host = %q", cfg.Ampel.Host)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeTemp(t, `ampel:
  host: "ampel.example.ch"
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.MDB.Dial != "serial:///dev/ttyUSB0:9600" {
		t.Errorf("MDB.Dial should keep default, got %q", cfg.MDB.Dial)
	}
	if cfg.Ampel.Host != "ampel.example.ch" {
		t.Errorf("Ampel.Host = %q", cfg.Ampel.Host)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeTemp(t, `ampel:
  host: "ampel.example.ch"
`)

	t.Setenv("KAFFI_MDB_DIAL", "serial:///dev/ttyACM0:19200")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}
	if cfg.MDB.Dial != "serial:///dev/ttyACM0:19200" {
		t.Errorf("MDB.Dial = %q, want env override", cfg.MDB.Dial)
	}
}

func TestValidateRejectsEmptyDials(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ampel.Host = "ampel.example.ch"
	cfg.MDB.Dial = ""

	if err := config.Validate(cfg); err != config.ErrEmptyMDBDial {
		t.Errorf("Validate() = %v, want ErrEmptyMDBDial", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"debug": "DEBUG",
		"WARN":  "WARN",
		"bogus": "INFO",
	}
	for in, want := range cases {
		if got := config.ParseLogLevel(in).String(); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
