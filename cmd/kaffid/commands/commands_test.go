package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected version output")
	}
}

func TestConfigCheckCommandRejectsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaffi.yaml")
	if err := os.WriteFile(path, []byte("mdb:\n  dial: \"serial:///dev/ttyUSB0:9600\"\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	configPath = path
	defer func() { configPath = "" }()

	cmd := configCheckCmd()
	cmd.SetArgs([]string{"check"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected validation error for missing ampel.host")
	}
}

func TestConfigCheckCommandSucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaffi.yaml")
	content := "mdb:\n  dial: \"serial:///dev/ttyUSB0:9600\"\n" +
		"legi:\n  dial: \"serial:///dev/ttyUSB1:9600\"\n" +
		"ampel:\n  host: \"ampel.example.ch\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	configPath = path
	defer func() { configPath = "" }()

	cmd := configCheckCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected config summary output")
	}
}

func TestProbeCommandListsCommands(t *testing.T) {
	cmd := probeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--list"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected a command table")
	}
}
