package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/config"
)

func setFlags(t *testing.T, p int, every time.Duration, devices string) {
	t.Helper()
	oldPort, oldInterval, oldDevices := port, interval, devicesFile
	port, interval, devicesFile = p, every, devices
	t.Cleanup(func() { port, interval, devicesFile = oldPort, oldInterval, oldDevices })
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DEVICES_FILE", "")
	t.Setenv("DEVICE_URL", "http://env-device")

	path := filepath.Join(t.TempDir(), "devices.toml")
	toml := "[[device]]\nname = \"front\"\nurl = \"http://front\"\n\n[[device]]\nname = \"side\"\nurl = \"http://side\"\nmode = \"detect\"\n"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	setFlags(t, 9090, 500*time.Millisecond, path)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("Expected flag overrides, got port %d interval %s", cfg.Port, cfg.PollInterval)
	}
	if len(cfg.Devices) != 2 || cfg.Devices[1].Mode != config.ModeDetect {
		t.Errorf("Expected devices from the flag file, got %+v", cfg.Devices)
	}
	if v := os.Getenv("DEVICES_FILE"); v != "" {
		t.Errorf("Expected environment untouched, DEVICES_FILE=%q", v)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DEVICES_FILE", "")

	t.Run("missing devices file", func(t *testing.T) {
		setFlags(t, 0, 0, filepath.Join(t.TempDir(), "absent.toml"))
		if _, err := loadConfig(); err == nil {
			t.Error("Expected error for a missing devices file")
		}
	})

	t.Run("empty device list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.toml")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		setFlags(t, 0, 0, path)
		if _, err := loadConfig(); err == nil {
			t.Error("Expected validation error for an empty device list")
		}
	})
}
