package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Device transport modes.
const (
	ModeStatus = "status" // GET /status -> {enter, exit, total}
	ModeDetect = "detect" // GET /detectEntry + /detectExit -> "0" | "1"
)

// Capture encodings.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// Device is one polled sensing device.
type Device struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
	Mode string `toml:"mode"`
}

type devicesFile struct {
	Devices []Device `toml:"device"`
}

type Config struct {
	Port            int
	Devices         []Device
	PollInterval    time.Duration
	RequestTimeout  time.Duration
	HistoryCapacity int
	GalleryCapacity int
	StreamURL       string        // MJPEG endpoint; empty disables capture
	StreamReconnect time.Duration // delay before reopening a broken stream
	CaptureFormat   string
	CaptureQuality  float64 // 0 < q <= 1
	JournalPath     string
	NATSURL         string
	LogDirectory    string
}

// Load reads the configuration with FromEnv and validates it.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads .env (if present), the process environment and the
// optional DEVICES_FILE without validating, so callers can apply
// overrides first.
func FromEnv() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		PollInterval:    getEnvAsDuration("POLL_INTERVAL", 2*time.Second),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 1500*time.Millisecond),
		HistoryCapacity: getEnvAsInt("HISTORY_CAPACITY", 30),
		GalleryCapacity: getEnvAsInt("GALLERY_CAPACITY", 20),
		StreamURL:       getEnv("STREAM_URL", ""),
		StreamReconnect: getEnvAsDuration("STREAM_RECONNECT", 3*time.Second),
		CaptureFormat:   strings.ToLower(getEnv("CAPTURE_FORMAT", FormatJPEG)),
		CaptureQuality:  getEnvAsFloat("CAPTURE_QUALITY", 0.8),
		JournalPath:     getEnv("JOURNAL_PATH", ":memory:"),
		NATSURL:         getEnv("NATS_URL", ""),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}

	if path := getEnv("DEVICES_FILE", ""); path != "" {
		devices, err := LoadDevices(path)
		if err != nil {
			return nil, err
		}
		cfg.Devices = devices
	} else {
		cfg.Devices = []Device{{
			Name: getEnv("DEVICE_NAME", "door"),
			URL:  getEnv("DEVICE_URL", "http://192.168.52.127"),
			Mode: strings.ToLower(getEnv("DEVICE_MODE", ModeStatus)),
		}}
	}
	return cfg, nil
}

// LoadDevices decodes a TOML device list of [[device]] tables.
func LoadDevices(path string) ([]Device, error) {
	var f devicesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("reading devices file %s: %w", path, err)
	}
	for i := range f.Devices {
		f.Devices[i].Mode = strings.ToLower(f.Devices[i].Mode)
		if f.Devices[i].Mode == "" {
			f.Devices[i].Mode = ModeStatus
		}
		if f.Devices[i].Name == "" {
			f.Devices[i].Name = fmt.Sprintf("device-%d", i+1)
		}
	}
	return f.Devices, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if len(c.Devices) == 0 {
		return fmt.Errorf("no devices configured")
	}
	for _, d := range c.Devices {
		if d.URL == "" {
			return fmt.Errorf("device %q: url is required", d.Name)
		}
		if d.Mode != ModeStatus && d.Mode != ModeDetect {
			return fmt.Errorf("device %q: unknown mode %q", d.Name, d.Mode)
		}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("HISTORY_CAPACITY must be positive, got %d", c.HistoryCapacity)
	}
	if c.GalleryCapacity <= 0 {
		return fmt.Errorf("GALLERY_CAPACITY must be positive, got %d", c.GalleryCapacity)
	}
	if c.CaptureFormat != FormatJPEG && c.CaptureFormat != FormatPNG {
		return fmt.Errorf("CAPTURE_FORMAT must be %q or %q, got %q", FormatJPEG, FormatPNG, c.CaptureFormat)
	}
	if c.CaptureQuality <= 0 || c.CaptureQuality > 1 {
		return fmt.Errorf("CAPTURE_QUALITY must be in (0,1], got %v", c.CaptureQuality)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("2s") or bare milliseconds ("2000").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
