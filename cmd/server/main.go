package main

import (
	"os"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/config"
	"github.com/spf13/cobra"
)

var (
	port        int
	interval    time.Duration
	devicesFile string
)

var rootCmd = &cobra.Command{
	Use:          "sentinel",
	Short:        "Occupancy dashboard: polls door sensors and captures entries",
	SilenceUsage: true,
	RunE:         serveCmd.RunE,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", 0, "poll interval (overrides POLL_INTERVAL)")
	rootCmd.PersistentFlags().StringVar(&devicesFile, "devices", "", "TOML device list (overrides DEVICES_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
}

// loadConfig reads the environment, applies command-line overrides and
// validates the result once.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if devicesFile != "" {
		devices, err := config.LoadDevices(devicesFile)
		if err != nil {
			return nil, err
		}
		cfg.Devices = devices
	}
	if port > 0 {
		cfg.Port = port
	}
	if interval > 0 {
		cfg.PollInterval = interval
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
