package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Sunny-pro22/Dashboard/internal/app"
	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard server until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, err := logger.NewLogger(cfg.LogDirectory)
		if err != nil {
			return err
		}
		defer log.Close()

		application, err := app.NewApp(cfg, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return application.Run(ctx)
	},
}
