package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/model"
	"github.com/Sunny-pro22/Dashboard/internal/service/sampler"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Poll every configured device once and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		s := sampler.NewFromConfig(cfg, logger.New(os.Stderr))
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout+time.Second)
		defer cancel()

		out := cmd.OutOrStdout()
		var mu sync.Mutex
		failed := 0
		s.PollOnce(ctx,
			func(sample model.Sample) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintln(out, formatSample(sample))
			},
			func(err error) {
				mu.Lock()
				defer mu.Unlock()
				failed++
				fmt.Fprintf(out, "FAIL %v\n", err)
			})

		if failed > 0 {
			return fmt.Errorf("%d of %d device(s) failed", failed, len(cfg.Devices))
		}
		return nil
	},
}

func formatSample(s model.Sample) string {
	if s.Kind == model.SampleSnapshot {
		return fmt.Sprintf("OK   %s snapshot enter=%d exit=%d total=%d", s.Device, s.Enter, s.Exit, s.Total)
	}
	return fmt.Sprintf("OK   %s delta entry=%t exit=%t", s.Device, s.EntryDetected, s.ExitDetected)
}
