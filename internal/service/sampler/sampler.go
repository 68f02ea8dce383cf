// Package sampler polls sensing devices on a fixed interval and normalises
// every answer into a model.Sample.
package sampler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/config"
	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// ErrAlreadyRunning is returned by Start on a running sampler.
var ErrAlreadyRunning = errors.New("sampler already running")

// run is one Start..Stop lifetime.
type run struct {
	cancel context.CancelFunc
	active atomic.Bool
}

// Sampler polls every transport on each tick. Polls are issued
// concurrently and may overlap when a round trip exceeds the interval.
type Sampler struct {
	transports []Transport
	logger     *logger.Logger

	mu      sync.Mutex
	current *run
	wg      sync.WaitGroup
}

func New(transports []Transport, logger *logger.Logger) *Sampler {
	return &Sampler{transports: transports, logger: logger}
}

// NewFromConfig builds one transport per configured device.
func NewFromConfig(cfg *config.Config, logger *logger.Logger) *Sampler {
	client := &http.Client{Timeout: cfg.RequestTimeout}
	transports := make([]Transport, 0, len(cfg.Devices))
	for _, d := range cfg.Devices {
		if d.Mode == config.ModeDetect {
			transports = append(transports, NewDetectTransport(d.Name, d.URL, client))
		} else {
			transports = append(transports, NewStatusTransport(d.Name, d.URL, client))
		}
	}
	return New(transports, logger)
}

// Start polls immediately and then every interval until Stop or ctx is
// done. Faults are reported to onFault and never end the loop.
func (s *Sampler) Start(ctx context.Context, interval time.Duration, onSample func(model.Sample), onFault func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return ErrAlreadyRunning
	}
	if interval <= 0 {
		return errors.New("sampler interval must be positive")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel}
	r.active.Store(true)
	s.current = r

	s.wg.Add(1)
	go s.loop(runCtx, r, interval, onSample, onFault)

	s.logger.Info("Sampler started: %d device(s) every %s", len(s.transports), interval)
	return nil
}

// Stop cancels the timer and in-flight polls. Results arriving after Stop
// are discarded. Stop returns once every poll goroutine has exited.
func (s *Sampler) Stop() {
	s.mu.Lock()
	r := s.current
	s.current = nil
	s.mu.Unlock()

	if r == nil {
		return
	}
	r.active.Store(false)
	r.cancel()
	s.wg.Wait()
	s.logger.Info("Sampler stopped")
}

// Running reports whether Start has been called without Stop.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// PollOnce polls every transport once and waits for the results.
func (s *Sampler) PollOnce(ctx context.Context, onSample func(model.Sample), onFault func(error)) {
	var wg sync.WaitGroup
	for _, t := range s.transports {
		wg.Add(1)
		go func(t Transport) {
			defer wg.Done()
			sample, err := t.Poll(ctx)
			deliver(sample, err, onSample, onFault)
		}(t)
	}
	wg.Wait()
}

func (s *Sampler) loop(ctx context.Context, r *run, interval time.Duration, onSample func(model.Sample), onFault func(error)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(ctx, r, onSample, onFault)
	for {
		select {
		case <-ctx.Done():
			r.active.Store(false)
			return
		case <-ticker.C:
			s.tick(ctx, r, onSample, onFault)
		}
	}
}

func (s *Sampler) tick(ctx context.Context, r *run, onSample func(model.Sample), onFault func(error)) {
	for _, t := range s.transports {
		s.wg.Add(1)
		go func(t Transport) {
			defer s.wg.Done()

			sample, err := t.Poll(ctx)
			if !r.active.Load() || ctx.Err() != nil {
				return
			}
			deliver(sample, err, onSample, onFault)
		}(t)
	}
}

// deliver reports the fault first, then any sample returned with it.
func deliver(sample model.Sample, err error, onSample func(model.Sample), onFault func(error)) {
	if err != nil {
		onFault(err)
		if sample.Device == "" {
			return
		}
	}
	onSample(sample)
}
