package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/config"
	"github.com/Sunny-pro22/Dashboard/internal/events"
	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/repository"
	"github.com/Sunny-pro22/Dashboard/internal/repository/sqlite"
	"github.com/Sunny-pro22/Dashboard/internal/route"
	"github.com/Sunny-pro22/Dashboard/internal/service"
	"github.com/Sunny-pro22/Dashboard/internal/service/artifact"
	"github.com/Sunny-pro22/Dashboard/internal/service/capture"
	"github.com/Sunny-pro22/Dashboard/internal/service/gallery"
	"github.com/Sunny-pro22/Dashboard/internal/service/history"
	"github.com/Sunny-pro22/Dashboard/internal/service/ledger"
	"github.com/Sunny-pro22/Dashboard/internal/service/sampler"
	"github.com/Sunny-pro22/Dashboard/internal/service/stream"
	"github.com/Sunny-pro22/Dashboard/internal/service/vision"
	"github.com/Sunny-pro22/Dashboard/internal/service/websocket"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	publisher  events.Publisher
	hubService *websocket.HubService
	source     *stream.MJPEGSource
	sampler    *sampler.Sampler
	manager    *service.Manager
}

// NewApp wires every component. Journal and NATS failures degrade to
// running without them.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	encoder, err := vision.NewEncoder(cfg.CaptureFormat, cfg.CaptureQuality)
	if err != nil {
		return nil, err
	}

	a := &App{config: cfg, logger: log}

	var journal repository.JournalRepository
	db, err := sqlite.New(cfg.JournalPath)
	if err != nil {
		log.Error("Session journal disabled: %v", err)
	} else {
		a.db = db
		journal = sqlite.NewJournalRepository(db)
	}

	publisher, err := events.New(cfg.NATSURL)
	if err != nil {
		log.Error("Event publishing disabled: %v", err)
		publisher = &events.NoopPublisher{}
	}
	a.publisher = publisher

	// A nil frame source makes every capture a silent no-frame skip.
	var frames capture.FrameSource
	var streamStats service.StatsSource
	if cfg.StreamURL != "" {
		a.source = stream.NewMJPEGSource(cfg.StreamURL, &http.Client{}, cfg.StreamReconnect, log)
		frames = a.source
		streamStats = a.source
	}

	store := artifact.NewStore()
	a.hubService = websocket.NewHubService(log)
	a.manager = service.NewManager(service.ManagerOptions{
		Ledger:    ledger.New(log),
		History:   history.New(cfg.HistoryCapacity),
		Gallery:   gallery.NewGalleryService(cfg.GalleryCapacity, log),
		Pipeline:  capture.NewPipeline(frames, encoder, store, log),
		Artifacts: store,
		Hub:       a.hubService,
		Journal:   journal,
		Publisher: publisher,
		Stream:    streamStats,
	}, log)
	a.sampler = sampler.NewFromConfig(cfg, log)

	return a, nil
}

// Run serves until ctx is done, then shuts everything down in reverse
// order: sampler, HTTP server, manager, then the outer resources.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.hubService.Run(runCtx)
	if a.source != nil {
		go a.source.Run(runCtx)
	}
	if err := a.manager.Start(runCtx); err != nil {
		return err
	}
	if err := a.sampler.Start(runCtx, a.config.PollInterval, a.manager.HandleSample, a.manager.HandleFault); err != nil {
		a.manager.Stop()
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           route.SetupRoutes(a.manager, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("Sentinel dashboard on http://localhost:%d", a.config.Port)
	for _, d := range a.config.Devices {
		a.logger.Info("Device %s: %s (%s)", d.Name, d.URL, d.Mode)
	}
	if a.source == nil {
		a.logger.Warning("No STREAM_URL configured, entries will not be captured")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}
	}

	a.shutdown(server)
	return serveErr
}

func (a *App) shutdown(server *http.Server) {
	a.logger.Info("Shutting down")
	a.sampler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		a.logger.Warning("HTTP shutdown: %v", err)
	}

	a.manager.Stop()

	if err := a.publisher.Close(); err != nil {
		a.logger.Warning("Closing publisher: %v", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warning("Closing journal: %v", err)
		}
	}
}

// Manager exposes the running manager.
func (a *App) Manager() *service.Manager {
	return a.manager
}
