package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/dto"
	"github.com/Sunny-pro22/Dashboard/internal/events"
	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/model"
	"github.com/Sunny-pro22/Dashboard/internal/repository"
	"github.com/Sunny-pro22/Dashboard/internal/service/artifact"
	"github.com/Sunny-pro22/Dashboard/internal/service/capture"
	"github.com/Sunny-pro22/Dashboard/internal/service/gallery"
	"github.com/Sunny-pro22/Dashboard/internal/service/history"
	"github.com/Sunny-pro22/Dashboard/internal/service/ledger"
	"github.com/Sunny-pro22/Dashboard/internal/service/sampler"
	"github.com/Sunny-pro22/Dashboard/internal/service/stream"
	"github.com/Sunny-pro22/Dashboard/internal/service/websocket"
)

const queueSize = 256

// Capture release reasons recorded in the journal and on the bus.
const (
	ReasonEvicted  = "evicted"
	ReasonReleased = "released"
	ReasonShutdown = "shutdown"
)

var (
	// ErrNotRunning is returned for requests posted outside Start..Stop.
	ErrNotRunning = errors.New("manager not running")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("manager already started")
)

// StatsSource reports frame source counters.
type StatsSource interface {
	Stats() stream.Stats
}

// ManagerOptions carries the components a Manager drives. Journal,
// Publisher, Hub and Stream may be nil.
type ManagerOptions struct {
	Ledger    *ledger.Ledger
	History   *history.Buffer
	Gallery   *gallery.GalleryService
	Pipeline  *capture.Pipeline
	Artifacts *artifact.Store
	Hub       *websocket.HubService
	Journal   repository.JournalRepository
	Publisher events.Publisher
	Stream    StatsSource
}

// task is one queued transaction. Exactly one field is set.
type task struct {
	sample  *model.Sample
	fault   error
	capture *model.CapturedImage
	release *releaseRequest
	barrier chan struct{}
}

type releaseRequest struct {
	id    string
	reply chan error
}

// Manager is the single consumer of every state change. Poll results,
// poll faults and finished captures are queued and applied one at a time
// in completion order.
type Manager struct {
	ledger    *ledger.Ledger
	history   *history.Buffer
	gallery   *gallery.GalleryService
	pipeline  *capture.Pipeline
	artifacts *artifact.Store
	hub       *websocket.HubService
	journal   repository.JournalRepository
	publisher events.Publisher
	stream    StatsSource
	logger    *logger.Logger

	queue   chan task
	mu      sync.RWMutex // held for reading while posting, for writing while stopping
	active  bool
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	samples  atomic.Int64
	faults   atomic.Int64
	captures atomic.Int64
}

func NewManager(opts ManagerOptions, logger *logger.Logger) *Manager {
	m := &Manager{
		ledger:    opts.Ledger,
		history:   opts.History,
		gallery:   opts.Gallery,
		pipeline:  opts.Pipeline,
		artifacts: opts.Artifacts,
		hub:       opts.Hub,
		journal:   opts.Journal,
		publisher: opts.Publisher,
		stream:    opts.Stream,
		logger:    logger,
		queue:     make(chan task, queueSize),
	}
	if m.ledger == nil {
		m.ledger = ledger.New(logger)
	}
	if m.history == nil {
		m.history = history.New(history.DefaultCapacity)
	}
	if m.gallery == nil {
		m.gallery = gallery.NewGalleryService(gallery.DefaultCapacity, logger)
	}
	if m.artifacts == nil {
		m.artifacts = artifact.NewStore()
	}
	if m.publisher == nil {
		m.publisher = &events.NoopPublisher{}
	}
	return m
}

// Start launches the consumer goroutine. A Manager runs once.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true
	m.active = true
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go m.consume()

	m.logger.Info("Manager started - history %d, gallery %d", m.history.Capacity(), m.gallery.Capacity())
	return nil
}

// Stop discards queued samples, waits for in-flight captures, and releases
// every artifact still owned by the gallery.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	if m.pipeline != nil {
		m.pipeline.Wait()
	}
	m.drain()

	for _, img := range m.gallery.Close() {
		m.recordRelease(img, ReasonShutdown)
	}
	m.logger.Info("Manager stopped")
}

// HandleSample queues a successful poll. It is a no-op once stopped.
func (m *Manager) HandleSample(sample model.Sample) {
	m.post(task{sample: &sample})
}

// HandleFault queues a failed poll. It is a no-op once stopped.
func (m *Manager) HandleFault(err error) {
	m.post(task{fault: err})
}

// HandleCapture queues a finished capture. Once stopped, the capture's
// artifact is released instead.
func (m *Manager) HandleCapture(img model.CapturedImage) {
	if !m.post(task{capture: &img}) {
		m.discardCapture(img)
	}
}

// ReleaseImage removes an image from the gallery through the queue.
func (m *Manager) ReleaseImage(ctx context.Context, id string) error {
	req := &releaseRequest{id: id, reply: make(chan error, 1)}
	if !m.post(task{release: req}) {
		return ErrNotRunning
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until everything queued before the call has been applied.
func (m *Manager) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !m.post(task{barrier: done}) {
		return ErrNotRunning
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) post(t task) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.active {
		return false
	}
	select {
	case m.queue <- t:
		return true
	case <-m.ctx.Done():
		return false
	}
}

func (m *Manager) consume() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case t := <-m.queue:
			m.apply(t)
		}
	}
}

// drain empties the queue after the consumer has exited. Samples and
// faults are dropped; captures are released.
func (m *Manager) drain() {
	for {
		select {
		case t := <-m.queue:
			switch {
			case t.capture != nil:
				m.discardCapture(*t.capture)
			case t.release != nil:
				t.release.reply <- ErrNotRunning
			case t.barrier != nil:
				close(t.barrier)
			}
		default:
			return
		}
	}
}

func (m *Manager) apply(t task) {
	switch {
	case t.sample != nil:
		m.applySample(*t.sample)
	case t.fault != nil:
		m.applyFault(t.fault)
	case t.capture != nil:
		m.applyCapture(*t.capture)
	case t.release != nil:
		t.release.reply <- m.applyRelease(t.release.id)
	case t.barrier != nil:
		close(t.barrier)
	}
}

func (m *Manager) applySample(sample model.Sample) {
	m.samples.Add(1)
	if sample.ReceivedAt.IsZero() {
		sample.ReceivedAt = time.Now()
	}

	change := m.ledger.Apply(sample)
	point := model.NewHistoryPoint(sample.ReceivedAt, change.After)
	m.history.Append(point)

	if m.journal != nil {
		_, err := m.journal.InsertPoint(&model.JournalPoint{
			Device:    sample.Device,
			Kind:      sample.Kind.String(),
			Timestamp: point.Timestamp,
			Entries:   point.Entries,
			Exits:     point.Exits,
			Occupancy: point.Occupancy,
		})
		if err != nil {
			m.logger.Error("Journal point: %v", err)
		}
	}

	if m.hub != nil {
		view := dto.NewPointView(point)
		m.hub.BroadcastJSON(dto.DashboardUpdate{
			Type:     dto.UpdatePoint,
			Counters: dto.NewCounterView(change.After),
			Point:    &view,
		})
	}

	m.publish(events.TopicCounterUpdated, events.CounterUpdated{
		Device:    sample.Device,
		Kind:      sample.Kind.String(),
		Entries:   change.After.Entries,
		Exits:     change.After.Exits,
		Occupancy: change.After.Occupancy(),
		At:        sample.ReceivedAt,
	})

	if change.EntriesAdded() > 0 && m.pipeline != nil {
		m.pipeline.OnEntryDetected(m.ctx, sample.Device, m.HandleCapture)
	}
}

func (m *Manager) applyFault(err error) {
	m.faults.Add(1)
	m.logger.Warning("Poll failed: %v", err)

	record := model.JournalFault{Kind: "transport", Message: err.Error(), Timestamp: time.Now()}
	var fault *sampler.Fault
	if errors.As(err, &fault) {
		record.Device = fault.Device
		record.Kind = fault.Kind.String()
		record.Endpoint = fault.Endpoint
	}

	if m.journal != nil {
		if _, jerr := m.journal.InsertFault(&record); jerr != nil {
			m.logger.Error("Journal fault: %v", jerr)
		}
	}

	m.publish(events.TopicPollFault, events.PollFault{
		Device:   record.Device,
		Kind:     record.Kind,
		Endpoint: record.Endpoint,
		Error:    record.Message,
		At:       record.Timestamp,
	})
}

func (m *Manager) applyCapture(img model.CapturedImage) {
	evicted, err := m.gallery.Insert(img)
	if err != nil {
		m.logger.Warning("Capture %s dropped: %v", img.ID, err)
		return
	}
	m.captures.Add(1)
	m.logger.Info("Captured %s from %s", img.ID, img.Device)

	if m.journal != nil {
		err := m.journal.InsertCapture(&model.JournalCapture{
			ID:          img.ID,
			Device:      img.Device,
			ContentType: img.Artifact.ContentType(),
			Size:        img.Artifact.Size(),
			CapturedAt:  img.CapturedAt,
		})
		if err != nil {
			m.logger.Error("Journal capture: %v", err)
		}
	}

	m.publish(events.TopicCaptureCreated, events.CaptureCreated{
		ID:          img.ID,
		Device:      img.Device,
		ContentType: img.Artifact.ContentType(),
		Size:        img.Artifact.Size(),
		At:          img.CapturedAt,
	})

	for _, old := range evicted {
		m.recordRelease(old, ReasonEvicted)
	}
	m.broadcastGallery()
}

func (m *Manager) applyRelease(id string) error {
	img, err := m.gallery.Release(id)
	if err != nil {
		return err
	}
	m.recordRelease(img, ReasonReleased)
	m.broadcastGallery()
	return nil
}

func (m *Manager) recordRelease(img model.CapturedImage, reason string) {
	if m.journal != nil {
		if err := m.journal.MarkReleased(img.ID, reason); err != nil {
			m.logger.Warning("Journal release: %v", err)
		}
	}
	m.publish(events.TopicCaptureReleased, events.CaptureReleased{ID: img.ID, Reason: reason})
}

func (m *Manager) discardCapture(img model.CapturedImage) {
	if img.Artifact == nil {
		return
	}
	if err := img.Artifact.Release(); err != nil {
		m.logger.Warning("Failed to release late capture %s: %v", img.ID, err)
		return
	}
	m.logger.Debug("Late capture %s released", img.ID)
}

func (m *Manager) broadcastGallery() {
	if m.hub == nil {
		return
	}
	data := m.GalleryData()
	m.hub.BroadcastJSON(dto.DashboardUpdate{
		Type:     dto.UpdateGallery,
		Counters: m.Counters(),
		Gallery:  &data,
	})
}

func (m *Manager) publish(topic string, event any) {
	if err := m.publisher.Publish(context.Background(), topic, event); err != nil {
		m.logger.Warning("Publish %s: %v", topic, err)
	}
}

// Counters returns the current ledger state.
func (m *Manager) Counters() dto.CounterView {
	return dto.NewCounterView(m.ledger.Current())
}

// History returns the rolling history, oldest first.
func (m *Manager) History() dto.HistoryData {
	points := m.history.Points()
	views := make([]dto.PointView, len(points))
	for i, p := range points {
		views[i] = dto.NewPointView(p)
	}
	return dto.HistoryData{Points: views, Capacity: m.history.Capacity(), Length: len(views)}
}

// GalleryData returns the gallery newest first with the current selection.
func (m *Manager) GalleryData() dto.GalleryData {
	images := m.gallery.Images()
	items := make([]dto.GalleryItem, len(images))
	for i, img := range images {
		items[i] = dto.NewGalleryItem(img)
	}
	data := dto.GalleryData{Images: items, Length: len(items), Capacity: m.gallery.Capacity()}
	if sel, ok := m.gallery.Selected(); ok {
		item := dto.NewGalleryItem(sel)
		data.Selected = &item
	}
	return data
}

// Stats collects session statistics.
func (m *Manager) Stats() dto.Stats {
	stats := dto.Stats{
		Counters:  m.Counters(),
		Samples:   m.samples.Load(),
		Faults:    m.faults.Load(),
		Captures:  m.captures.Load(),
		Artifacts: m.artifacts.Stats(),
	}
	if m.hub != nil {
		stats.Viewers = m.hub.GetClientCount()
		stats.DroppedUpdates = m.hub.Dropped()
	}
	if m.journal != nil {
		js, err := m.journal.GetStats()
		if err != nil {
			m.logger.Error("Journal stats: %v", err)
		} else {
			stats.Journal = js
		}
	}
	if m.stream != nil {
		ss := m.stream.Stats()
		stats.Stream = &ss
	}
	return stats
}

func (m *Manager) GetGalleryService() *gallery.GalleryService {
	return m.gallery
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.hub
}

func (m *Manager) GetArtifactStore() *artifact.Store {
	return m.artifacts
}
