// Package stream reads the camera's MJPEG feed and keeps the latest
// complete JPEG frame for on-demand capture.
package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/logger"
)

var (
	jpegHeader = []byte{0xFF, 0xD8}
	jpegFooter = []byte{0xFF, 0xD9}
)

// maxPending bounds the reassembly buffer when the stream carries no
// recognisable frame boundaries.
const maxPending = 8 << 20

// Frame is one complete JPEG image. Data must not be modified.
type Frame struct {
	Data      []byte
	Seq       uint64
	Timestamp time.Time
}

// Stats is a snapshot of source counters.
type Stats struct {
	Connected bool   `json:"connected"`
	Frames    uint64 `json:"frames"`
	Discarded uint64 `json:"discardedBytes"`
	Reconnect uint64 `json:"reconnects"`
}

// MJPEGSource keeps only the newest frame: a new frame replaces the old one,
// and a broken stream discards it.
type MJPEGSource struct {
	url       string
	client    *http.Client
	reconnect time.Duration
	logger    *logger.Logger

	mu     sync.RWMutex
	latest *Frame

	seq        atomic.Uint64
	discarded  atomic.Uint64
	reconnects atomic.Uint64
	connected  atomic.Bool
}

func NewMJPEGSource(url string, client *http.Client, reconnect time.Duration, logger *logger.Logger) *MJPEGSource {
	if client == nil {
		client = &http.Client{}
	}
	if reconnect <= 0 {
		reconnect = 3 * time.Second
	}
	return &MJPEGSource{url: url, client: client, reconnect: reconnect, logger: logger}
}

// Run reads the stream until ctx is done, reopening it after failures.
func (s *MJPEGSource) Run(ctx context.Context) {
	s.logger.Info("MJPEG source started: %s", s.url)
	for {
		err := s.readOnce(ctx)
		s.connected.Store(false)
		s.clear()
		if ctx.Err() != nil {
			s.logger.Info("MJPEG source stopped")
			return
		}
		s.logger.Warning("MJPEG stream %s interrupted: %v (retry in %s)", s.url, err, s.reconnect)

		select {
		case <-ctx.Done():
			s.logger.Info("MJPEG source stopped")
			return
		case <-time.After(s.reconnect):
			s.reconnects.Add(1)
		}
	}
}

func (s *MJPEGSource) readOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	s.connected.Store(true)
	return s.Consume(resp.Body)
}

// Consume reassembles JPEG frames from r until it ends. Multipart
// boundaries and part headers between frames are skipped.
func (s *MJPEGSource) Consume(r io.Reader) error {
	chunk := make([]byte, 32*1024)
	var pending []byte

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			pending = s.extractFrames(pending)
		}
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
	}
}

// extractFrames publishes every complete frame in buf and returns the
// unconsumed remainder.
func (s *MJPEGSource) extractFrames(buf []byte) []byte {
	for {
		start := bytes.Index(buf, jpegHeader)
		if start < 0 {
			// Keep a trailing 0xFF in case the marker is split across reads.
			keep := 0
			if len(buf) > 0 && buf[len(buf)-1] == 0xFF {
				keep = 1
			}
			s.discarded.Add(uint64(len(buf) - keep))
			return append(buf[:0], buf[len(buf)-keep:]...)
		}
		if start > 0 {
			s.discarded.Add(uint64(start))
			buf = buf[start:]
		}

		end := bytes.Index(buf[len(jpegHeader):], jpegFooter)
		if end < 0 {
			if len(buf) > maxPending {
				s.discarded.Add(uint64(len(buf)))
				return buf[:0]
			}
			return buf
		}
		end += len(jpegHeader) + len(jpegFooter)

		frame := make([]byte, end)
		copy(frame, buf[:end])
		s.publish(frame)
		buf = buf[end:]
	}
}

func (s *MJPEGSource) publish(data []byte) {
	f := &Frame{Data: data, Seq: s.seq.Add(1), Timestamp: time.Now()}
	s.mu.Lock()
	s.latest = f
	s.mu.Unlock()
}

// clear drops the held frame so a dead stream reads as not loaded.
func (s *MJPEGSource) clear() {
	s.mu.Lock()
	s.latest = nil
	s.mu.Unlock()
}

// Latest returns the newest complete frame of the current connection;
// false until one has arrived and again once the stream drops.
func (s *MJPEGSource) Latest() (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Frame{}, false
	}
	return *s.latest, true
}

func (s *MJPEGSource) Stats() Stats {
	return Stats{
		Connected: s.connected.Load(),
		Frames:    s.seq.Load(),
		Discarded: s.discarded.Load(),
		Reconnect: s.reconnects.Load(),
	}
}
