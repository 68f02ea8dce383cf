// Package capture turns an entry event into a gallery image: it grabs the
// newest camera frame, encodes it and hands the result to a sink.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/idgen"
	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/model"
	"github.com/Sunny-pro22/Dashboard/internal/service/artifact"
	"github.com/Sunny-pro22/Dashboard/internal/service/stream"
)

// ErrNoFrame means the frame source has nothing loaded yet.
var ErrNoFrame = errors.New("no frame available")

// CaptureError wraps a failed capture step.
type CaptureError struct {
	Op  string // "frame", "encode", "store", "id"
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// FrameSource provides the current video frame.
type FrameSource interface {
	Latest() (stream.Frame, bool)
}

// Encoder renders a frame into the artifact format.
type Encoder interface {
	Encode(frame []byte) ([]byte, error)
	ContentType() string
}

// Sink receives finished captures. It takes ownership of the artifact.
type Sink func(model.CapturedImage)

type Pipeline struct {
	source  FrameSource
	encoder Encoder
	store   *artifact.Store
	logger  *logger.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewPipeline builds a pipeline. A nil source disables capture.
func NewPipeline(source FrameSource, encoder Encoder, store *artifact.Store, logger *logger.Logger) *Pipeline {
	return &Pipeline{
		source:  source,
		encoder: encoder,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// OnEntryDetected captures in the background and delivers the image to
// sink. A missing frame is skipped silently; other failures are logged.
// Nothing is returned to the caller, so the polling loop never blocks or
// sees capture errors.
func (p *Pipeline) OnEntryDetected(ctx context.Context, device string, sink Sink) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		img, err := p.Capture(device)
		if err != nil {
			if errors.Is(err, ErrNoFrame) {
				p.logger.Debug("Entry on %s: no frame loaded, capture skipped", device)
			} else {
				p.logger.Error("Entry on %s: %v", device, err)
			}
			return
		}

		if ctx.Err() != nil {
			p.discard(img)
			return
		}
		sink(img)
	}()
}

// Capture grabs, encodes and registers one frame synchronously.
func (p *Pipeline) Capture(device string) (model.CapturedImage, error) {
	if p.source == nil {
		return model.CapturedImage{}, &CaptureError{Op: "frame", Err: ErrNoFrame}
	}
	frame, ok := p.source.Latest()
	if !ok || len(frame.Data) == 0 {
		return model.CapturedImage{}, &CaptureError{Op: "frame", Err: ErrNoFrame}
	}

	encoded, err := p.encoder.Encode(frame.Data)
	if err != nil {
		return model.CapturedImage{}, &CaptureError{Op: "encode", Err: err}
	}

	at := p.now()
	id, err := idgen.Timed("cap-", at)
	if err != nil {
		return model.CapturedImage{}, &CaptureError{Op: "id", Err: err}
	}

	handle, err := p.store.Put(encoded, p.encoder.ContentType())
	if err != nil {
		return model.CapturedImage{}, &CaptureError{Op: "store", Err: err}
	}

	return model.CapturedImage{
		ID:         id,
		Artifact:   handle,
		Timestamp:  model.DisplayTimestamp(at),
		CapturedAt: at,
		Device:     device,
	}, nil
}

// Wait blocks until every in-flight capture has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) discard(img model.CapturedImage) {
	if err := img.Artifact.Release(); err != nil {
		p.logger.Warning("Failed to release discarded capture %s: %v", img.ID, err)
	}
}
