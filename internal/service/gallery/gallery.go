package gallery

import (
	"errors"
	"sync"

	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// DefaultCapacity is the number of captures the gallery keeps.
const DefaultCapacity = 20

var (
	// ErrNotFound is returned when no image has the requested ID.
	ErrNotFound = errors.New("image not found")
	// ErrClosed is returned by Insert after Close.
	ErrClosed = errors.New("gallery closed")
)

// GalleryService keeps the most recent captures, newest first. Every handle
// that enters the gallery is released exactly once: on eviction, on
// explicit Release, or on Close.
type GalleryService struct {
	images   []model.CapturedImage // index 0 is the newest
	capacity int
	selected string // weak reference by ID
	closed   bool
	mu       sync.RWMutex
	logger   *logger.Logger
}

func NewGalleryService(capacity int, logger *logger.Logger) *GalleryService {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &GalleryService{
		images:   make([]model.CapturedImage, 0, capacity+1),
		capacity: capacity,
		logger:   logger,
	}
}

// Insert prepends image and returns the entries it evicted, whose handles
// have already been released. After Close the image itself is released and
// ErrClosed returned.
func (s *GalleryService) Insert(image model.CapturedImage) ([]model.CapturedImage, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.release(image)
		return nil, ErrClosed
	}

	s.images = append(s.images, model.CapturedImage{})
	copy(s.images[1:], s.images)
	s.images[0] = image

	var evicted []model.CapturedImage
	for len(s.images) > s.capacity {
		tail := s.images[len(s.images)-1]
		s.images[len(s.images)-1] = model.CapturedImage{}
		s.images = s.images[:len(s.images)-1]
		if tail.ID == s.selected {
			s.selected = ""
		}
		evicted = append(evicted, tail)
	}
	s.mu.Unlock()

	for _, img := range evicted {
		s.release(img)
	}
	if len(evicted) > 0 {
		s.logger.Info("Gallery evicted %d image(s), size %d/%d", len(evicted), s.Len(), s.capacity)
	}
	return evicted, nil
}

// Select marks id as the current selection.
func (s *GalleryService) Select(id string) (model.CapturedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, img := range s.images {
		if img.ID == id {
			s.selected = id
			return img, true
		}
	}
	return model.CapturedImage{}, false
}

// Selected resolves the selection; a stale selection resolves to nothing.
func (s *GalleryService) Selected() (model.CapturedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == "" {
		return model.CapturedImage{}, false
	}
	for _, img := range s.images {
		if img.ID == s.selected {
			return img, true
		}
	}
	return model.CapturedImage{}, false
}

func (s *GalleryService) ClearSelection() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
}

// Release removes the image with id and releases its handle.
func (s *GalleryService) Release(id string) (model.CapturedImage, error) {
	s.mu.Lock()
	idx := -1
	for i, img := range s.images {
		if img.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return model.CapturedImage{}, ErrNotFound
	}

	img := s.images[idx]
	copy(s.images[idx:], s.images[idx+1:])
	s.images[len(s.images)-1] = model.CapturedImage{}
	s.images = s.images[:len(s.images)-1]
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()

	s.release(img)
	return img, nil
}

// Close releases every remaining image and rejects further inserts.
func (s *GalleryService) Close() []model.CapturedImage {
	s.mu.Lock()
	remaining := s.images
	s.images = nil
	s.selected = ""
	s.closed = true
	s.mu.Unlock()

	for _, img := range remaining {
		s.release(img)
	}
	return remaining
}

// Images returns the gallery newest first.
func (s *GalleryService) Images() []model.CapturedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CapturedImage, len(s.images))
	copy(out, s.images)
	return out
}

func (s *GalleryService) Get(id string) (model.CapturedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, img := range s.images {
		if img.ID == id {
			return img, true
		}
	}
	return model.CapturedImage{}, false
}

func (s *GalleryService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

func (s *GalleryService) Capacity() int {
	return s.capacity
}

// release frees the backing resource; failures are logged and swallowed.
func (s *GalleryService) release(img model.CapturedImage) {
	if img.Artifact == nil {
		return
	}
	if err := img.Artifact.Release(); err != nil {
		s.logger.Warning("Failed to release artifact %s of image %s: %v", img.Artifact.Key(), img.ID, err)
	}
}
