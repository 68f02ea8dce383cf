// Package artifact registers encoded image bytes under short-lived keys,
// the way a browser hands out object URLs for blobs. A key stays
// resolvable until its handle is released.
package artifact

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Sunny-pro22/Dashboard/internal/idgen"
)

var (
	// ErrAlreadyReleased is returned by a second Release of the same handle.
	ErrAlreadyReleased = errors.New("artifact already released")
	// ErrNotFound is returned when a key is not registered.
	ErrNotFound = errors.New("artifact not found")
)

type blob struct {
	data        []byte
	contentType string
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]blob
	bytes int64

	registered atomic.Int64
	released   atomic.Int64
}

// Stats is a point-in-time view of the store.
type Stats struct {
	Live       int   `json:"live"`
	LiveBytes  int64 `json:"liveBytes"`
	Registered int64 `json:"registered"`
	Released   int64 `json:"released"`
}

func NewStore() *Store {
	return &Store{blobs: make(map[string]blob)}
}

// Put registers data and returns the handle that owns it.
func (s *Store) Put(data []byte, contentType string) (*Handle, error) {
	key, err := idgen.Generate("art-")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.blobs[key] = blob{data: data, contentType: contentType}
	s.bytes += int64(len(data))
	s.mu.Unlock()

	s.registered.Add(1)
	return &Handle{store: s, key: key, contentType: contentType, size: len(data)}, nil
}

// Get resolves a key. The returned slice must not be modified.
func (s *Store) Get(key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return b.data, b.contentType, nil
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	live, bytes := len(s.blobs), s.bytes
	s.mu.RUnlock()

	return Stats{
		Live:       live,
		LiveBytes:  bytes,
		Registered: s.registered.Load(),
		Released:   s.released.Load(),
	}
}

func (s *Store) revoke(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[key]
	if !ok {
		return ErrNotFound
	}
	delete(s.blobs, key)
	s.bytes -= int64(len(b.data))
	s.released.Add(1)
	return nil
}

// Handle implements model.ArtifactHandle.
type Handle struct {
	store       *Store
	key         string
	contentType string
	size        int
	released    atomic.Bool
}

func (h *Handle) Key() string         { return h.key }
func (h *Handle) ContentType() string { return h.contentType }
func (h *Handle) Size() int           { return h.size }

// Released reports whether Release has been called.
func (h *Handle) Released() bool { return h.released.Load() }

// Release revokes the key and frees the bytes.
func (h *Handle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return ErrAlreadyReleased
	}
	return h.store.revoke(h.key)
}
