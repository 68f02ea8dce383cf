package artifact

import (
	"errors"
	"sync"
	"testing"

	"github.com/Sunny-pro22/Dashboard/internal/model"
)

var _ model.ArtifactHandle = (*Handle)(nil)

func TestPut_Get(t *testing.T) {
	s := NewStore()

	h, err := s.Put([]byte("jpeg bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, ct, err := s.Get(h.Key())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "jpeg bytes" || ct != "image/jpeg" {
		t.Errorf("Unexpected blob %q (%s)", data, ct)
	}
	if h.Size() != len("jpeg bytes") {
		t.Errorf("Expected size %d, got %d", len("jpeg bytes"), h.Size())
	}
}

func TestRelease_RevokesKey(t *testing.T) {
	s := NewStore()
	h, _ := s.Put([]byte("abc"), "image/jpeg")

	if err := h.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, _, err := s.Get(h.Key()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after release, got %v", err)
	}

	stats := s.Stats()
	if stats.Live != 0 || stats.LiveBytes != 0 || stats.Released != 1 || stats.Registered != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestRelease_Twice(t *testing.T) {
	s := NewStore()
	h, _ := s.Put([]byte("abc"), "image/jpeg")

	if err := h.Release(); err != nil {
		t.Fatalf("First release failed: %v", err)
	}
	if err := h.Release(); !errors.Is(err, ErrAlreadyReleased) {
		t.Errorf("Expected ErrAlreadyReleased, got %v", err)
	}
	if s.Stats().Released != 1 {
		t.Errorf("Expected exactly one release counted, got %d", s.Stats().Released)
	}
}

func TestRelease_ConcurrentOnlyOnce(t *testing.T) {
	s := NewStore()
	h, _ := s.Put([]byte("abc"), "image/jpeg")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.Release() == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("Expected exactly one successful release, got %d", succeeded)
	}
}
