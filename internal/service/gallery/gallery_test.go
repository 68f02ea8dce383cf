package gallery

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// countingHandle records how many times it was released.
type countingHandle struct {
	key      string
	releases atomic.Int32
	fail     bool
}

func (h *countingHandle) Key() string         { return h.key }
func (h *countingHandle) ContentType() string { return "image/jpeg" }
func (h *countingHandle) Size() int           { return 3 }
func (h *countingHandle) Release() error {
	h.releases.Add(1)
	if h.fail {
		return errors.New("revoke failed")
	}
	return nil
}

func newImage(i int) (model.CapturedImage, *countingHandle) {
	h := &countingHandle{key: fmt.Sprintf("art-%d", i)}
	return model.CapturedImage{ID: fmt.Sprintf("cap-%d", i), Artifact: h}, h
}

func newTestGallery(capacity int) *GalleryService {
	return NewGalleryService(capacity, logger.Discard())
}

func TestInsert_MostRecentFirst(t *testing.T) {
	g := newTestGallery(5)
	for i := 0; i < 3; i++ {
		img, _ := newImage(i)
		if _, err := g.Insert(img); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	images := g.Images()
	if len(images) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(images))
	}
	for i, want := range []string{"cap-2", "cap-1", "cap-0"} {
		if images[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, images[i].ID)
		}
	}
}

func TestInsert_EvictsAndReleasesOldest(t *testing.T) {
	const capacity = 20
	g := newTestGallery(capacity)

	handles := make([]*countingHandle, 0, 25)
	for i := 0; i < 25; i++ {
		img, h := newImage(i)
		handles = append(handles, h)
		if _, err := g.Insert(img); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
		if g.Len() > capacity {
			t.Fatalf("Gallery exceeded capacity: %d", g.Len())
		}
	}

	if g.Len() != capacity {
		t.Errorf("Expected length %d, got %d", capacity, g.Len())
	}
	for i, h := range handles {
		want := int32(0)
		if i < 5 {
			want = 1
		}
		if got := h.releases.Load(); got != want {
			t.Errorf("Handle %d: expected %d release(s), got %d", i, want, got)
		}
	}
	if _, ok := g.Get("cap-0"); ok {
		t.Error("Oldest image should have been evicted")
	}
}

func TestInsert_ReturnsEvicted(t *testing.T) {
	g := newTestGallery(1)
	first, _ := newImage(1)
	second, _ := newImage(2)

	g.Insert(first)
	evicted, err := g.Insert(second)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if len(evicted) != 1 || evicted[0].ID != "cap-1" {
		t.Errorf("Expected cap-1 evicted, got %+v", evicted)
	}
}

func TestSelect_ClearedOnEviction(t *testing.T) {
	g := newTestGallery(2)
	a, _ := newImage(1)
	b, _ := newImage(2)
	c, _ := newImage(3)

	g.Insert(a)
	g.Insert(b)
	if _, ok := g.Select("cap-1"); !ok {
		t.Fatal("Expected cap-1 to be selectable")
	}

	g.Insert(c)

	if _, ok := g.Selected(); ok {
		t.Error("Selection of an evicted image should be cleared")
	}
}

func TestSelect_UnknownID(t *testing.T) {
	g := newTestGallery(2)
	if _, ok := g.Select("nope"); ok {
		t.Error("Expected unknown id not to be selectable")
	}
}

func TestClearSelection(t *testing.T) {
	g := newTestGallery(2)
	a, _ := newImage(1)
	g.Insert(a)
	g.Select("cap-1")

	g.ClearSelection()

	if _, ok := g.Selected(); ok {
		t.Error("Expected no selection")
	}
}

func TestRelease_Explicit(t *testing.T) {
	g := newTestGallery(3)
	a, ha := newImage(1)
	b, _ := newImage(2)
	g.Insert(a)
	g.Insert(b)
	g.Select("cap-1")

	if _, err := g.Release("cap-1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if ha.releases.Load() != 1 {
		t.Errorf("Expected one release, got %d", ha.releases.Load())
	}
	if g.Len() != 1 {
		t.Errorf("Expected 1 image left, got %d", g.Len())
	}
	if _, ok := g.Selected(); ok {
		t.Error("Releasing the selected image should clear the selection")
	}
	if _, err := g.Release("cap-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second release, got %v", err)
	}
	if ha.releases.Load() != 1 {
		t.Errorf("Handle released twice")
	}
}

func TestClose_ReleasesEverythingOnce(t *testing.T) {
	g := newTestGallery(5)
	var handles []*countingHandle
	for i := 0; i < 3; i++ {
		img, h := newImage(i)
		handles = append(handles, h)
		g.Insert(img)
	}

	if released := g.Close(); len(released) != 3 {
		t.Errorf("Expected 3 released on close, got %d", len(released))
	}
	g.Close()

	for i, h := range handles {
		if h.releases.Load() != 1 {
			t.Errorf("Handle %d: expected 1 release, got %d", i, h.releases.Load())
		}
	}

	late, lh := newImage(99)
	if _, err := g.Insert(late); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if lh.releases.Load() != 1 {
		t.Error("Image inserted after close should be released")
	}
}

func TestRelease_FailureIsNonFatal(t *testing.T) {
	g := newTestGallery(1)
	a, ha := newImage(1)
	ha.fail = true
	b, _ := newImage(2)

	g.Insert(a)
	if _, err := g.Insert(b); err != nil {
		t.Fatalf("Insert should succeed despite release failure: %v", err)
	}
	if g.Len() != 1 {
		t.Errorf("Expected 1 image, got %d", g.Len())
	}
}
