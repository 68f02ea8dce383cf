package dto

import (
	"encoding/json"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// Live feed update kinds.
const (
	UpdateCounters = "counters"
	UpdatePoint    = "point"
	UpdateGallery  = "gallery"
)

// CounterView is the read-side form of the ledger state.
type CounterView struct {
	Entries   int64 `json:"entries"`
	Exits     int64 `json:"exits"`
	Occupancy int64 `json:"occupancy"`
}

func NewCounterView(state model.CounterState) CounterView {
	return CounterView{Entries: state.Entries, Exits: state.Exits, Occupancy: state.Occupancy()}
}

// PointView is one chart point.
type PointView struct {
	Timestamp time.Time `json:"timestamp"`
	Entries   int64     `json:"entries"`
	Exits     int64     `json:"exits"`
	Occupancy int64     `json:"occupancy"`
}

// MarshalJSON adds the chart axis label next to the full timestamp.
func (p PointView) MarshalJSON() ([]byte, error) {
	type Alias PointView
	return json.Marshal(&struct {
		Label string `json:"label"`
		Alias
	}{
		Label: p.Timestamp.Format("15:04:05"),
		Alias: (Alias)(p),
	})
}

func NewPointView(p model.HistoryPoint) PointView {
	return PointView{Timestamp: p.Timestamp, Entries: p.Entries, Exits: p.Exits, Occupancy: p.Occupancy}
}

// HistoryData is the /api/history payload.
type HistoryData struct {
	Points   []PointView `json:"points"`
	Capacity int         `json:"capacity"`
	Length   int         `json:"length"`
}

// GalleryItem describes one capture without its bytes.
type GalleryItem struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Device      string `json:"device"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	URL         string `json:"url"`
}

func NewGalleryItem(img model.CapturedImage) GalleryItem {
	item := GalleryItem{
		ID:        img.ID,
		Timestamp: img.Timestamp,
		Device:    img.Device,
		URL:       "/api/gallery/view?id=" + img.ID,
	}
	if img.Artifact != nil {
		item.ContentType = img.Artifact.ContentType()
		item.Size = img.Artifact.Size()
	}
	return item
}

// GalleryData is the /api/gallery payload.
type GalleryData struct {
	Images   []GalleryItem `json:"images"`
	Length   int           `json:"length"`
	Capacity int           `json:"capacity"`
	Selected *GalleryItem  `json:"selected"`
}

// DashboardUpdate is one message on the live feed.
type DashboardUpdate struct {
	Type     string       `json:"type"`
	Counters CounterView  `json:"counters"`
	Point    *PointView   `json:"point,omitempty"`
	Gallery  *GalleryData `json:"gallery,omitempty"`
}
