package model

import "time"

// ArtifactHandle references the backing bytes of a captured image.
// Release must be called exactly once.
type ArtifactHandle interface {
	Key() string
	ContentType() string
	Size() int
	Release() error
}

// CapturedImage is one gallery entry.
type CapturedImage struct {
	ID         string
	Artifact   ArtifactHandle
	Timestamp  string // display form, "15:04:05"
	CapturedAt time.Time
	Device     string
}

// DisplayTimestamp formats a capture time the way the gallery shows it.
func DisplayTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
