package repository

import (
	"github.com/Sunny-pro22/Dashboard/internal/dto"
	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// JournalRepository defines the session journal operations.
type JournalRepository interface {
	// Create operations
	InsertPoint(p *model.JournalPoint) (int64, error)
	InsertCapture(c *model.JournalCapture) error
	InsertFault(f *model.JournalFault) (int64, error)

	// Update operations
	MarkReleased(id, reason string) error

	// Read operations
	GetPoints(filter *model.PointFilter) ([]model.JournalPoint, error)
	GetCapture(id string) (*model.JournalCapture, error)
	GetStats() (*dto.JournalStats, error)
}
