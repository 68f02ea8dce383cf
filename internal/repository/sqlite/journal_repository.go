package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/dto"
	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// JournalRepository implements repository.JournalRepository for SQLite.
type JournalRepository struct {
	db  *DB
	now func() time.Time
}

// NewJournalRepository creates a new SQLite journal repository.
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db, now: time.Now}
}

// InsertPoint records a history point.
func (r *JournalRepository) InsertPoint(p *model.JournalPoint) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO points (device, kind, timestamp, entries, exits, occupancy)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Device, p.Kind, p.Timestamp.UTC(), p.Entries, p.Exits, p.Occupancy)
	if err != nil {
		return 0, fmt.Errorf("failed to insert point: %w", err)
	}

	return result.LastInsertId()
}

// InsertCapture records a new capture.
func (r *JournalRepository) InsertCapture(c *model.JournalCapture) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO captures (id, device, content_type, size, captured_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Device, c.ContentType, c.Size, c.CapturedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert capture: %w", err)
	}
	return nil
}

// InsertFault records a failed poll.
func (r *JournalRepository) InsertFault(f *model.JournalFault) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO faults (device, kind, endpoint, message, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, f.Device, f.Kind, f.Endpoint, f.Message, f.Timestamp.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert fault: %w", err)
	}

	return result.LastInsertId()
}

// MarkReleased stamps a capture as released. Releasing twice keeps the
// first stamp.
func (r *JournalRepository) MarkReleased(id, reason string) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		UPDATE captures SET released_at = ?, release_reason = ?
		WHERE id = ? AND released_at IS NULL
	`, r.now().UTC(), reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark capture released: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("capture %s not found or already released", id)
	}
	return nil
}

// GetPoints retrieves points matching filter, oldest first.
func (r *JournalRepository) GetPoints(filter *model.PointFilter) ([]model.JournalPoint, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if filter == nil {
		filter = &model.PointFilter{}
	}

	query := `
		SELECT id, device, kind, timestamp, entries, exits, occupancy
		FROM points
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Device != "" {
		query += " AND device = ?"
		args = append(args, filter.Device)
	}

	if !filter.After.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.After.UTC())
	}

	if !filter.Before.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.Before.UTC())
	}

	query += " ORDER BY id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	var points []model.JournalPoint
	for rows.Next() {
		var p model.JournalPoint
		if err := rows.Scan(&p.ID, &p.Device, &p.Kind, &p.Timestamp, &p.Entries, &p.Exits, &p.Occupancy); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// GetCapture retrieves a capture by ID, nil when unknown.
func (r *JournalRepository) GetCapture(id string) (*model.JournalCapture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var c model.JournalCapture
	var releasedAt sql.NullTime
	err := r.db.Conn().QueryRow(`
		SELECT id, device, content_type, size, captured_at, released_at, release_reason
		FROM captures WHERE id = ?
	`, id).Scan(&c.ID, &c.Device, &c.ContentType, &c.Size, &c.CapturedAt, &releasedAt, &c.ReleaseReason)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	if releasedAt.Valid {
		c.ReleasedAt = &releasedAt.Time
	}
	return &c, nil
}

// GetStats returns statistics about the session.
func (r *JournalRepository) GetStats() (*dto.JournalStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &dto.JournalStats{}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM points`).Scan(&stats.Points); err != nil {
		return nil, err
	}

	if err := r.db.Conn().QueryRow(`
		SELECT COUNT(*), COUNT(released_at), COALESCE(SUM(size), 0) FROM captures
	`).Scan(&stats.Captures, &stats.ReleasedCaptures, &stats.CaptureBytes); err != nil {
		return nil, err
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM faults`).Scan(&stats.Faults); err != nil {
		return nil, err
	}

	return stats, nil
}
