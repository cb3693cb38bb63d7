// ABOUTME: Scan history storage operations.
// ABOUTME: Persists every decoded (or undecodable) payload with its typed fields.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scan is one recorded payload and its decode result
type Scan struct {
	ID        string            `json:"id"`
	DeviceID  string            `json:"device_id"`
	Payload   []byte            `json:"-"`
	Scheme    string            `json:"scheme"`
	Decoder   string            `json:"decoder"`
	Kind      string            `json:"kind"`
	Fields    map[string]string `json:"fields"`
	Summary   string            `json:"summary"`
	CreatedAt time.Time         `json:"created_at"`
}

// Decoded reports whether the scan produced a typed result
func (s *Scan) Decoded() bool {
	return s.Kind != ""
}

// ScanQuery represents filters for scan history
type ScanQuery struct {
	Limit    int
	Offset   int
	DeviceID string
	Kind     string
	Search   string
	// Failed restricts results to payloads that could not be decoded
	Failed bool
}

// ScanStats represents aggregate scan statistics
type ScanStats struct {
	Total   int            `json:"total"`
	Decoded int            `json:"decoded"`
	Failed  int            `json:"failed"`
	ByKind  map[string]int `json:"by_kind"`
}

// SaveScan stores scan, assigning an ID and timestamp when missing
func (s *Store) SaveScan(ctx context.Context, scan *Scan) error {
	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = time.Now().UTC()
	}
	if scan.Fields == nil {
		scan.Fields = map[string]string{}
	}

	fields, err := json.Marshal(scan.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scans (id, device_id, payload, scheme, decoder, kind, fields, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, scan.ID, scan.DeviceID, scan.Payload, scan.Scheme, scan.Decoder, scan.Kind, string(fields), scan.Summary, scan.CreatedAt)
	return err
}

const scanColumns = `id, device_id, payload, scheme, decoder, kind, fields, summary, created_at`

// GetScan returns the scan with id, or nil when absent
func (s *Store) GetScan(ctx context.Context, id string) (*Scan, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+scanColumns+" FROM scans WHERE id = ?", id)
	scan, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return scan, err
}

// ListScans returns scans newest first
func (s *Store) ListScans(ctx context.Context, q *ScanQuery) ([]*Scan, error) {
	query := "SELECT " + scanColumns + " FROM scans WHERE 1=1"
	args := []any{}

	if q.DeviceID != "" {
		query += " AND device_id = ?"
		args = append(args, q.DeviceID)
	}
	if q.Kind != "" {
		query += " AND kind = ?"
		args = append(args, q.Kind)
	}
	if q.Failed {
		query += " AND kind = ''"
	}
	if q.Search != "" {
		pattern := "%" + escapeSQLLike(q.Search) + "%"
		query += ` AND (summary LIKE ? ESCAPE '\' OR fields LIKE ? ESCAPE '\' OR CAST(payload AS TEXT) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// DeleteScan removes the scan with id and reports whether it existed
func (s *Store) DeleteScan(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM scans WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetScanStats returns totals over the whole history
func (s *Store) GetScanStats(ctx context.Context) (*ScanStats, error) {
	stats := &ScanStats{ByKind: map[string]int{}}

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM scans GROUP BY kind")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		if kind == "" {
			stats.Failed += count
			continue
		}
		stats.Decoded += count
		stats.ByKind[kind] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*Scan, error) {
	scan := &Scan{}
	var fields string
	if err := row.Scan(&scan.ID, &scan.DeviceID, &scan.Payload, &scan.Scheme, &scan.Decoder, &scan.Kind, &fields, &scan.Summary, &scan.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &scan.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields of scan %s: %w", scan.ID, err)
	}
	return scan, nil
}
