// ABOUTME: Installed package catalogue storage operations.
// ABOUTME: Mirrors metadata of packages whose archives live in the packages directory.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PackageRecord is the catalogue row of an installed package
type PackageRecord struct {
	Name         string    `json:"name"`
	Brief        string    `json:"brief"`
	Version      string    `json:"version"`
	Digest       string    `json:"digest"`
	SizeBytes    int64     `json:"size_bytes"`
	DecoderCount int       `json:"decoder_count"`
	ViewCount    int       `json:"view_count"`
	InstalledAt  time.Time `json:"installed_at"`
}

// UpsertPackage inserts or replaces the catalogue row for p.Name
func (s *Store) UpsertPackage(ctx context.Context, p *PackageRecord) error {
	installedAt := p.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO installed_packages (name, brief, version, digest, size_bytes, decoder_count, view_count, installed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			brief = excluded.brief,
			version = excluded.version,
			digest = excluded.digest,
			size_bytes = excluded.size_bytes,
			decoder_count = excluded.decoder_count,
			view_count = excluded.view_count,
			installed_at = excluded.installed_at
	`, p.Name, p.Brief, p.Version, p.Digest, p.SizeBytes, p.DecoderCount, p.ViewCount, installedAt)
	return err
}

// GetPackage returns the catalogue row for name, or nil when absent
func (s *Store) GetPackage(ctx context.Context, name string) (*PackageRecord, error) {
	p := &PackageRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, brief, version, digest, size_bytes, decoder_count, view_count, installed_at
		FROM installed_packages WHERE name = ?
	`, name).Scan(&p.Name, &p.Brief, &p.Version, &p.Digest, &p.SizeBytes, &p.DecoderCount, &p.ViewCount, &p.InstalledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPackages returns catalogue rows in install order
func (s *Store) ListPackages(ctx context.Context) ([]*PackageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, brief, version, digest, size_bytes, decoder_count, view_count, installed_at
		FROM installed_packages ORDER BY installed_at, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []*PackageRecord
	for rows.Next() {
		p := &PackageRecord{}
		if err := rows.Scan(&p.Name, &p.Brief, &p.Version, &p.Digest, &p.SizeBytes, &p.DecoderCount, &p.ViewCount, &p.InstalledAt); err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// DeletePackage removes the catalogue row for name. Missing rows are not an error.
func (s *Store) DeletePackage(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM installed_packages WHERE name = ?", name)
	return err
}
