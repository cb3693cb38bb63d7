// ABOUTME: Tests for the installed package catalogue.
// ABOUTME: Verifies upsert semantics, ordering and deletion.

package store

import (
	"context"
	"testing"
	"time"
)

func TestPackageCatalogue(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []*PackageRecord{
		{Name: "wifi", Brief: "Wi-Fi", Version: "1.0.0", Digest: "aa", SizeBytes: 10, DecoderCount: 1, InstalledAt: first.Add(time.Hour)},
		{Name: "geo", Brief: "Geo", Version: "0.2.0", Digest: "bb", SizeBytes: 20, ViewCount: 1, InstalledAt: first},
	}
	for _, r := range records {
		if err := s.UpsertPackage(ctx, r); err != nil {
			t.Fatalf("UpsertPackage() error = %v", err)
		}
	}

	list, err := s.ListPackages(ctx)
	if err != nil {
		t.Fatalf("ListPackages() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "geo" || list[1].Name != "wifi" {
		t.Fatalf("unexpected install order %+v", list)
	}

	// Reinstall updates in place
	if err := s.UpsertPackage(ctx, &PackageRecord{Name: "wifi", Version: "1.1.0", Digest: "cc", InstalledAt: first.Add(2 * time.Hour)}); err != nil {
		t.Fatalf("UpsertPackage() error = %v", err)
	}
	got, err := s.GetPackage(ctx, "wifi")
	if err != nil || got == nil {
		t.Fatalf("GetPackage() = %v, %v", got, err)
	}
	if got.Version != "1.1.0" || got.Digest != "cc" || got.DecoderCount != 0 {
		t.Errorf("upsert did not replace row: %+v", got)
	}

	if err := s.DeletePackage(ctx, "wifi"); err != nil {
		t.Fatalf("DeletePackage() error = %v", err)
	}
	if got, _ := s.GetPackage(ctx, "wifi"); got != nil {
		t.Error("package still present after delete")
	}
	if err := s.DeletePackage(ctx, "wifi"); err != nil {
		t.Errorf("deleting a missing package should not fail: %v", err)
	}
}
