package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"railists/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "railists.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testCollection() core.Collection {
	loco := core.NewLocomotive(
		core.CatalogInfo{Brand: "ACME", ItemNumber: "60392", Description: "FS E.656", Scale: "H0", PowerMethod: core.DC, Epoch: "IV"},
		core.Purchase{Shop: "Tecnomodel", Date: time.Date(2005, 3, 12, 0, 0, 0, 0, time.UTC), Price: core.Euro(decimal.RequireFromString("50.00"))},
		1,
		core.Locomotive{ClassName: "E656", RoadNumber: "E656 077", Control: core.DccSound, DccInterface: core.Plux22},
	)
	car := core.NewPassengerCar(
		core.CatalogInfo{Brand: "Rivarossi", ItemNumber: "HR4123", Scale: "H0", PowerMethod: core.DC},
		core.Purchase{Price: core.Euro(decimal.RequireFromString("20.5"))},
		2,
	)
	return core.Collection{
		Description: "My collection",
		Version:     3,
		ModifiedAt:  time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC),
		Items:       []core.Item{loco, car},
	}
}

func TestSaveAndLoadCollection(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec, err := repo.SaveImport(ctx, testCollection(), "collection.yaml")
	if err != nil {
		t.Fatalf("SaveImport: %v", err)
	}
	if rec.ID == 0 || rec.RunID == "" {
		t.Fatalf("expected id and run id, got %+v", rec)
	}
	if rec.ItemCount != 2 || rec.SyncStatus != SyncPending || rec.Currency != "EUR" {
		t.Errorf("unexpected record %+v", rec)
	}

	got, err := repo.LoadCollection(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}
	if got.Description != "My collection" || got.Version != 3 {
		t.Errorf("header = %q v%d", got.Description, got.Version)
	}
	if !got.ModifiedAt.Equal(time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("ModifiedAt = %v", got.ModifiedAt)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", got.Len())
	}

	loco := got.Items[0]
	if !loco.IsLocomotive() {
		t.Fatalf("first item should be a locomotive, got %v", loco.Category())
	}
	if name, _ := loco.ClassName(); name != "E656" {
		t.Errorf("ClassName = %q", name)
	}
	if dec, _ := loco.WithDecoder(); !dec {
		t.Error("expected decoder on DCC_SOUND locomotive")
	}
	if iface, _ := loco.DccInterface(); iface != core.Plux22 {
		t.Errorf("DccInterface = %q", iface)
	}
	if loco.Year() != 2005 {
		t.Errorf("Year = %v", loco.Year())
	}

	car := got.Items[1]
	if car.Category() != core.PassengerCars || car.Count() != 2 {
		t.Errorf("car = %v count %d", car.Category(), car.Count())
	}
	if car.Year().Known() {
		t.Errorf("undated item got year %v", car.Year())
	}
	if car.Value().String() != "20.50 EUR" {
		t.Errorf("Value = %s", car.Value())
	}
	if _, ok := car.ClassName(); ok {
		t.Error("ClassName should not apply to passenger cars")
	}
}

func TestLatestImport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.LatestImport(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty db, got %v", err)
	}

	first, err := repo.SaveImport(ctx, testCollection(), "a.yaml")
	if err != nil {
		t.Fatalf("SaveImport: %v", err)
	}
	second, err := repo.SaveImport(ctx, testCollection(), "b.yaml")
	if err != nil {
		t.Fatalf("SaveImport: %v", err)
	}
	if first.RunID == second.RunID {
		t.Error("run ids must be unique")
	}

	latest, err := repo.LatestImport(ctx)
	if err != nil {
		t.Fatalf("LatestImport: %v", err)
	}
	if latest.ID != second.ID || latest.Source != "b.yaml" {
		t.Errorf("latest = %+v, want id %d", latest, second.ID)
	}

	n, err := repo.CountImports(ctx)
	if err != nil {
		t.Fatalf("CountImports: %v", err)
	}
	if n != 2 {
		t.Errorf("CountImports = %d, want 2", n)
	}
}

func TestSyncStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		rec, err := repo.SaveImport(ctx, testCollection(), "collection.yaml")
		if err != nil {
			t.Fatalf("SaveImport: %v", err)
		}
		ids = append(ids, rec.ID)
	}

	pending, err := repo.GetPendingSyncImports(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncImports: %v", err)
	}
	if len(pending) != 3 || pending[0].ID != ids[2] || pending[2].ID != ids[0] {
		t.Fatalf("expected 3 pending newest first, got %+v", pending)
	}

	limited, err := repo.GetPendingSyncImports(ctx, 1)
	if err != nil {
		t.Fatalf("GetPendingSyncImports: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != ids[2] {
		t.Fatalf("limit 1 should return the newest pending import, got %+v", limited)
	}

	if err := repo.MarkSynced(ctx, ids[0]); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, ids[1], "sheets unavailable"); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}

	pending, err = repo.GetPendingSyncImports(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncImports: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != ids[2] {
		t.Errorf("expected only import %d pending, got %+v", ids[2], pending)
	}

	synced, err := repo.GetImport(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetImport: %v", err)
	}
	if synced.SyncStatus != SyncSynced || synced.SyncedAt.IsZero() {
		t.Errorf("synced record = %+v", synced)
	}

	failed, err := repo.GetImport(ctx, ids[1])
	if err != nil {
		t.Fatalf("GetImport: %v", err)
	}
	if failed.SyncStatus != SyncError || failed.SyncError != "sheets unavailable" {
		t.Errorf("failed record = %+v", failed)
	}
}

func TestNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetImport(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetImport: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.LoadCollection(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadCollection: expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkSynced(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkSynced: expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkSyncError(ctx, 42, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkSyncError: expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "railists.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	if _, err := repo.SaveImport(ctx, testCollection(), "collection.yaml"); err != nil {
		t.Fatalf("SaveImport: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	n, err := repo.CountImports(ctx)
	if err != nil {
		t.Fatalf("CountImports: %v", err)
	}
	if n != 1 {
		t.Errorf("CountImports after reopen = %d, want 1", n)
	}
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "railists.db")

	if err := RunMigrations(path); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	// A second run finds nothing to apply
	if err := RunMigrations(path); err != nil {
		t.Fatalf("RunMigrations again: %v", err)
	}

	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("SchemaVersion = %d (dirty %v), want 2", version, dirty)
	}
}
