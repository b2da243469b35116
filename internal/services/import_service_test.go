package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"railists/internal/storage"
)

func TestImportService_Import(t *testing.T) {
	repo := newTestRepo(t)
	pub := &fakePublisher{}
	svc := NewImportService(repo, pub)
	ctx := context.Background()

	rec, err := svc.Import(ctx, writeTestCollection(t))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if rec.ItemCount != 2 || rec.SyncStatus != storage.SyncPending {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(pub.calls) != 1 || pub.calls[0] != rec.ID {
		t.Errorf("publisher calls = %v, want [%d]", pub.calls, rec.ID)
	}

	c, err := repo.LoadCollection(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadCollection: %v", err)
	}
	if c.Description != "Service test" || c.Version != 2 {
		t.Errorf("unexpected collection header %q v%d", c.Description, c.Version)
	}
}

func TestImportService_PublishFailureKeepsImport(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewImportService(repo, &fakePublisher{err: errors.New("broker down")})
	ctx := context.Background()

	rec, err := svc.Import(ctx, writeTestCollection(t))
	if err != nil {
		t.Fatalf("Import should succeed when publish fails: %v", err)
	}
	if _, err := repo.GetImport(ctx, rec.ID); err != nil {
		t.Errorf("import not stored: %v", err)
	}
}

func TestImportService_NilPublisher(t *testing.T) {
	svc := NewImportService(newTestRepo(t), nil)
	if _, err := svc.Import(context.Background(), writeTestCollection(t)); err != nil {
		t.Fatalf("Import: %v", err)
	}
}

func TestImportService_InvalidFile(t *testing.T) {
	repo := newTestRepo(t)
	pub := &fakePublisher{}
	svc := NewImportService(repo, pub)
	ctx := context.Background()

	if _, err := svc.Import(ctx, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(pub.calls) != 0 {
		t.Error("nothing should be published for a failed import")
	}
	if n, _ := repo.CountImports(ctx); n != 0 {
		t.Errorf("CountImports = %d, want 0", n)
	}
}
