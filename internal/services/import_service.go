package services

import (
	"context"
	"fmt"
	"log/slog"

	"railists/internal/core"
	"railists/internal/datasource"
	"railists/internal/metrics"
	"railists/internal/storage"
)

// ImportStore persists collections.
type ImportStore interface {
	SaveImport(ctx context.Context, c core.Collection, source string) (storage.ImportRecord, error)
}

// ImportPublisher announces stored imports to the sync worker.
type ImportPublisher interface {
	PublishCollectionImported(ctx context.Context, importID int64, runID string, itemCount int) error
}

// ImportService copies a collection file into SQLite and notifies the worker
type ImportService struct {
	store     ImportStore
	publisher ImportPublisher
}

// NewImportService accepts a nil publisher: imports are then picked up by
// the worker's pending scan only.
func NewImportService(store ImportStore, publisher ImportPublisher) *ImportService {
	return &ImportService{
		store:     store,
		publisher: publisher,
	}
}

// Import loads and validates the file, stores it and publishes a sync
// message. A publish failure is logged, not returned: the import is saved.
func (s *ImportService) Import(ctx context.Context, path string) (storage.ImportRecord, error) {
	c, err := datasource.LoadCollection(path)
	if err != nil {
		metrics.IncImport(metrics.ResultError)
		return storage.ImportRecord{}, fmt.Errorf("load collection: %w", err)
	}

	rec, err := s.store.SaveImport(ctx, c, path)
	if err != nil {
		metrics.IncImport(metrics.ResultError)
		return storage.ImportRecord{}, fmt.Errorf("save import: %w", err)
	}
	metrics.IncImport(metrics.ResultSuccess)

	if err := s.publish(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "Failed to publish import message",
			"import_id", rec.ID,
			"run_id", rec.RunID,
			"error", err)
	}

	return rec, nil
}

func (s *ImportService) publish(ctx context.Context, rec storage.ImportRecord) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping import message", "import_id", rec.ID)
		return nil
	}
	return s.publisher.PublishCollectionImported(ctx, rec.ID, rec.RunID, rec.ItemCount)
}
