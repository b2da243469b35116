package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"railists/internal/amqp"
	"railists/internal/storage"
)

// ImportStore is the lookup side of the SQLite repository.
type ImportStore interface {
	GetImport(ctx context.Context, id int64) (storage.ImportRecord, error)
	LatestImport(ctx context.Context) (storage.ImportRecord, error)
	MarkSynced(ctx context.Context, id int64) error
}

// Syncer writes the reports of an import to the spreadsheet.
type Syncer interface {
	SyncImport(ctx context.Context, importID int64) error
	ProcessPending(ctx context.Context, limit int) (int, error)
}

// StatsSyncWorker keeps the spreadsheet in step with the latest import
type StatsSyncWorker struct {
	storage   ImportStore
	syncer    Syncer
	batchSize int
}

func NewStatsSyncWorker(storage ImportStore, syncer Syncer, batchSize int) *StatsSyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &StatsSyncWorker{
		storage:   storage,
		syncer:    syncer,
		batchSize: batchSize,
	}
}

// HandleImportMessage processes one collection imported message from AMQP.
// Messages for imports that are already synced or have been superseded by
// a newer import are acknowledged without writing.
func (w *StatsSyncWorker) HandleImportMessage(ctx context.Context, msg *amqp.CollectionImportedMessage) error {
	slog.InfoContext(ctx, "Processing import message",
		"import_id", msg.ImportID,
		"run_id", msg.RunID,
		"items", msg.ItemCount)

	rec, err := w.storage.GetImport(ctx, msg.ImportID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Import from message not found, dropping", "import_id", msg.ImportID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get import: %w", err)
	}
	if rec.SyncStatus != storage.SyncPending {
		slog.InfoContext(ctx, "Import already processed", "import_id", rec.ID, "status", rec.SyncStatus)
		return nil
	}

	latest, err := w.storage.LatestImport(ctx)
	if err != nil {
		return fmt.Errorf("get latest import: %w", err)
	}
	if latest.ID > rec.ID {
		if err := w.storage.MarkSynced(ctx, rec.ID); err != nil {
			return fmt.Errorf("mark superseded import: %w", err)
		}
		slog.InfoContext(ctx, "Import superseded", "import_id", rec.ID, "by", latest.ID)
		return nil
	}

	return w.syncer.SyncImport(ctx, rec.ID)
}

// ProcessPendingImports syncs imports whose message was lost.
// This is a backup mechanism in case AMQP messages are lost
func (w *StatsSyncWorker) ProcessPendingImports(ctx context.Context) error {
	n, err := w.syncer.ProcessPending(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.InfoContext(ctx, "Processed pending imports", "count", n)
	}
	return nil
}

// StartupSyncCheck syncs any imports left pending while the worker was down
func (w *StatsSyncWorker) StartupSyncCheck(ctx context.Context) error {
	n, err := w.syncer.ProcessPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "No pending imports found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed", "imports", n)
	return nil
}
