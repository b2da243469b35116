package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"railists/internal/core"
	"railists/internal/metrics"
	"railists/internal/sheets"
	"railists/internal/storage"
)

// SyncStore is the part of the SQLite repository the sync needs.
type SyncStore interface {
	LoadCollection(ctx context.Context, importID int64) (core.Collection, error)
	LatestImport(ctx context.Context) (storage.ImportRecord, error)
	GetPendingSyncImports(ctx context.Context, limit int) ([]storage.ImportRecord, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64, reason string) error
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending imports (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of imports read per poll cycle (default: 10)
	BatchSize int

	// MaxRetries is the number of failed attempts before an import is
	// marked as errored (default: 3)
	MaxRetries int
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
		MaxRetries:   3,
	}
}

// SyncProcessor writes the stats and depot of stored imports to the
// spreadsheet. Only the newest import is ever written; older pending ones
// are marked synced as superseded.
type SyncProcessor struct {
	storage SyncStore
	sheets  sheets.ReportWriter
	config  SyncProcessorConfig

	// syncMu serializes the latest-import check and the sheet write, so an
	// older import can never land after a newer one.
	syncMu sync.Mutex

	attemptsMu sync.Mutex
	attempts   map[int64]int

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor
func NewSyncProcessor(storage SyncStore, writer sheets.ReportWriter, config SyncProcessorConfig) *SyncProcessor {
	def := DefaultSyncProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = def.MaxRetries
	}
	return &SyncProcessor{
		storage:  storage,
		sheets:   writer,
		config:   config,
		attempts: make(map[int64]int),
	}
}

// Start begins the polling loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessPending(ctx, p.config.BatchSize); err != nil {
				slog.ErrorContext(ctx, "Failed to process pending imports", "error", err)
			}
		}
	}
}

// ProcessPending syncs the newest of up to limit pending imports, newest
// first, and returns how many imports left the pending state. The rest are
// superseded, and so is the newest pending one when a later import exists.
func (p *SyncProcessor) ProcessPending(ctx context.Context, limit int) (int, error) {
	pending, err := p.storage.GetPendingSyncImports(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending imports: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.DebugContext(ctx, "Processing pending imports", "count", len(pending))

	newest := pending[0]
	if err := p.SyncImport(ctx, newest.ID); err != nil {
		return 0, err
	}

	done := 1
	for _, rec := range pending[1:] {
		if err := p.supersede(ctx, rec.ID, newest.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark superseded import", "import_id", rec.ID, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

func (p *SyncProcessor) supersede(ctx context.Context, id, by int64) error {
	if err := p.storage.MarkSynced(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Import superseded", "import_id", id, "by", by)
	return nil
}

// SyncImport writes the reports of one import. After MaxRetries failures
// the import is marked as errored and nil is returned so the message is
// not redelivered forever. An import older than the latest one is marked
// superseded without touching the spreadsheet.
func (p *SyncProcessor) SyncImport(ctx context.Context, importID int64) error {
	p.syncMu.Lock()
	defer p.syncMu.Unlock()

	latest, err := p.storage.LatestImport(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("get latest import: %w", err)
	}
	if err == nil && latest.ID > importID {
		if err := p.supersede(ctx, importID, latest.ID); err != nil {
			return fmt.Errorf("mark superseded import: %w", err)
		}
		return nil
	}

	err = p.write(ctx, importID)
	metrics.IncSheetsSync(metrics.Result(err))
	if err == nil {
		p.resetAttempts(importID)
		return nil
	}

	attempt := p.recordAttempt(importID)
	slog.WarnContext(ctx, "Sync failed",
		"import_id", importID,
		"attempt", attempt,
		"error", err)

	if attempt < p.config.MaxRetries {
		return err
	}

	p.resetAttempts(importID)
	if markErr := p.storage.MarkSyncError(ctx, importID, err.Error()); markErr != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "import_id", importID, "error", markErr)
		return err
	}
	slog.ErrorContext(ctx, "Import sync failed permanently after max retries",
		"import_id", importID,
		"attempts", attempt)
	return nil
}

func (p *SyncProcessor) write(ctx context.Context, importID int64) error {
	c, err := p.storage.LoadCollection(ctx, importID)
	if err != nil {
		return fmt.Errorf("load import %d: %w", importID, err)
	}

	r, err := BuildReports(ctx, c)
	if err != nil {
		return err
	}

	statsRef, err := p.sheets.WriteStats(ctx, r.Stats)
	if err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	depotRef, err := p.sheets.WriteDepot(ctx, r.Depot)
	if err != nil {
		return fmt.Errorf("write depot: %w", err)
	}

	if err := p.storage.MarkSynced(ctx, importID); err != nil {
		// The sheet is already up to date
		slog.WarnContext(ctx, "Failed to mark import as synced", "import_id", importID, "error", err)
	}

	slog.InfoContext(ctx, "Synced import to spreadsheet",
		"import_id", importID,
		"stats_ref", statsRef,
		"depot_ref", depotRef)
	return nil
}

func (p *SyncProcessor) recordAttempt(id int64) int {
	p.attemptsMu.Lock()
	defer p.attemptsMu.Unlock()
	p.attempts[id]++
	return p.attempts[id]
}

func (p *SyncProcessor) resetAttempts(id int64) {
	p.attemptsMu.Lock()
	defer p.attemptsMu.Unlock()
	delete(p.attempts, id)
}
