package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"railists/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states of an import.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

const (
	timestampLayout = time.RFC3339Nano
	dateLayout      = "2006-01-02"
)

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// ImportRecord describes one stored copy of a collection file.
type ImportRecord struct {
	ID          int64
	RunID       string
	Source      string
	Description string
	Version     int
	ModifiedAt  time.Time
	Currency    string
	ItemCount   int
	ImportedAt  time.Time
	SyncStatus  string
	SyncedAt    time.Time
	SyncError   string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveImport stores a collection and all its items in one transaction.
// The new import starts in the pending sync state.
func (r *SQLiteRepository) SaveImport(ctx context.Context, c core.Collection, source string) (ImportRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportRecord{}, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	imp, err := q.CreateImport(ctx, CreateImportParams{
		RunID:       uuid.NewString(),
		Source:      source,
		Description: c.Description,
		Version:     int64(c.Version),
		ModifiedAt:  nullTime(c.ModifiedAt, timestampLayout),
		Currency:    c.Currency(),
		ItemCount:   int64(c.Len()),
		ImportedAt:  r.now().UTC().Format(timestampLayout),
	})
	if err != nil {
		return ImportRecord{}, fmt.Errorf("create import: %w", err)
	}

	for i, it := range c.Items {
		if err := q.CreateCollectionItem(ctx, toRow(imp.ID, i, it)); err != nil {
			return ImportRecord{}, fmt.Errorf("create item %d (%s %s): %w", i+1, it.Brand(), it.ItemNumber(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportRecord{}, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Collection imported to SQLite",
		"import_id", imp.ID,
		"run_id", imp.RunID,
		"items", imp.ItemCount,
		"source", source)

	return toRecord(imp)
}

// GetImport returns one import by id.
func (r *SQLiteRepository) GetImport(ctx context.Context, id int64) (ImportRecord, error) {
	imp, err := r.queries.GetImport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportRecord{}, fmt.Errorf("import %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return ImportRecord{}, fmt.Errorf("get import: %w", err)
	}
	return toRecord(imp)
}

// LatestImport returns the most recent import, ErrNotFound when the
// database is empty.
func (r *SQLiteRepository) LatestImport(ctx context.Context) (ImportRecord, error) {
	imp, err := r.queries.GetLatestImport(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportRecord{}, fmt.Errorf("latest import: %w", ErrNotFound)
	}
	if err != nil {
		return ImportRecord{}, fmt.Errorf("get latest import: %w", err)
	}
	return toRecord(imp)
}

// LoadCollection rebuilds the collection stored by an import, in file order.
func (r *SQLiteRepository) LoadCollection(ctx context.Context, importID int64) (core.Collection, error) {
	rec, err := r.GetImport(ctx, importID)
	if err != nil {
		return core.Collection{}, err
	}
	rows, err := r.queries.GetCollectionItems(ctx, importID)
	if err != nil {
		return core.Collection{}, fmt.Errorf("get collection items: %w", err)
	}

	c := core.Collection{
		Description: rec.Description,
		Version:     rec.Version,
		ModifiedAt:  rec.ModifiedAt,
		Items:       make([]core.Item, 0, len(rows)),
	}
	for _, row := range rows {
		it, err := fromRow(row)
		if err != nil {
			return core.Collection{}, fmt.Errorf("import %d item %d: %w", importID, row.Position+1, err)
		}
		c.Items = append(c.Items, it)
	}
	return c, nil
}

// GetPendingSyncImports returns imports not yet written to the spreadsheet,
// newest first.
func (r *SQLiteRepository) GetPendingSyncImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	imps, err := r.queries.GetPendingSyncImports(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync imports: %w", err)
	}
	records := make([]ImportRecord, 0, len(imps))
	for _, imp := range imps {
		rec, err := toRecord(imp)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// MarkSynced marks an import as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	n, err := r.queries.MarkImportSynced(ctx, r.now().UTC().Format(timestampLayout), id)
	if err != nil {
		return fmt.Errorf("mark import synced: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark import %d synced: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Import marked as synced", "import_id", id)
	return nil
}

// MarkSyncError marks an import as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64, reason string) error {
	n, err := r.queries.MarkImportSyncError(ctx, reason, id)
	if err != nil {
		return fmt.Errorf("mark import sync error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark import %d sync error: %w", id, ErrNotFound)
	}

	slog.WarnContext(ctx, "Import marked with sync error", "import_id", id, "reason", reason)
	return nil
}

// CountImports returns how many imports are stored.
func (r *SQLiteRepository) CountImports(ctx context.Context) (int64, error) {
	n, err := r.queries.CountImports(ctx)
	if err != nil {
		return 0, fmt.Errorf("count imports: %w", err)
	}
	return n, nil
}

func toRow(importID int64, position int, it core.Item) CollectionItem {
	row := CollectionItem{
		ImportID:      importID,
		Position:      int64(position),
		Category:      it.Category().Tag(),
		Brand:         it.Brand(),
		ItemNumber:    it.ItemNumber(),
		Description:   it.Description(),
		Scale:         it.Scale(),
		PowerMethod:   string(it.PowerMethod()),
		Epoch:         it.Epoch(),
		DeliveryDate:  it.DeliveryDate(),
		Count:         int64(it.Count()),
		Shop:          it.Shop(),
		PurchasedAt:   nullTime(it.PurchasedAt(), dateLayout),
		PriceAmount:   it.Value().Amount.String(),
		PriceCurrency: it.Value().Currency,
	}
	if loco, ok := it.Locomotive(); ok {
		row.ClassName = loco.ClassName
		row.RoadNumber = loco.RoadNumber
		row.Series = loco.Series
		row.Livery = loco.Livery
		row.Control = string(loco.Control)
		row.DccInterface = string(loco.DccInterface)
	}
	return row
}

func fromRow(row CollectionItem) (core.Item, error) {
	category, err := core.ParseCategory(row.Category)
	if err != nil {
		return core.Item{}, err
	}
	amount, err := decimal.NewFromString(row.PriceAmount)
	if err != nil {
		return core.Item{}, fmt.Errorf("price %q: %w", row.PriceAmount, err)
	}
	purchasedAt, err := parseNullTime(row.PurchasedAt, dateLayout)
	if err != nil {
		return core.Item{}, err
	}

	catalog := core.CatalogInfo{
		Brand:        row.Brand,
		ItemNumber:   row.ItemNumber,
		Description:  row.Description,
		Scale:        row.Scale,
		PowerMethod:  core.PowerMethod(row.PowerMethod),
		Epoch:        row.Epoch,
		DeliveryDate: row.DeliveryDate,
	}
	purchase := core.Purchase{
		Shop:  row.Shop,
		Date:  purchasedAt,
		Price: core.NewMoney(amount, row.PriceCurrency),
	}
	loco := core.Locomotive{
		ClassName:    row.ClassName,
		RoadNumber:   row.RoadNumber,
		Series:       row.Series,
		Livery:       row.Livery,
		Control:      core.Control(row.Control),
		DccInterface: core.DccInterface(row.DccInterface),
	}
	return core.NewItem(category, catalog, purchase, int(row.Count), loco)
}

func toRecord(imp Import) (ImportRecord, error) {
	rec := ImportRecord{
		ID:          imp.ID,
		RunID:       imp.RunID,
		Source:      imp.Source,
		Description: imp.Description,
		Version:     int(imp.Version),
		Currency:    imp.Currency,
		ItemCount:   int(imp.ItemCount),
		SyncStatus:  imp.SyncStatus,
		SyncError:   imp.SyncError.String,
	}
	var err error
	if rec.ModifiedAt, err = parseNullTime(imp.ModifiedAt, timestampLayout); err != nil {
		return ImportRecord{}, err
	}
	if rec.ImportedAt, err = time.Parse(timestampLayout, imp.ImportedAt); err != nil {
		return ImportRecord{}, fmt.Errorf("imported_at %q: %w", imp.ImportedAt, err)
	}
	if rec.SyncedAt, err = parseNullTime(imp.SyncedAt, timestampLayout); err != nil {
		return ImportRecord{}, err
	}
	return rec, nil
}

func nullTime(t time.Time, layout string) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(layout), Valid: true}
}

func parseNullTime(s sql.NullString, layout string) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s.String, err)
	}
	return t, nil
}
