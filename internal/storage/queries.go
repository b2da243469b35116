package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Import struct {
	ID          int64
	RunID       string
	Source      string
	Description string
	Version     int64
	ModifiedAt  sql.NullString
	Currency    string
	ItemCount   int64
	ImportedAt  string
	SyncStatus  string
	SyncedAt    sql.NullString
	SyncError   sql.NullString
}

type CollectionItem struct {
	ImportID      int64
	Position      int64
	Category      string
	Brand         string
	ItemNumber    string
	Description   string
	Scale         string
	PowerMethod   string
	Epoch         string
	DeliveryDate  string
	Count         int64
	Shop          string
	PurchasedAt   sql.NullString
	PriceAmount   string
	PriceCurrency string
	ClassName     string
	RoadNumber    string
	Series        string
	Livery        string
	Control       string
	DccInterface  string
}

const importColumns = `id, run_id, source, description, version, modified_at, currency, item_count,
    imported_at, sync_status, synced_at, sync_error`

func scanImport(row interface{ Scan(...interface{}) error }) (Import, error) {
	var i Import
	err := row.Scan(
		&i.ID,
		&i.RunID,
		&i.Source,
		&i.Description,
		&i.Version,
		&i.ModifiedAt,
		&i.Currency,
		&i.ItemCount,
		&i.ImportedAt,
		&i.SyncStatus,
		&i.SyncedAt,
		&i.SyncError,
	)
	return i, err
}

const createImport = `-- name: CreateImport :one
INSERT INTO imports (run_id, source, description, version, modified_at, currency, item_count, imported_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + importColumns

type CreateImportParams struct {
	RunID       string
	Source      string
	Description string
	Version     int64
	ModifiedAt  sql.NullString
	Currency    string
	ItemCount   int64
	ImportedAt  string
}

func (q *Queries) CreateImport(ctx context.Context, arg CreateImportParams) (Import, error) {
	row := q.db.QueryRowContext(ctx, createImport,
		arg.RunID,
		arg.Source,
		arg.Description,
		arg.Version,
		arg.ModifiedAt,
		arg.Currency,
		arg.ItemCount,
		arg.ImportedAt,
	)
	return scanImport(row)
}

const createCollectionItem = `-- name: CreateCollectionItem :exec
INSERT INTO collection_items (
    import_id, position, category, brand, item_number, description, scale, power_method,
    epoch, delivery_date, count, shop, purchased_at, price_amount, price_currency,
    class_name, road_number, series, livery, control, dcc_interface
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateCollectionItem(ctx context.Context, arg CollectionItem) error {
	_, err := q.db.ExecContext(ctx, createCollectionItem,
		arg.ImportID,
		arg.Position,
		arg.Category,
		arg.Brand,
		arg.ItemNumber,
		arg.Description,
		arg.Scale,
		arg.PowerMethod,
		arg.Epoch,
		arg.DeliveryDate,
		arg.Count,
		arg.Shop,
		arg.PurchasedAt,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.ClassName,
		arg.RoadNumber,
		arg.Series,
		arg.Livery,
		arg.Control,
		arg.DccInterface,
	)
	return err
}

const getImport = `-- name: GetImport :one
SELECT ` + importColumns + ` FROM imports WHERE id = ?`

func (q *Queries) GetImport(ctx context.Context, id int64) (Import, error) {
	return scanImport(q.db.QueryRowContext(ctx, getImport, id))
}

const getLatestImport = `-- name: GetLatestImport :one
SELECT ` + importColumns + ` FROM imports ORDER BY id DESC LIMIT 1`

func (q *Queries) GetLatestImport(ctx context.Context) (Import, error) {
	return scanImport(q.db.QueryRowContext(ctx, getLatestImport))
}

const getPendingSyncImports = `-- name: GetPendingSyncImports :many
SELECT ` + importColumns + ` FROM imports
WHERE sync_status = 'pending'
ORDER BY id DESC
LIMIT ?`

func (q *Queries) GetPendingSyncImports(ctx context.Context, limit int64) ([]Import, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncImports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Import
	for rows.Next() {
		i, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCollectionItems = `-- name: GetCollectionItems :many
SELECT import_id, position, category, brand, item_number, description, scale, power_method,
    epoch, delivery_date, count, shop, purchased_at, price_amount, price_currency,
    class_name, road_number, series, livery, control, dcc_interface
FROM collection_items
WHERE import_id = ?
ORDER BY position ASC`

func (q *Queries) GetCollectionItems(ctx context.Context, importID int64) ([]CollectionItem, error) {
	rows, err := q.db.QueryContext(ctx, getCollectionItems, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CollectionItem
	for rows.Next() {
		var i CollectionItem
		if err := rows.Scan(
			&i.ImportID,
			&i.Position,
			&i.Category,
			&i.Brand,
			&i.ItemNumber,
			&i.Description,
			&i.Scale,
			&i.PowerMethod,
			&i.Epoch,
			&i.DeliveryDate,
			&i.Count,
			&i.Shop,
			&i.PurchasedAt,
			&i.PriceAmount,
			&i.PriceCurrency,
			&i.ClassName,
			&i.RoadNumber,
			&i.Series,
			&i.Livery,
			&i.Control,
			&i.DccInterface,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markImportSynced = `-- name: MarkImportSynced :execrows
UPDATE imports SET sync_status = 'synced', synced_at = ?, sync_error = NULL WHERE id = ?`

func (q *Queries) MarkImportSynced(ctx context.Context, syncedAt string, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markImportSynced, syncedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markImportSyncError = `-- name: MarkImportSyncError :execrows
UPDATE imports SET sync_status = 'error', sync_error = ? WHERE id = ?`

func (q *Queries) MarkImportSyncError(ctx context.Context, reason string, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markImportSyncError, reason, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countImports = `-- name: CountImports :one
SELECT COUNT(*) FROM imports`

func (q *Queries) CountImports(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countImports).Scan(&n)
	return n, err
}
