package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/database"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// Schema creates the inventory table. product_id is unique: a product has at
// most one stock record.
const Schema = `
CREATE TABLE IF NOT EXISTS inventory (
	id         BIGSERIAL PRIMARY KEY,
	product_id BIGINT NOT NULL UNIQUE,
	quantity   INT NOT NULL CHECK (quantity >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

var sortColumns = map[string]string{
	"id":        "id",
	"productId": "product_id",
	"quantity":  "quantity",
	"createdAt": "created_at",
}

// Repository defines the persistence operations for inventory records.
type Repository interface {
	Exists(ctx context.Context, productID int64) (bool, error)
	Create(ctx context.Context, record *InventoryRecord) error
	GetByProductID(ctx context.Context, productID int64) (*InventoryRecord, error)
	DeleteByProductID(ctx context.Context, productID int64) (*InventoryRecord, error)
	List(ctx context.Context, req paging.Request) (*paging.Page[InventoryRecord], error)
	BeginTx(ctx context.Context) (Tx, error)
	GetForUpdate(ctx context.Context, tx Tx, productID int64) (*InventoryRecord, error)
	UpdateQuantity(ctx context.Context, tx Tx, record *InventoryRecord) error
}

// Tx is a unit of work started by BeginTx.
type Tx interface {
	Commit() error
	Rollback() error
}

// PostgresInventoryRepository implements Repository on PostgreSQL.
type PostgresInventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates a new PostgresInventoryRepository.
func NewInventoryRepository(db *pgxpool.Pool) Repository {
	return &PostgresInventoryRepository{
		db: db,
	}
}

const recordColumns = `id, product_id, quantity, created_at, updated_at`

func (r *PostgresInventoryRepository) Exists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM inventory WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check inventory: %w", err)
	}
	return exists, nil
}

// Create inserts record and fills in its generated id. A concurrent insert for
// the same product surfaces as AlreadyExists.
func (r *PostgresInventoryRepository) Create(ctx context.Context, record *InventoryRecord) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO inventory (product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, record.ProductID, record.Quantity, record.CreatedAt, record.UpdatedAt).Scan(&record.ID)
	if database.IsUniqueViolation(err) {
		return errors.AlreadyExistsf("inventory for product %d", record.ProductID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert inventory: %w", err)
	}
	return nil
}

func (r *PostgresInventoryRepository) GetByProductID(ctx context.Context, productID int64) (*InventoryRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM inventory WHERE product_id = $1`, productID)
	return scanOne(row, productID)
}

// DeleteByProductID removes the record of productID and returns it.
func (r *PostgresInventoryRepository) DeleteByProductID(ctx context.Context, productID int64) (*InventoryRecord, error) {
	row := r.db.QueryRow(ctx, `DELETE FROM inventory WHERE product_id = $1 RETURNING `+recordColumns, productID)
	return scanOne(row, productID)
}

func (r *PostgresInventoryRepository) List(ctx context.Context, req paging.Request) (*paging.Page[InventoryRecord], error) {
	orderBy, err := req.OrderBy(sortColumns)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count inventory: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+recordColumns+` FROM inventory ORDER BY `+orderBy+` LIMIT $1 OFFSET $2`,
		req.Size, req.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	content, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (InventoryRecord, error) {
		var record InventoryRecord
		err := row.Scan(&record.ID, &record.ProductID, &record.Quantity, &record.CreatedAt, &record.UpdatedAt)
		return record, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	return paging.NewPage(req, content, total), nil
}

// PostgresTx implements Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

// BeginTx starts a new transaction
func (r *PostgresInventoryRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PostgresTx{tx: tx}, nil
}

// GetForUpdate loads the record of productID and locks its row until tx ends.
func (r *PostgresInventoryRepository) GetForUpdate(ctx context.Context, tx Tx, productID int64) (*InventoryRecord, error) {
	pgTx := tx.(*PostgresTx).tx

	row := pgTx.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM inventory
		WHERE product_id = $1
		FOR UPDATE
	`, productID)
	return scanOne(row, productID)
}

func (r *PostgresInventoryRepository) UpdateQuantity(ctx context.Context, tx Tx, record *InventoryRecord) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		UPDATE inventory
		SET quantity = $2,
		    updated_at = $3
		WHERE id = $1
	`, record.ID, record.Quantity, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	return nil
}

func scanOne(row pgx.Row, productID int64) (*InventoryRecord, error) {
	var record InventoryRecord
	err := row.Scan(&record.ID, &record.ProductID, &record.Quantity, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFoundf("inventory for product %d", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return &record, nil
}
