package products

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// Schema creates the products table.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	price      NUMERIC(20,5) NOT NULL CHECK (price >= 0),
	quantity   INT NOT NULL CHECK (quantity >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// sortColumns whitelists the sort keys accepted by List.
var sortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"createdAt": "created_at",
}

// Repository defines the persistence operations for products.
type Repository interface {
	Create(ctx context.Context, product *Product) error
	Get(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req paging.Request) (*paging.Page[Product], error)
}

// PostgresProductRepository implements Repository on PostgreSQL.
type PostgresProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository creates a new PostgresProductRepository.
func NewProductRepository(db *pgxpool.Pool) Repository {
	return &PostgresProductRepository{
		db: db,
	}
}

const productColumns = `id, name, price::text, quantity, created_at, updated_at`

// Create inserts product and fills in its generated id.
func (r *PostgresProductRepository) Create(ctx context.Context, product *Product) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, price, quantity, created_at, updated_at)
		VALUES ($1, $2::numeric, $3, $4, $5)
		RETURNING id
	`, product.Name, product.Price.String(), product.Quantity, product.CreatedAt, product.UpdatedAt).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Get loads one product by id.
func (r *PostgresProductRepository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFoundf("product %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Update persists the mutable attributes of product.
func (r *PostgresProductRepository) Update(ctx context.Context, product *Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, price = $3::numeric, quantity = $4, updated_at = $5
		WHERE id = $1
	`, product.ID, product.Name, product.Price.String(), product.Quantity, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("product %d", product.ID)
	}
	return nil
}

// Delete removes one product by id.
func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("product %d", id)
	}
	return nil
}

// List returns one page of products in the requested order.
func (r *PostgresProductRepository) List(ctx context.Context, req paging.Request) (*paging.Page[Product], error) {
	orderBy, err := req.OrderBy(sortColumns)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY `+orderBy+` LIMIT $1 OFFSET $2`,
		req.Size, req.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var content []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		content = append(content, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return paging.NewPage(req, content, total), nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		product Product
		price   string
	)
	if err := row.Scan(&product.ID, &product.Name, &price, &product.Quantity, &product.CreatedAt, &product.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	product.Price = parsed
	return &product, nil
}
