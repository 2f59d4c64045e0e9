package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// PostgresProductStore implements the store.ProductStore interface using
// a PostgreSQL database as the storage backend.
type PostgresProductStore struct {
	db store.DBTX
}

// NewPostgresProductStore creates a new PostgreSQL implementation of the
// ProductStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresProductStore(db store.DBTX) *PostgresProductStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresProductStore{db: db}
}

// Ensure PostgresProductStore implements store.ProductStore interface
var _ store.ProductStore = (*PostgresProductStore)(nil)

const productColumns = `id, store_id, name, description, slug, price, compare_at_price,
	images, variants, category, quantity, status, featured, created_at, updated_at`

// GetByID implements store.ProductStore.GetByID
func (s *PostgresProductStore) GetByID(ctx context.Context, storeID, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND id = $2`
	return scanProduct(s.db.QueryRowContext(ctx, query, storeID, productID))
}

// GetBySlug implements store.ProductStore.GetBySlug
func (s *PostgresProductStore) GetBySlug(ctx context.Context, storeID, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND slug = $2`
	return scanProduct(s.db.QueryRowContext(ctx, query, storeID, slug))
}

// List implements store.ProductStore.List
func (s *PostgresProductStore) List(ctx context.Context, storeID string, filters store.ProductFilters) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND status = 'active'`
	args := []any{storeID}

	if filters.Featured {
		query += ` AND featured = TRUE`
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if filters.CollectionID != "" {
		args = append(args, filters.CollectionID)
		query += fmt.Sprintf(
			` AND id IN (SELECT jsonb_array_elements_text(product_ids) FROM collections WHERE store_id = $1 AND id = $%d)`,
			len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products for store %s: %w", storeID, err)
	}
	defer func() { _ = rows.Close() }()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}
	return products, nil
}

// productScanner covers *sql.Row and *sql.Rows.
type productScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row *sql.Row) (*domain.Product, error) {
	p, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProductRow(row productScanner) (*domain.Product, error) {
	var p domain.Product
	var description, slug, category sql.NullString
	var compareAt decimal.NullDecimal
	var images, variants []byte

	err := row.Scan(
		&p.ID,
		&p.StoreID,
		&p.Name,
		&description,
		&slug,
		&p.Price,
		&compareAt,
		&images,
		&variants,
		&category,
		&p.Quantity,
		&p.Status,
		&p.Featured,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning product row: %w", err)
	}

	p.Description = description.String
	p.Slug = slug.String
	p.Category = category.String
	if compareAt.Valid {
		p.CompareAtPrice = &compareAt.Decimal
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("decoding product images: %w", err)
		}
	}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			return nil, fmt.Errorf("decoding product variants: %w", err)
		}
	}
	return &p, nil
}
