package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// PostgresCollectionStore implements the store.CollectionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCollectionStore struct {
	db store.DBTX
}

// NewPostgresCollectionStore creates a new PostgreSQL implementation of the
// CollectionStore interface. It accepts a database connection or transaction
// that should be initialized by the caller.
func NewPostgresCollectionStore(db store.DBTX) *PostgresCollectionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresCollectionStore{db: db}
}

// Ensure PostgresCollectionStore implements store.CollectionStore interface
var _ store.CollectionStore = (*PostgresCollectionStore)(nil)

const collectionColumns = `id, store_id, title, description, slug, image_url,
	product_ids, is_active, sort_order, created_at, updated_at`

// GetByID implements store.CollectionStore.GetByID
func (s *PostgresCollectionStore) GetByID(ctx context.Context, storeID, collectionID string) (*domain.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE store_id = $1 AND id = $2`
	c, err := scanCollection(s.db.QueryRowContext(ctx, query, storeID, collectionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCollectionNotFound
		}
		return nil, err
	}
	return c, nil
}

// List implements store.CollectionStore.List
func (s *PostgresCollectionStore) List(ctx context.Context, storeID string) ([]*domain.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections
		WHERE store_id = $1 AND is_active = TRUE
		ORDER BY sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("querying collections for store %s: %w", storeID, err)
	}
	defer func() { _ = rows.Close() }()

	var collections []*domain.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection rows: %w", err)
	}
	return collections, nil
}

func scanCollection(row productScanner) (*domain.Collection, error) {
	var c domain.Collection
	var description, slug, imageURL sql.NullString
	var productIDs []byte

	err := row.Scan(
		&c.ID,
		&c.StoreID,
		&c.Title,
		&description,
		&slug,
		&imageURL,
		&productIDs,
		&c.IsActive,
		&c.SortOrder,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning collection row: %w", err)
	}

	c.Description = description.String
	c.Slug = slug.String
	c.ImageURL = imageURL.String
	if len(productIDs) > 0 {
		if err := json.Unmarshal(productIDs, &c.ProductIDs); err != nil {
			return nil, fmt.Errorf("decoding collection product IDs: %w", err)
		}
	}
	return &c, nil
}
