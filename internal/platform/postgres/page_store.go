package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// PostgresPageStore implements the store.PageStore interface using a
// PostgreSQL database as the storage backend.
type PostgresPageStore struct {
	db store.DBTX
}

// NewPostgresPageStore creates a new PostgreSQL implementation of the
// PageStore interface.
func NewPostgresPageStore(db store.DBTX) *PostgresPageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresPageStore{db: db}
}

// Ensure PostgresPageStore implements store.PageStore interface
var _ store.PageStore = (*PostgresPageStore)(nil)

const pageColumns = `id, store_id, title, content, slug, meta_description,
	is_visible, created_at, updated_at`

// GetBySlug implements store.PageStore.GetBySlug
func (s *PostgresPageStore) GetBySlug(ctx context.Context, storeID, slug string) (*domain.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages
		WHERE store_id = $1 AND slug = $2 AND is_visible = TRUE`
	p, err := scanPage(s.db.QueryRowContext(ctx, query, storeID, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPageNotFound
		}
		return nil, err
	}
	return p, nil
}

// List implements store.PageStore.List
func (s *PostgresPageStore) List(ctx context.Context, storeID string) ([]*domain.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages
		WHERE store_id = $1 AND is_visible = TRUE
		ORDER BY title ASC`

	rows, err := s.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("querying pages for store %s: %w", storeID, err)
	}
	defer func() { _ = rows.Close() }()

	var pages []*domain.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating page rows: %w", err)
	}
	return pages, nil
}

func scanPage(row productScanner) (*domain.Page, error) {
	var p domain.Page
	var content, slug, metaDescription sql.NullString

	err := row.Scan(
		&p.ID,
		&p.StoreID,
		&p.Title,
		&content,
		&slug,
		&metaDescription,
		&p.IsVisible,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning page row: %w", err)
	}

	p.Content = content.String
	p.Slug = slug.String
	p.MetaDescription = metaDescription.String
	return &p, nil
}
