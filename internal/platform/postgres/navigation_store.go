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

// PostgresNavigationStore implements the store.NavigationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNavigationStore struct {
	db store.DBTX
}

// NewPostgresNavigationStore creates a new PostgreSQL implementation of the
// NavigationStore interface.
func NewPostgresNavigationStore(db store.DBTX) *PostgresNavigationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresNavigationStore{db: db}
}

// Ensure PostgresNavigationStore implements store.NavigationStore interface
var _ store.NavigationStore = (*PostgresNavigationStore)(nil)

const menuColumns = `id, store_id, name, handle, is_main, is_active,
	items, created_at, updated_at`

// ListByStore implements store.NavigationStore.ListByStore
func (s *PostgresNavigationStore) ListByStore(ctx context.Context, storeID string) ([]*domain.NavigationMenu, error) {
	query := `SELECT ` + menuColumns + ` FROM navigation_menus
		WHERE store_id = $1 AND is_active = TRUE
		ORDER BY is_main DESC, handle ASC`

	rows, err := s.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("querying navigation menus for store %s: %w", storeID, err)
	}
	defer func() { _ = rows.Close() }()

	var menus []*domain.NavigationMenu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating navigation menu rows: %w", err)
	}
	return menus, nil
}

// GetByHandle implements store.NavigationStore.GetByHandle
func (s *PostgresNavigationStore) GetByHandle(ctx context.Context, storeID, handle string) (*domain.NavigationMenu, error) {
	query := `SELECT ` + menuColumns + ` FROM navigation_menus
		WHERE store_id = $1 AND handle = $2 AND is_active = TRUE`
	m, err := scanMenu(s.db.QueryRowContext(ctx, query, storeID, handle))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMenuNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanMenu(row productScanner) (*domain.NavigationMenu, error) {
	var m domain.NavigationMenu
	var items []byte

	err := row.Scan(
		&m.ID,
		&m.StoreID,
		&m.Name,
		&m.Handle,
		&m.IsMain,
		&m.IsActive,
		&items,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning navigation menu row: %w", err)
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &m.Items); err != nil {
			return nil, fmt.Errorf("decoding navigation menu items: %w", err)
		}
	}
	return &m, nil
}
