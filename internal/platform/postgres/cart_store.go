package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// PostgresCartStore implements the store.CartStore interface using a
// PostgreSQL database as the storage backend. Cart lines are stored as a
// JSONB document on the cart row; the render and cart mutation paths
// always read and write the cart as a whole.
type PostgresCartStore struct {
	db store.DBTX
}

// NewPostgresCartStore creates a new PostgreSQL implementation of the
// CartStore interface. It accepts a database connection or transaction
// that should be initialized by the caller.
func NewPostgresCartStore(db store.DBTX) *PostgresCartStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresCartStore{db: db}
}

// Ensure PostgresCartStore implements store.CartStore interface
var _ store.CartStore = (*PostgresCartStore)(nil)

// WithTx implements store.CartStore.WithTx
// It returns a new CartStore instance that uses the provided transaction.
// This allows cart operations to be part of a larger transaction managed
// by store.RunInTransaction.
func (s *PostgresCartStore) WithTx(tx *sql.Tx) store.CartStore {
	return &PostgresCartStore{db: tx}
}

const cartColumns = `id, store_id, session_id, items, item_count,
	total_amount, currency, created_at, updated_at, expires_at`

// GetBySession implements store.CartStore.GetBySession
func (s *PostgresCartStore) GetBySession(ctx context.Context, storeID, sessionID string) (*domain.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE store_id = $1 AND session_id = $2`

	var c domain.Cart
	var items []byte
	err := s.db.QueryRowContext(ctx, query, storeID, sessionID).Scan(
		&c.ID,
		&c.StoreID,
		&c.SessionID,
		&items,
		&c.ItemCount,
		&c.TotalAmount,
		&c.Currency,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCartNotFound
		}
		return nil, fmt.Errorf("scanning cart row: %w", err)
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, fmt.Errorf("decoding cart items: %w", err)
		}
	}
	return &c, nil
}

// Create implements store.CartStore.Create
func (s *PostgresCartStore) Create(ctx context.Context, cart *domain.Cart) error {
	if err := cart.Validate(); err != nil {
		return fmt.Errorf("invalid cart: %w", err)
	}

	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("encoding cart items: %w", err)
	}

	query := `INSERT INTO carts (id, store_id, session_id, items, item_count,
			total_amount, currency, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = s.db.ExecContext(ctx, query,
		cart.ID, cart.StoreID, cart.SessionID, items, cart.ItemCount,
		cart.TotalAmount, cart.Currency, cart.CreatedAt, cart.UpdatedAt, cart.ExpiresAt)
	if err != nil {
		return fmt.Errorf("inserting cart: %w", err)
	}
	return nil
}

// Update implements store.CartStore.Update
func (s *PostgresCartStore) Update(ctx context.Context, cart *domain.Cart) error {
	if err := cart.Validate(); err != nil {
		return fmt.Errorf("invalid cart: %w", err)
	}

	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("encoding cart items: %w", err)
	}

	query := `UPDATE carts
		SET items = $2, item_count = $3, total_amount = $4,
			updated_at = $5, expires_at = $6
		WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query,
		cart.ID, items, cart.ItemCount, cart.TotalAmount, cart.UpdatedAt, cart.ExpiresAt)
	if err != nil {
		return fmt.Errorf("updating cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrCartNotFound
	}
	return nil
}

// Delete implements store.CartStore.Delete
func (s *PostgresCartStore) Delete(ctx context.Context, cartID uuid.UUID) error {
	query := `DELETE FROM carts WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, cartID)
	if err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrCartNotFound
	}
	return nil
}
