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

// PostgresCheckoutStore implements the store.CheckoutStore interface using
// a PostgreSQL database as the storage backend. The items snapshot and the
// customer and address documents are stored as JSONB columns; they are
// frozen at checkout start and only the customer-facing fields mutate.
type PostgresCheckoutStore struct {
	db store.DBTX
}

// NewPostgresCheckoutStore creates a new PostgreSQL implementation of the
// CheckoutStore interface.
func NewPostgresCheckoutStore(db store.DBTX) *PostgresCheckoutStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresCheckoutStore{db: db}
}

// Ensure PostgresCheckoutStore implements store.CheckoutStore interface
var _ store.CheckoutStore = (*PostgresCheckoutStore)(nil)

// WithTx implements store.CheckoutStore.WithTx
// It returns a new CheckoutStore instance that uses the provided
// transaction, so a checkout write can be atomic with the cart delete
// that accompanies completion.
func (s *PostgresCheckoutStore) WithTx(tx *sql.Tx) store.CheckoutStore {
	return &PostgresCheckoutStore{db: tx}
}

const checkoutColumns = `id, token, store_id, cart_id, session_id, status,
	items_snapshot, item_count, subtotal, shipping_cost, tax_amount,
	total_amount, currency, customer_info, shipping_address,
	billing_address, notes, expires_at, created_at, updated_at`

// Create implements store.CheckoutStore.Create
func (s *PostgresCheckoutStore) Create(ctx context.Context, session *domain.CheckoutSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid checkout session: %w", err)
	}

	docs, err := marshalCheckoutDocs(session)
	if err != nil {
		return err
	}

	query := `INSERT INTO checkout_sessions (` + checkoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err = s.db.ExecContext(ctx, query,
		session.ID, session.Token, session.StoreID, session.CartID,
		nullableString(session.SessionID), session.Status,
		docs.snapshot, session.ItemCount, session.Subtotal, session.ShippingCost,
		session.TaxAmount, session.TotalAmount, session.Currency,
		docs.customer, docs.shipping, docs.billing,
		nullableString(session.Notes), session.ExpiresAt, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTokenExists
		}
		return fmt.Errorf("inserting checkout session: %w", err)
	}
	return nil
}

// GetByToken implements store.CheckoutStore.GetByToken
func (s *PostgresCheckoutStore) GetByToken(ctx context.Context, token string) (*domain.CheckoutSession, error) {
	query := `SELECT ` + checkoutColumns + ` FROM checkout_sessions WHERE token = $1`

	var cs domain.CheckoutSession
	var sessionID, notes sql.NullString
	var snapshot, customer, shipping, billing []byte

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&cs.ID,
		&cs.Token,
		&cs.StoreID,
		&cs.CartID,
		&sessionID,
		&cs.Status,
		&snapshot,
		&cs.ItemCount,
		&cs.Subtotal,
		&cs.ShippingCost,
		&cs.TaxAmount,
		&cs.TotalAmount,
		&cs.Currency,
		&customer,
		&shipping,
		&billing,
		&notes,
		&cs.ExpiresAt,
		&cs.CreatedAt,
		&cs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCheckoutNotFound
		}
		return nil, fmt.Errorf("scanning checkout session row: %w", err)
	}

	cs.SessionID = sessionID.String
	cs.Notes = notes.String
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &cs.ItemsSnapshot); err != nil {
			return nil, fmt.Errorf("decoding checkout items snapshot: %w", err)
		}
	}
	if len(customer) > 0 {
		if err := json.Unmarshal(customer, &cs.CustomerInfo); err != nil {
			return nil, fmt.Errorf("decoding checkout customer info: %w", err)
		}
	}
	if len(shipping) > 0 {
		if err := json.Unmarshal(shipping, &cs.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decoding checkout shipping address: %w", err)
		}
	}
	if len(billing) > 0 {
		if err := json.Unmarshal(billing, &cs.BillingAddress); err != nil {
			return nil, fmt.Errorf("decoding checkout billing address: %w", err)
		}
	}
	return &cs, nil
}

// Update implements store.CheckoutStore.Update
func (s *PostgresCheckoutStore) Update(ctx context.Context, session *domain.CheckoutSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid checkout session: %w", err)
	}

	docs, err := marshalCheckoutDocs(session)
	if err != nil {
		return err
	}

	query := `UPDATE checkout_sessions
		SET status = $2, shipping_cost = $3, tax_amount = $4, total_amount = $5,
			customer_info = $6, shipping_address = $7, billing_address = $8,
			notes = $9, updated_at = $10
		WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query,
		session.ID, session.Status, session.ShippingCost, session.TaxAmount,
		session.TotalAmount, docs.customer, docs.shipping, docs.billing,
		nullableString(session.Notes), session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating checkout session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrCheckoutNotFound
	}
	return nil
}

// checkoutDocs holds the JSONB-encoded documents of a checkout session.
// Nil slices insert SQL NULL for absent optional documents.
type checkoutDocs struct {
	snapshot []byte
	customer []byte
	shipping []byte
	billing  []byte
}

func marshalCheckoutDocs(session *domain.CheckoutSession) (checkoutDocs, error) {
	var docs checkoutDocs
	var err error

	docs.snapshot, err = json.Marshal(session.ItemsSnapshot)
	if err != nil {
		return docs, fmt.Errorf("encoding checkout items snapshot: %w", err)
	}
	if session.CustomerInfo != nil {
		docs.customer, err = json.Marshal(session.CustomerInfo)
		if err != nil {
			return docs, fmt.Errorf("encoding checkout customer info: %w", err)
		}
	}
	if session.ShippingAddress != nil {
		docs.shipping, err = json.Marshal(session.ShippingAddress)
		if err != nil {
			return docs, fmt.Errorf("encoding checkout shipping address: %w", err)
		}
	}
	if session.BillingAddress != nil {
		docs.billing, err = json.Marshal(session.BillingAddress)
		if err != nil {
			return docs, fmt.Errorf("encoding checkout billing address: %w", err)
		}
	}
	return docs, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
