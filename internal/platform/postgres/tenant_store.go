package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// PostgresTenantStore implements the store.TenantStore interface using
// a PostgreSQL database as the storage backend.
type PostgresTenantStore struct {
	db store.DBTX
}

// NewPostgresTenantStore creates a new PostgreSQL implementation of the
// TenantStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresTenantStore(db store.DBTX) *PostgresTenantStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresTenantStore{db: db}
}

// Ensure PostgresTenantStore implements store.TenantStore interface
var _ store.TenantStore = (*PostgresTenantStore)(nil)

const storeColumns = `store_id, name, description, custom_domain, subdomain, currency,
	locale, theme, contact_email, contact_phone, address, logo_url, banner_url,
	favicon_url, active, created_at, updated_at`

// GetByID implements store.TenantStore.GetByID
func (s *PostgresTenantStore) GetByID(ctx context.Context, storeID string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE store_id = $1`
	return s.scanStore(s.db.QueryRowContext(ctx, query, storeID))
}

// GetByDomain implements store.TenantStore.GetByDomain
func (s *PostgresTenantStore) GetByDomain(ctx context.Context, d string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE custom_domain = $1 OR subdomain = $1`
	return s.scanStore(s.db.QueryRowContext(ctx, query, d))
}

func (s *PostgresTenantStore) scanStore(row *sql.Row) (*domain.Store, error) {
	var st domain.Store
	var description, customDomain, subdomain, locale sql.NullString
	var contactEmail, contactPhone, address sql.NullString
	var logoURL, bannerURL, faviconURL sql.NullString

	err := row.Scan(
		&st.StoreID,
		&st.Name,
		&description,
		&customDomain,
		&subdomain,
		&st.Currency,
		&locale,
		&st.Theme,
		&contactEmail,
		&contactPhone,
		&address,
		&logoURL,
		&bannerURL,
		&faviconURL,
		&st.Active,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStoreNotFound
		}
		return nil, fmt.Errorf("scanning store row: %w", err)
	}

	st.Description = description.String
	st.CustomDomain = customDomain.String
	st.Subdomain = subdomain.String
	st.Locale = locale.String
	st.ContactEmail = contactEmail.String
	st.ContactPhone = contactPhone.String
	st.Address = address.String
	st.LogoURL = logoURL.String
	st.BannerURL = bannerURL.String
	st.FaviconURL = faviconURL.String
	return &st, nil
}
