// Package postgres provides the PostgreSQL implementations of the data
// store interfaces in internal/store.
//
// Each store accepts a store.DBTX, so the same implementation runs
// against a *sql.DB or inside a *sql.Tx. Nested documents (product
// variants, menu items, cart lines, checkout snapshots) are stored as
// JSONB columns; the render path always reads whole entities, so there
// is nothing to gain from normalizing them further.
package postgres
