// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// startup retries, goose schema migrations from an embedded filesystem, a
// health probe for the /health endpoint, and error classification helpers
// shared by the stores.
package pg
