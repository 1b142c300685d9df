// Package storage implements the PostgreSQL stores behind the role, habit,
// and wallet packages. Queries scope every row by user ID so a handler bug
// can never read across accounts.
package storage
