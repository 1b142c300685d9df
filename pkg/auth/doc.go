// Package auth verifies the HS256 access tokens issued by the identity
// provider (Supabase) and exposes the claims the rest of the service needs:
// the subject (user ID), email, and the display name carried in the OAuth
// user metadata.
//
// The same access token doubles as the correlation token threaded through
// payment-provider metadata, so pkg/billing uses this package to resolve a
// webhook event back to a user. A token that fails verification identifies
// nobody; it is treated exactly like an absent token, never as an error that
// could crash a webhook delivery.
package auth
