// Package client is the Go SDK for the API. Read endpoints go through the
// shared cache under the standard TTL policy (role 10m, habit list 1m,
// wallet 24h) and mutations invalidate the affected prefix before
// returning, so a client never serves itself a read it just made stale.
//
// Every call takes the bearer token explicitly. There is no ambient token
// lookup: the token doubles as the cache key suffix and as the correlation
// token for payment flows, so the caller must always know which identity a
// call runs under.
package client
