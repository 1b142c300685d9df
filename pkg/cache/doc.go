// Package cache provides a short-TTL read-through cache used to avoid
// redundant upstream reads of role, habit, and wallet data.
//
// The cache is deliberately best-effort: a miss (including one caused by a
// storage error) only costs an extra upstream call, so the interface exposes
// no errors. Expiry is lazy: an entry past its TTL is evicted on the read
// that observes it; there is no background sweeper. Invalidation is by key
// prefix, matching how entries are grouped per credential ("user_role_",
// "habits_", "wallet_").
//
// Two implementations are provided: an in-process memory store and a Redis
// store for deployments with more than one instance.
package cache
