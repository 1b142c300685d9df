package cache

// Key prefixes for the cached read paths. Entries are keyed by prefix plus
// a per-caller suffix; invalidation targets the whole prefix because the
// writer usually cannot reconstruct the suffix a reader cached under.
const (
	RolePrefix   = "user_role_"
	HabitsPrefix = "habits_"
	WalletPrefix = "wallet_"
)
