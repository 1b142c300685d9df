package role

import "context"

// Store is the persistence boundary for user profiles. Implementations must
// make Upgrade monotonic at the storage level (free to pro only) so that
// concurrent reconciliation paths converge to at most one effective
// transition; see pkg/billing.
type Store interface {
	// Get retrieves a user by ID. Returns ErrUserNotFound when no profile
	// exists for the ID.
	Get(ctx context.Context, userID string) (User, error)

	// Upgrade transitions the user to pro, recording the payment provider's
	// customer ID when known. Upgrading a user who is already pro is a
	// successful no-op returning the current profile.
	Upgrade(ctx context.Context, userID, customerID string) (User, error)
}
