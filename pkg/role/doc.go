// Package role models the subscription tier of a user and the monotonic
// upgrade policy between tiers.
//
// A user is either on the free or the pro tier, and the tier is the sole
// determinant of entitlement (how many habits may exist). Transitions are
// strictly monotonic: free upgrades to pro, nothing ever downgrades through
// this package. Repeated upgrade requests are idempotent no-ops, which is
// what makes the payment-event reconciliation in pkg/billing convergent
// regardless of delivery order or duplication.
//
// Example:
//
//	user, changed := role.ApplyUpgrade(user, role.RolePro)
//	if changed {
//		// persist and invalidate cached role reads
//	}
package role
