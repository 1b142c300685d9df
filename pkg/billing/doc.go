// Package billing converges a user's role to pro in response to payment
// confirmation signals, no matter which of the independent trigger paths
// delivers the signal first: the provider webhook, the browser checkout
// callback, or the direct confirm-subscription call.
//
// Correctness rests on two properties rather than on ordering or locking:
// the reconciler short-circuits when the subject is already pro, and the
// role store only ever performs the free-to-pro transition. Duplicate or
// racing deliveries therefore collapse into at most one effective upgrade.
//
// Events are linked back to a user through a correlation token, the user's
// own access token, threaded through the payment provider's metadata at
// checkout time. When an event arrives without one, the reconciler falls
// back to the subscription's and then the customer's metadata before giving
// up with a logged warning (a terminal, non-retryable outcome: redelivering
// an unattributable event would change nothing).
package billing
