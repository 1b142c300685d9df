package billing

import "context"

// Provider is the payment-provider boundary the reconciler depends on. It
// is intentionally narrow: webhook normalization plus the two metadata
// lookups used to recover a correlation token.
type Provider interface {
	// ParseWebhook verifies the payload signature against the shared
	// webhook secret and normalizes the event. Returns
	// ErrSignatureVerification when the signature check fails and
	// ErrUnsupportedEvent for event types the service deliberately skips.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (Event, error)

	// SubscriptionToken returns the correlation token stored in the
	// subscription's metadata, or empty when none is present.
	SubscriptionToken(ctx context.Context, subscriptionID string) (string, error)

	// CustomerToken returns the correlation token stored in the customer's
	// metadata, or empty when none is present.
	CustomerToken(ctx context.Context, customerID string) (string, error)
}

// TokenResolver resolves a correlation token to the subject it identifies.
// *auth.Verifier satisfies this; tests substitute a table lookup.
type TokenResolver interface {
	Subject(token string) (string, error)
}
