package billing

// EventKind is the closed set of payment signals the reconciler understands.
// Every provider event is normalized into one of these before any state is
// touched; there is exactly one reconciliation function, not per-type
// handling.
type EventKind string

const (
	// EventCheckoutCompleted is a finished hosted-checkout session in
	// subscription mode.
	EventCheckoutCompleted EventKind = "checkout_completed"

	// EventSubscriptionCreated is the provider confirming a new subscription
	// object.
	EventSubscriptionCreated EventKind = "subscription_created"

	// EventInvoicePaid is a paid subscription invoice, including renewals.
	EventInvoicePaid EventKind = "invoice_paid"

	// EventSetupIntentSucceeded is a stored payment method; it precedes the
	// subscription itself when the browser flow confirms card setup first.
	EventSetupIntentSucceeded EventKind = "setup_intent_succeeded"

	// EventDirectRoleUpdate is the in-band trigger from the
	// confirm-subscription endpoint, racing the webhook for the same
	// purchase.
	EventDirectRoleUpdate EventKind = "direct_role_update"
)

// Event is a normalized payment signal. Every field except Kind is
// best-effort: the token may be absent or stale, and the customer and
// subscription IDs depend on which provider object carried the event.
type Event struct {
	Kind EventKind

	// Token is the correlation token from the provider metadata: the
	// user's access token captured at checkout time. May be empty.
	Token string

	// CustomerID is the provider's customer identifier, used for the
	// metadata fallback lookup when Token is empty. May be empty.
	CustomerID string

	// SubscriptionID is the provider's subscription identifier, consulted
	// before the customer in the fallback chain. May be empty.
	SubscriptionID string

	// ProviderEvent is the provider's original event name, kept for logs.
	ProviderEvent string
}

// Outcome classifies a finished reconciliation. All three values are
// successes from the transport's point of view: only an error return should
// cause a webhook redelivery.
type Outcome string

const (
	// OutcomeUpgraded means the subject's role actually transitioned to pro.
	OutcomeUpgraded Outcome = "upgraded"

	// OutcomeAlreadyPro means the subject already held the target role and
	// no upgrade call was made.
	OutcomeAlreadyPro Outcome = "already_pro"

	// OutcomeNoToken means no subject could be identified from the event or
	// the metadata fallbacks. Terminal and non-fatal: it is logged, nothing
	// changes, and redelivery is not requested.
	OutcomeNoToken Outcome = "no_correlation_token"
)
