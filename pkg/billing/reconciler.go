package billing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aurahabits/aura/pkg/cache"
	"github.com/aurahabits/aura/pkg/role"
)

// RoleCachePrefix groups cached role reads. A successful upgrade invalidates
// the whole prefix: the token suffix under which a client cached the stale
// role is not recoverable from the event.
const RoleCachePrefix = cache.RolePrefix

// Reconciler applies subscription events to the role store. One instance
// serves all trigger paths; it keeps no per-invocation state, so a failure
// on one path never blocks a later attempt on another.
type Reconciler struct {
	users    role.Store
	tokens   TokenResolver
	provider Provider
	cache    cache.Cache
	log      *slog.Logger
}

// ReconcilerOption configures optional reconciler collaborators.
type ReconcilerOption func(*Reconciler)

// WithProvider enables the metadata fallback lookups for events that arrive
// without a correlation token.
func WithProvider(p Provider) ReconcilerOption {
	return func(r *Reconciler) { r.provider = p }
}

// WithCache registers the cache whose role entries are invalidated after an
// effective upgrade.
func WithCache(c cache.Cache) ReconcilerOption {
	return func(r *Reconciler) { r.cache = c }
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReconciler creates a reconciler over the given role store and token
// resolver. Both are required; panics otherwise to fail fast at wiring time.
func NewReconciler(users role.Store, tokens TokenResolver, opts ...ReconcilerOption) *Reconciler {
	if users == nil {
		panic("billing: role store is required")
	}
	if tokens == nil {
		panic("billing: token resolver is required")
	}

	r := &Reconciler{
		users:  users,
		tokens: tokens,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile converges the event's subject to the pro role.
//
// The sequence is fixed: identify the subject (event token, then
// subscription metadata, then customer metadata), short-circuit when the
// subject is already pro, otherwise upgrade through the store and
// invalidate cached role reads. An unidentifiable subject is a warning
// outcome, not an error, since redelivery would not help. A store failure is
// returned as ErrUpstreamUnavailable so the transport (webhook 5xx, user
// retry) decides on redelivery; the reconciler itself never retries.
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) (Outcome, error) {
	subject := r.resolveSubject(ctx, ev)
	if subject == "" {
		r.log.WarnContext(ctx, "subscription event has no usable correlation token",
			"event", ev.Kind, "provider_event", ev.ProviderEvent, "customer_id", ev.CustomerID)
		return OutcomeNoToken, nil
	}

	user, err := r.users.Get(ctx, subject)
	switch {
	case err == nil:
		if user.CurrentRole() == role.RolePro {
			r.log.InfoContext(ctx, "subject already pro, skipping upgrade",
				"event", ev.Kind, "user_id", subject)
			return OutcomeAlreadyPro, nil
		}
	case errors.Is(err, role.ErrUserNotFound):
		// First contact through a payment event: the store upserts the
		// profile during Upgrade.
	default:
		return "", errors.Join(ErrUpstreamUnavailable, err)
	}

	if _, err := r.users.Upgrade(ctx, subject, ev.CustomerID); err != nil {
		return "", errors.Join(ErrUpstreamUnavailable, err)
	}

	if r.cache != nil {
		r.cache.Invalidate(ctx, RoleCachePrefix)
	}

	r.log.InfoContext(ctx, "user upgraded to pro",
		"event", ev.Kind, "user_id", subject, "customer_id", ev.CustomerID)
	return OutcomeUpgraded, nil
}

// resolveSubject walks the token sources in order and returns the first one
// that verifies. Lookup failures are logged and skipped: a broken fallback
// source must not fail the whole reconciliation when a later source could
// still identify the subject.
func (r *Reconciler) resolveSubject(ctx context.Context, ev Event) string {
	if subject := r.subjectFromToken(ctx, ev.Token, "event metadata"); subject != "" {
		return subject
	}

	if r.provider == nil {
		return ""
	}

	if ev.SubscriptionID != "" {
		token, err := r.provider.SubscriptionToken(ctx, ev.SubscriptionID)
		if err != nil {
			r.log.WarnContext(ctx, "subscription metadata lookup failed",
				"subscription_id", ev.SubscriptionID, "error", err)
		} else if subject := r.subjectFromToken(ctx, token, "subscription metadata"); subject != "" {
			return subject
		}
	}

	if ev.CustomerID != "" {
		token, err := r.provider.CustomerToken(ctx, ev.CustomerID)
		if err != nil {
			r.log.WarnContext(ctx, "customer metadata lookup failed",
				"customer_id", ev.CustomerID, "error", err)
		} else if subject := r.subjectFromToken(ctx, token, "customer metadata"); subject != "" {
			return subject
		}
	}

	return ""
}

func (r *Reconciler) subjectFromToken(ctx context.Context, token, source string) string {
	if token == "" {
		return ""
	}
	subject, err := r.tokens.Subject(token)
	if err != nil {
		// A stale or foreign token identifies nobody; fall through to the
		// next source.
		r.log.DebugContext(ctx, "correlation token rejected", "source", source, "error", err)
		return ""
	}
	return subject
}
