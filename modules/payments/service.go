// Package payments serves the checkout endpoints and the payment provider
// webhook. The webhook's status codes are the provider's retry protocol: 2xx
// acknowledges, 4xx rejects bad signatures, 5xx requests redelivery.
package payments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurahabits/aura/pkg/auth"
	"github.com/aurahabits/aura/pkg/billing"
	"github.com/aurahabits/aura/pkg/binder"
)

// maxWebhookBody bounds webhook payloads. Stripe events are a few KB.
const maxWebhookBody = 1 << 16

// CheckoutProvider is the payment-provider surface the checkout endpoints
// use.
type CheckoutProvider interface {
	EnsureCustomer(ctx context.Context, email, token string) (string, error)
	CreateSetupIntent(ctx context.Context, customerID, token string) (billing.SetupIntentResult, error)
	ConfirmSubscription(ctx context.Context, customerID, token string) (billing.SubscriptionResult, error)
	GetPricing(ctx context.Context) (billing.Pricing, error)
}

// WebhookParser verifies and normalizes provider webhooks.
type WebhookParser interface {
	ParseWebhook(ctx context.Context, payload []byte, signature string) (billing.Event, error)
}

// Reconciler converges a payment event's subject to the pro role.
type Reconciler interface {
	Reconcile(ctx context.Context, ev billing.Event) (billing.Outcome, error)
}

// Service handles /api/payments and /api/stripe/webhook.
type Service struct {
	checkout   CheckoutProvider
	parser     WebhookParser
	reconciler Reconciler
	log        *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the payments service. All collaborators are required;
// panics otherwise to fail fast at wiring time.
func NewService(checkout CheckoutProvider, parser WebhookParser, reconciler Reconciler, opts ...Option) *Service {
	if checkout == nil {
		panic("payments: checkout provider is required")
	}
	if parser == nil {
		panic("payments: webhook parser is required")
	}
	if reconciler == nil {
		panic("payments: reconciler is required")
	}

	s := &Service{
		checkout:   checkout,
		parser:     parser,
		reconciler: reconciler,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the authenticated /api/payments routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/create-intent", s.createIntent)
	r.Post("/confirm-subscription", s.confirmSubscription)
	r.Get("/pricing", s.pricing)
	return r
}

// createIntent opens a card-setup flow for the caller, creating the
// provider customer on first use.
func (s *Service) createIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		binder.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	token, _ := auth.Token(ctx)

	customerID, err := s.checkout.EnsureCustomer(ctx, claims.Email, token)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to ensure customer", "user_id", claims.Subject, "error", err)
		binder.RespondError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}

	intent, err := s.checkout.CreateSetupIntent(ctx, customerID, token)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to create setup intent", "customer_id", customerID, "error", err)
		binder.RespondError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}
	binder.Respond(w, http.StatusOK, intent)
}

type confirmRequest struct {
	CustomerID string `json:"customerId"`
}

type confirmResponse struct {
	Subscription billing.SubscriptionResult `json:"subscription"`
	Outcome      billing.Outcome            `json:"outcome"`
}

// confirmSubscription creates the subscription and immediately applies the
// role upgrade in-band, racing the webhook for the same purchase. Retrying
// the whole endpoint is safe: the provider reuses a live subscription and
// the reconciliation is idempotent.
func (s *Service) confirmSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	token, _ := auth.Token(ctx)

	var req confirmRequest
	if err := binder.JSON(r, &req); err != nil {
		binder.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID == "" {
		binder.RespondError(w, http.StatusBadRequest, "customerId is required")
		return
	}

	sub, err := s.checkout.ConfirmSubscription(ctx, req.CustomerID, token)
	if err != nil {
		if errors.Is(err, billing.ErrNoPaymentMethod) {
			binder.RespondError(w, http.StatusBadRequest, "no payment method on file")
			return
		}
		s.log.ErrorContext(ctx, "failed to confirm subscription", "user_id", userID, "customer_id", req.CustomerID, "error", err)
		binder.RespondError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}

	outcome, err := s.reconciler.Reconcile(ctx, billing.Event{
		Kind:           billing.EventDirectRoleUpdate,
		Token:          token,
		CustomerID:     req.CustomerID,
		SubscriptionID: sub.SubscriptionID,
	})
	if err != nil {
		// The subscription exists; only the role write failed. The client
		// retries, or the webhook converges it shortly.
		s.log.ErrorContext(ctx, "role reconciliation failed after subscription", "user_id", userID, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "subscription created but role update failed, retry shortly")
		return
	}

	binder.Respond(w, http.StatusOK, confirmResponse{Subscription: sub, Outcome: outcome})
}

func (s *Service) pricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pricing, err := s.checkout.GetPricing(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to load pricing", "error", err)
		binder.RespondError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}
	binder.Respond(w, http.StatusOK, pricing)
}

// HandleWebhook serves POST /api/stripe/webhook. Recognized events are
// reconciled; unsupported ones are acknowledged and skipped so the provider
// stops redelivering them.
func (s *Service) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		binder.RespondError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	ev, err := s.parser.ParseWebhook(ctx, payload, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, billing.ErrUnsupportedEvent):
		binder.Respond(w, http.StatusOK, map[string]any{"received": true})
		return
	case errors.Is(err, billing.ErrSignatureVerification):
		s.log.WarnContext(ctx, "webhook signature verification failed", "error", err)
		binder.RespondError(w, http.StatusBadRequest, "invalid signature")
		return
	case err != nil:
		s.log.WarnContext(ctx, "webhook payload rejected", "error", err)
		binder.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	outcome, err := s.reconciler.Reconcile(ctx, ev)
	if err != nil {
		// 5xx asks the provider to redeliver; the reconciler itself never
		// retries.
		s.log.ErrorContext(ctx, "webhook reconciliation failed", "provider_event", ev.ProviderEvent, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	binder.Respond(w, http.StatusOK, map[string]any{"received": true, "outcome": outcome})
}
