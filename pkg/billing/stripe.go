package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// MetadataTokenKey is the metadata field carrying the correlation token on
// checkout sessions, subscriptions, and customers.
const MetadataTokenKey = "auth_token"

// StripeConfig holds Stripe credentials and the pro-tier price.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	ProPriceID    string `env:"STRIPE_PRO_PRICE_ID"`
}

// StripeProvider implements Provider and the checkout operations against the
// Stripe API.
type StripeProvider struct {
	api    *client.API
	config StripeConfig
	log    *slog.Logger
}

// NewStripeProvider creates a Stripe-backed provider.
func NewStripeProvider(cfg StripeConfig, log *slog.Logger) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("billing: stripe secret key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("billing: stripe webhook secret is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &StripeProvider{
		api:    client.New(cfg.SecretKey, nil),
		config: cfg,
		log:    log,
	}, nil
}

// expandableID tolerates Stripe's expandable fields, which arrive either as
// a bare ID string or as an object with an "id" field depending on the
// webhook's expansion settings.
type expandableID string

func (e *expandableID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = expandableID(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = expandableID(obj.ID)
	return nil
}

// ParseWebhook verifies the Stripe-Signature header and normalizes the
// event. Signature failure is the only condition the webhook endpoint turns
// into a 4xx; event types outside the handled set come back as
// ErrUnsupportedEvent so the endpoint can acknowledge and skip them.
func (p *StripeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, p.config.WebhookSecret)
	if err != nil {
		return Event{}, errors.Join(ErrSignatureVerification, err)
	}

	providerEvent := string(stripeEvent.Type)

	switch stripeEvent.Type {
	case "checkout.session.completed":
		var session struct {
			Mode     string            `json:"mode"`
			Metadata map[string]string `json:"metadata"`
			Customer expandableID      `json:"customer"`
		}
		if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
			return Event{}, fmt.Errorf("%w: %w", ErrProvider, err)
		}
		// One-off payments also complete checkout sessions; only
		// subscription mode grants the pro role.
		if session.Mode != "subscription" {
			return Event{}, fmt.Errorf("%w: checkout session mode %q", ErrUnsupportedEvent, session.Mode)
		}
		return Event{
			Kind:          EventCheckoutCompleted,
			Token:         session.Metadata[MetadataTokenKey],
			CustomerID:    string(session.Customer),
			ProviderEvent: providerEvent,
		}, nil

	case "customer.subscription.created":
		var sub struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
			Customer expandableID      `json:"customer"`
		}
		if err := json.Unmarshal(stripeEvent.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("%w: %w", ErrProvider, err)
		}
		return Event{
			Kind:           EventSubscriptionCreated,
			Token:          sub.Metadata[MetadataTokenKey],
			CustomerID:     string(sub.Customer),
			SubscriptionID: sub.ID,
			ProviderEvent:  providerEvent,
		}, nil

	case "invoice.paid":
		var invoice struct {
			Subscription expandableID `json:"subscription"`
			Customer     expandableID `json:"customer"`
		}
		if err := json.Unmarshal(stripeEvent.Data.Raw, &invoice); err != nil {
			return Event{}, fmt.Errorf("%w: %w", ErrProvider, err)
		}
		// Invoices for one-off charges carry no subscription and cannot
		// confirm a plan purchase.
		if invoice.Subscription == "" {
			return Event{}, fmt.Errorf("%w: invoice without subscription", ErrUnsupportedEvent)
		}
		return Event{
			Kind:           EventInvoicePaid,
			CustomerID:     string(invoice.Customer),
			SubscriptionID: string(invoice.Subscription),
			ProviderEvent:  providerEvent,
		}, nil

	case "setup_intent.succeeded":
		var intent struct {
			Metadata map[string]string `json:"metadata"`
			Customer expandableID      `json:"customer"`
		}
		if err := json.Unmarshal(stripeEvent.Data.Raw, &intent); err != nil {
			return Event{}, fmt.Errorf("%w: %w", ErrProvider, err)
		}
		return Event{
			Kind:          EventSetupIntentSucceeded,
			Token:         intent.Metadata[MetadataTokenKey],
			CustomerID:    string(intent.Customer),
			ProviderEvent: providerEvent,
		}, nil

	default:
		return Event{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, providerEvent)
	}
}

// SubscriptionToken fetches the correlation token from the subscription's
// metadata.
func (p *StripeProvider) SubscriptionToken(ctx context.Context, subscriptionID string) (string, error) {
	sub, err := p.api.Subscriptions.Get(subscriptionID, nil)
	if err != nil {
		return "", errors.Join(ErrProvider, err)
	}
	return sub.Metadata[MetadataTokenKey], nil
}

// CustomerToken fetches the correlation token from the customer's metadata.
func (p *StripeProvider) CustomerToken(ctx context.Context, customerID string) (string, error) {
	cust, err := p.api.Customers.Get(customerID, nil)
	if err != nil {
		return "", errors.Join(ErrProvider, err)
	}
	return cust.Metadata[MetadataTokenKey], nil
}
