package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
)

// SetupIntentResult carries what the browser needs to confirm card setup.
type SetupIntentResult struct {
	ClientSecret string `json:"clientSecret"`
	CustomerID   string `json:"customerId"`
}

// SubscriptionResult reports the subscription created or reused by
// ConfirmSubscription.
type SubscriptionResult struct {
	SubscriptionID string `json:"subscriptionId"`
	Status         string `json:"status"`
	Reused         bool   `json:"reused"`
}

// Pricing describes the pro plan's price for display.
type Pricing struct {
	PriceID  string `json:"priceId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

// EnsureCustomer finds the customer previously created for the email or
// creates one, tagging it with the correlation token so later webhook events
// can be attributed even when their own metadata is empty.
func (p *StripeProvider) EnsureCustomer(ctx context.Context, email, token string) (string, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Limit = stripe.Int64(1)
	iter := p.api.Customers.List(listParams)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", errors.Join(ErrProvider, err)
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.AddMetadata(MetadataTokenKey, token)
	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", errors.Join(ErrProvider, err)
	}
	return cust.ID, nil
}

// CreateSetupIntent opens a card-setup flow for the customer. The
// correlation token rides on the intent's metadata so setup_intent.succeeded
// can be attributed without a fallback lookup.
func (p *StripeProvider) CreateSetupIntent(ctx context.Context, customerID, token string) (SetupIntentResult, error) {
	if customerID == "" {
		return SetupIntentResult{}, ErrMissingCustomerID
	}

	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata(MetadataTokenKey, token)

	intent, err := p.api.SetupIntents.New(params)
	if err != nil {
		return SetupIntentResult{}, errors.Join(ErrProvider, err)
	}
	return SetupIntentResult{
		ClientSecret: intent.ClientSecret,
		CustomerID:   customerID,
	}, nil
}

// ConfirmSubscription creates the pro subscription once card setup has
// succeeded. It is safe to call more than once: an existing active or
// trialing subscription is reused instead of creating a duplicate. The
// correlation token is written to the subscription's metadata, which is what
// the reconciler's fallback chain reads.
func (p *StripeProvider) ConfirmSubscription(ctx context.Context, customerID, token string) (SubscriptionResult, error) {
	if customerID == "" {
		return SubscriptionResult{}, ErrMissingCustomerID
	}
	if p.config.ProPriceID == "" {
		return SubscriptionResult{}, ErrMissingPriceID
	}

	if existing, err := p.liveSubscription(customerID); err != nil {
		return SubscriptionResult{}, err
	} else if existing != nil {
		return SubscriptionResult{
			SubscriptionID: existing.ID,
			Status:         string(existing.Status),
			Reused:         true,
		}, nil
	}

	paymentMethod, err := p.defaultPaymentMethod(customerID)
	if err != nil {
		return SubscriptionResult{}, err
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(p.config.ProPriceID)},
		},
		DefaultPaymentMethod: stripe.String(paymentMethod),
		PaymentBehavior:      stripe.String("error_if_incomplete"),
	}
	params.AddMetadata(MetadataTokenKey, token)

	sub, err := p.api.Subscriptions.New(params)
	if err != nil {
		return SubscriptionResult{}, errors.Join(ErrProvider, err)
	}
	return SubscriptionResult{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}, nil
}

// GetPricing returns the configured pro price for display on the upgrade
// page.
func (p *StripeProvider) GetPricing(ctx context.Context) (Pricing, error) {
	if p.config.ProPriceID == "" {
		return Pricing{}, ErrMissingPriceID
	}

	price, err := p.api.Prices.Get(p.config.ProPriceID, nil)
	if err != nil {
		return Pricing{}, errors.Join(ErrProvider, err)
	}

	pricing := Pricing{
		PriceID:  price.ID,
		Amount:   price.UnitAmount,
		Currency: string(price.Currency),
	}
	if price.Recurring != nil {
		pricing.Interval = string(price.Recurring.Interval)
	}
	return pricing, nil
}

// liveSubscription returns the customer's active or trialing subscription,
// or nil when none exists.
func (p *StripeProvider) liveSubscription(customerID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	iter := p.api.Subscriptions.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
			return sub, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Join(ErrProvider, err)
	}
	return nil, nil
}

// defaultPaymentMethod resolves the card to bill: the customer's configured
// default first, then the most recently attached card. A card saved through
// a setup intent but never attached as default is attached here.
func (p *StripeProvider) defaultPaymentMethod(customerID string) (string, error) {
	cust, err := p.api.Customers.Get(customerID, nil)
	if err != nil {
		return "", errors.Join(ErrProvider, err)
	}
	if cust.InvoiceSettings != nil && cust.InvoiceSettings.DefaultPaymentMethod != nil {
		return cust.InvoiceSettings.DefaultPaymentMethod.ID, nil
	}

	listParams := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String("card"),
	}
	listParams.Limit = stripe.Int64(1)
	iter := p.api.PaymentMethods.List(listParams)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return "", errors.Join(ErrProvider, err)
		}
		return "", ErrNoPaymentMethod
	}
	pm := iter.PaymentMethod()

	updateParams := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(pm.ID),
		},
	}
	if _, err := p.api.Customers.Update(customerID, updateParams); err != nil {
		return "", fmt.Errorf("%w: setting default payment method: %w", ErrProvider, err)
	}
	return pm.ID, nil
}
