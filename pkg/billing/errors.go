package billing

import "errors"

var (
	ErrSignatureVerification = errors.New("billing: webhook signature verification failed")
	ErrUnsupportedEvent      = errors.New("billing: unsupported webhook event")
	ErrNoCorrelationToken    = errors.New("billing: no correlation token for event")
	ErrUpstreamUnavailable   = errors.New("billing: upstream role store unavailable")
	ErrNoPaymentMethod       = errors.New("billing: no payment method found for customer")
	ErrMissingCustomerID     = errors.New("billing: customer ID is required")
	ErrMissingPriceID        = errors.New("billing: subscription price ID is not configured")
	ErrProvider              = errors.New("billing: payment provider error")
)
