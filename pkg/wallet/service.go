package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Service provisions wallets exactly once per user.
type Service struct {
	store       Store
	provisioner Provisioner
	log         *slog.Logger
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a wallet service. Store and provisioner are required;
// panics otherwise to fail fast at wiring time.
func NewService(store Store, provisioner Provisioner, opts ...ServiceOption) *Service {
	if store == nil {
		panic("wallet: store is required")
	}
	if provisioner == nil {
		panic("wallet: provisioner is required")
	}

	s := &Service{
		store:       store,
		provisioner: provisioner,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureWallet returns the user's wallet, provisioning one on first call.
// Concurrent first calls both succeed: the loser of the insert race reads
// back the winner's wallet and the extra provisioned address is abandoned.
func (s *Service) EnsureWallet(ctx context.Context, userID string) (Wallet, error) {
	if userID == "" {
		return Wallet{}, ErrMissingUserID
	}

	w, err := s.store.Get(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return Wallet{}, fmt.Errorf("wallet: looking up wallet for %s: %w", userID, err)
	}

	address, err := s.provisioner.Provision(ctx)
	if err != nil {
		return Wallet{}, errors.Join(ErrProvisionerFailed, err)
	}

	w, err = s.store.Create(ctx, userID, address)
	if errors.Is(err, ErrWalletExists) {
		return s.store.Get(ctx, userID)
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("wallet: storing wallet for %s: %w", userID, err)
	}

	s.log.InfoContext(ctx, "wallet provisioned", "user_id", userID, "address", address)
	return w, nil
}
