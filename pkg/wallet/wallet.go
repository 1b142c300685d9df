package wallet

import (
	"context"
	"time"
)

// Wallet is a user's provisioned wallet address. Private key material never
// leaves the provisioning backend.
type Wallet struct {
	UserID    string    `json:"userId"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// Provisioner creates a fresh wallet address. Implementations wrap the
// custody backend; LocalProvisioner generates throwaway keys for
// development and tests.
type Provisioner interface {
	Provision(ctx context.Context) (address string, err error)
}

// Store persists the user-to-wallet mapping with a uniqueness guarantee on
// the user ID.
type Store interface {
	// Get returns the user's wallet or ErrWalletNotFound.
	Get(ctx context.Context, userID string) (Wallet, error)

	// Create persists a new wallet for the user. Returns ErrWalletExists
	// when the user already has one, which callers treat as losing a benign
	// race.
	Create(ctx context.Context, userID, address string) (Wallet, error)
}
