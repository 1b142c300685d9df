package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurahabits/aura/pkg/pg"
	"github.com/aurahabits/aura/pkg/wallet"
)

// Wallets is the wallets store. It satisfies wallet.Store; the primary key
// on user_id provides the uniqueness guarantee the provisioning race needs.
type Wallets struct {
	db *pgxpool.Pool
}

func NewWallets(db *pgxpool.Pool) *Wallets {
	return &Wallets{db: db}
}

// Get returns the user's wallet or wallet.ErrWalletNotFound.
func (s *Wallets) Get(ctx context.Context, userID string) (wallet.Wallet, error) {
	var w wallet.Wallet
	err := s.db.QueryRow(ctx, `
		SELECT user_id, address, created_at
		FROM wallets
		WHERE user_id = $1`, userID,
	).Scan(&w.UserID, &w.Address, &w.CreatedAt)
	if pg.IsNotFoundError(err) {
		return wallet.Wallet{}, wallet.ErrWalletNotFound
	}
	if err != nil {
		return wallet.Wallet{}, fmt.Errorf("storage: get wallet for %s: %w", userID, err)
	}
	return w, nil
}

// Create inserts the user's wallet, translating the duplicate-key violation
// into wallet.ErrWalletExists so the service can resolve concurrent logins.
func (s *Wallets) Create(ctx context.Context, userID, address string) (wallet.Wallet, error) {
	var w wallet.Wallet
	err := s.db.QueryRow(ctx, `
		INSERT INTO wallets (user_id, address)
		VALUES ($1, $2)
		RETURNING user_id, address, created_at`, userID, address,
	).Scan(&w.UserID, &w.Address, &w.CreatedAt)
	if pg.IsDuplicateKeyError(err) {
		return wallet.Wallet{}, wallet.ErrWalletExists
	}
	if err != nil {
		return wallet.Wallet{}, fmt.Errorf("storage: create wallet for %s: %w", userID, err)
	}
	return w, nil
}
