package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurahabits/aura/pkg/pg"
	"github.com/aurahabits/aura/pkg/role"
)

// Users is the users_profiles store. It satisfies role.Store.
type Users struct {
	db *pgxpool.Pool
}

func NewUsers(db *pgxpool.Pool) *Users {
	return &Users{db: db}
}

// Get returns the user's profile or role.ErrUserNotFound.
func (s *Users) Get(ctx context.Context, userID string) (role.User, error) {
	var u role.User
	var roleStr string
	err := s.db.QueryRow(ctx, `
		SELECT id, email, role, first_name, last_name
		FROM users_profiles
		WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Email, &roleStr, &u.FirstName, &u.LastName)
	if pg.IsNotFoundError(err) {
		return role.User{}, role.ErrUserNotFound
	}
	if err != nil {
		return role.User{}, fmt.Errorf("storage: get user %s: %w", userID, err)
	}
	u.Role = role.Parse(roleStr)
	return u, nil
}

// Upsert creates the profile on first sight or refreshes the mutable fields
// from the latest token claims. The role column is only set on insert; a
// profile refresh must never touch the tier.
func (s *Users) Upsert(ctx context.Context, u role.User) (role.User, error) {
	if !u.Role.Valid() {
		u.Role = role.RoleFree
	}

	var out role.User
	var roleStr string
	err := s.db.QueryRow(ctx, `
		INSERT INTO users_profiles (id, email, role, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email      = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			updated_at = now()
		RETURNING id, email, role, first_name, last_name`,
		u.ID, u.Email, string(u.Role), u.FirstName, u.LastName,
	).Scan(&out.ID, &out.Email, &roleStr, &out.FirstName, &out.LastName)
	if err != nil {
		return role.User{}, fmt.Errorf("storage: upsert user %s: %w", u.ID, err)
	}
	out.Role = role.Parse(roleStr)
	return out, nil
}

// Upgrade sets the user to pro, creating the profile when a payment event is
// the account's first contact with the backend. The statement only ever
// writes 'pro', so no call sequence can downgrade a user, and replaying it
// is a harmless no-op.
func (s *Users) Upgrade(ctx context.Context, userID, customerID string) (role.User, error) {
	var out role.User
	var roleStr string
	err := s.db.QueryRow(ctx, `
		INSERT INTO users_profiles (id, role, stripe_customer_id)
		VALUES ($1, 'pro', NULLIF($2, ''))
		ON CONFLICT (id) DO UPDATE SET
			role               = 'pro',
			stripe_customer_id = COALESCE(NULLIF($2, ''), users_profiles.stripe_customer_id),
			updated_at         = now()
		RETURNING id, email, role, first_name, last_name`,
		userID, customerID,
	).Scan(&out.ID, &out.Email, &roleStr, &out.FirstName, &out.LastName)
	if err != nil {
		return role.User{}, fmt.Errorf("storage: upgrade user %s: %w", userID, err)
	}
	out.Role = role.Parse(roleStr)
	return out, nil
}
