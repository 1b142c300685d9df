package client

import (
	"context"
	"net/http"

	"github.com/aurahabits/aura/pkg/billing"
	"github.com/aurahabits/aura/pkg/cache"
	"github.com/aurahabits/aura/pkg/habit"
	"github.com/aurahabits/aura/pkg/role"
	"github.com/aurahabits/aura/pkg/wallet"
)

// HabitList is the habit collection together with the server's admission
// decision.
type HabitList struct {
	Habits []habit.Habit   `json:"habits"`
	Limit  habit.LimitInfo `json:"limit"`
}

// ConfirmResult reports the created subscription and the role
// reconciliation outcome.
type ConfirmResult struct {
	Subscription billing.SubscriptionResult `json:"subscription"`
	Outcome      billing.Outcome            `json:"outcome"`
}

// GetUserRole returns the caller's profile, cached for the role TTL. A pro
// upgrade becomes visible here within ten minutes at the latest, sooner
// when the server's invalidation reaches this cache.
func (c *Client) GetUserRole(ctx context.Context, token string) (role.User, error) {
	var user role.User
	key := cache.RolePrefix + tokenSuffix(token)
	if err := c.cachedGet(ctx, token, "/api/user/role", key, cache.RoleTTL, &user); err != nil {
		return role.User{}, err
	}
	return user, nil
}

// GetHabits returns the caller's habits and limit info, cached for the
// habit-list TTL.
func (c *Client) GetHabits(ctx context.Context, token string) (HabitList, error) {
	var list HabitList
	key := cache.HabitsPrefix + tokenSuffix(token)
	if err := c.cachedGet(ctx, token, "/api/habits", key, cache.HabitsTTL, &list); err != nil {
		return HabitList{}, err
	}
	return list, nil
}

// CreateHabit creates a habit and invalidates cached habit lists. The
// server enforces the admission policy; a limit rejection surfaces as an
// APIError with status 403 and the upsell message.
func (c *Client) CreateHabit(ctx context.Context, token, name string) (habit.Habit, error) {
	var created habit.Habit
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/habits", token, body, &created); err != nil {
		return habit.Habit{}, err
	}
	c.cache.Invalidate(ctx, cache.HabitsPrefix)
	return created, nil
}

// UpdateHabitProgress records one day of progress and invalidates cached
// habit lists.
func (c *Client) UpdateHabitProgress(ctx context.Context, token, habitID string) (habit.Habit, error) {
	var updated habit.Habit
	if err := c.do(ctx, http.MethodPut, "/api/habits/"+habitID+"/progress", token, nil, &updated); err != nil {
		return habit.Habit{}, err
	}
	c.cache.Invalidate(ctx, cache.HabitsPrefix)
	return updated, nil
}

// EnsureWallet returns the caller's wallet, provisioning one on first
// login. Addresses never change, so the result is cached for a day.
func (c *Client) EnsureWallet(ctx context.Context, token string) (wallet.Wallet, error) {
	key := cache.WalletPrefix + tokenSuffix(token)
	var w wallet.Wallet
	if raw, ok := c.cache.Get(ctx, key); ok {
		if err := unmarshalCached(raw, &w); err == nil {
			return w, nil
		}
		c.cache.Invalidate(ctx, key)
	}

	if err := c.do(ctx, http.MethodPost, "/api/login", token, nil, &w); err != nil {
		return wallet.Wallet{}, err
	}
	c.set(ctx, key, w, cache.WalletTTL)
	return w, nil
}

// CreateSetupIntent opens a card-setup flow for the caller.
func (c *Client) CreateSetupIntent(ctx context.Context, token string) (billing.SetupIntentResult, error) {
	var intent billing.SetupIntentResult
	if err := c.do(ctx, http.MethodPost, "/api/payments/create-intent", token, nil, &intent); err != nil {
		return billing.SetupIntentResult{}, err
	}
	return intent, nil
}

// ConfirmSubscription finalizes the purchase and invalidates cached roles
// so the next GetUserRole sees the upgrade immediately.
func (c *Client) ConfirmSubscription(ctx context.Context, token, customerID string) (ConfirmResult, error) {
	var result ConfirmResult
	body := map[string]string{"customerId": customerID}
	if err := c.do(ctx, http.MethodPost, "/api/payments/confirm-subscription", token, body, &result); err != nil {
		return ConfirmResult{}, err
	}
	c.cache.Invalidate(ctx, cache.RolePrefix)
	return result, nil
}

// GetPricing returns the pro plan's display price.
func (c *Client) GetPricing(ctx context.Context, token string) (billing.Pricing, error) {
	var pricing billing.Pricing
	if err := c.do(ctx, http.MethodGet, "/api/payments/pricing", token, nil, &pricing); err != nil {
		return billing.Pricing{}, err
	}
	return pricing, nil
}
