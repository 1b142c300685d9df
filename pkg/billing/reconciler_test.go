package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurahabits/aura/pkg/billing"
	"github.com/aurahabits/aura/pkg/cache"
	"github.com/aurahabits/aura/pkg/role"
)

type fakeStore struct {
	mu           sync.Mutex
	users        map[string]role.User
	getErr       error
	upgradeErr   error
	upgradeCalls int
	transitions  int
}

func newFakeStore(users ...role.User) *fakeStore {
	s := &fakeStore{users: make(map[string]role.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) Get(ctx context.Context, userID string) (role.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return role.User{}, s.getErr
	}
	u, ok := s.users[userID]
	if !ok {
		return role.User{}, role.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) Upgrade(ctx context.Context, userID, customerID string) (role.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upgradeCalls++
	if s.upgradeErr != nil {
		return role.User{}, s.upgradeErr
	}
	u, ok := s.users[userID]
	if !ok {
		u = role.User{ID: userID}
	}
	if u.CurrentRole() != role.RolePro {
		u.Role = role.RolePro
		s.transitions++
	}
	s.users[userID] = u
	return u, nil
}

func (s *fakeStore) snapshot(userID string) (role.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	return u, ok
}

// fakeResolver maps opaque tokens straight to subjects.
type fakeResolver map[string]string

func (r fakeResolver) Subject(token string) (string, error) {
	subject, ok := r[token]
	if !ok {
		return "", errors.New("token rejected")
	}
	return subject, nil
}

type fakeProvider struct {
	subscriptionTokens map[string]string
	customerTokens     map[string]string
	subscriptionErr    error
	customerErr        error
}

func (p *fakeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (billing.Event, error) {
	return billing.Event{}, billing.ErrUnsupportedEvent
}

func (p *fakeProvider) SubscriptionToken(ctx context.Context, subscriptionID string) (string, error) {
	if p.subscriptionErr != nil {
		return "", p.subscriptionErr
	}
	return p.subscriptionTokens[subscriptionID], nil
}

func (p *fakeProvider) CustomerToken(ctx context.Context, customerID string) (string, error) {
	if p.customerErr != nil {
		return "", p.customerErr
	}
	return p.customerTokens[customerID], nil
}

func TestReconciler_Reconcile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	resolver := fakeResolver{"tok-alice": "alice"}

	t.Run("upgrades free user and invalidates cached roles", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
		c := cache.NewMemory()
		c.Set(ctx, billing.RoleCachePrefix+"tok-alice", []byte(`"free"`), cache.RoleTTL)
		c.Set(ctx, "habits_tok-alice", []byte(`[]`), cache.HabitsTTL)

		rec := billing.NewReconciler(store, resolver, billing.WithCache(c))
		outcome, err := rec.Reconcile(ctx, billing.Event{
			Kind:       billing.EventCheckoutCompleted,
			Token:      "tok-alice",
			CustomerID: "cus_1",
		})

		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeUpgraded, outcome)

		user, ok := store.snapshot("alice")
		require.True(t, ok)
		assert.Equal(t, role.RolePro, user.CurrentRole())

		_, found := c.Get(ctx, billing.RoleCachePrefix+"tok-alice")
		assert.False(t, found, "stale role entry must be invalidated")
		_, found = c.Get(ctx, "habits_tok-alice")
		assert.True(t, found, "unrelated entries survive the invalidation")
	})

	t.Run("second delivery is a no-op", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
		rec := billing.NewReconciler(store, resolver)
		ev := billing.Event{Kind: billing.EventInvoicePaid, Token: "tok-alice"}

		outcome, err := rec.Reconcile(ctx, ev)
		require.NoError(t, err)
		require.Equal(t, billing.OutcomeUpgraded, outcome)

		outcome, err = rec.Reconcile(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeAlreadyPro, outcome)
		assert.Equal(t, 1, store.upgradeCalls, "short-circuit must skip the store write")
	})

	t.Run("upserts user unknown to the store", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		rec := billing.NewReconciler(store, resolver)

		outcome, err := rec.Reconcile(ctx, billing.Event{
			Kind:  billing.EventSubscriptionCreated,
			Token: "tok-alice",
		})

		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeUpgraded, outcome)
		user, ok := store.snapshot("alice")
		require.True(t, ok)
		assert.Equal(t, role.RolePro, user.CurrentRole())
	})

	t.Run("falls back to subscription metadata", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
		provider := &fakeProvider{
			subscriptionTokens: map[string]string{"sub_1": "tok-alice"},
		}
		rec := billing.NewReconciler(store, resolver, billing.WithProvider(provider))

		outcome, err := rec.Reconcile(ctx, billing.Event{
			Kind:           billing.EventInvoicePaid,
			SubscriptionID: "sub_1",
			CustomerID:     "cus_1",
		})

		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeUpgraded, outcome)
	})

	t.Run("falls back to customer metadata when subscription has none", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
		provider := &fakeProvider{
			subscriptionTokens: map[string]string{},
			customerTokens:     map[string]string{"cus_1": "tok-alice"},
		}
		rec := billing.NewReconciler(store, resolver, billing.WithProvider(provider))

		outcome, err := rec.Reconcile(ctx, billing.Event{
			Kind:           billing.EventInvoicePaid,
			SubscriptionID: "sub_1",
			CustomerID:     "cus_1",
		})

		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeUpgraded, outcome)
	})

	t.Run("stale event token falls through to metadata", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
		provider := &fakeProvider{
			customerTokens: map[string]string{"cus_1": "tok-alice"},
		}
		rec := billing.NewReconciler(store, resolver, billing.WithProvider(provider))

		outcome, err := rec.Reconcile(ctx, billing.Event{
			Kind:       billing.EventCheckoutCompleted,
			Token:      "tok-expired",
			CustomerID: "cus_1",
		})

		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeUpgraded, outcome)
	})

	t.Run("no usable token is a warning outcome, not an error", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
		provider := &fakeProvider{}
		rec := billing.NewReconciler(store, resolver, billing.WithProvider(provider))

		outcome, err := rec.Reconcile(ctx, billing.Event{
			Kind:           billing.EventInvoicePaid,
			SubscriptionID: "sub_1",
			CustomerID:     "cus_1",
		})

		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeNoToken, outcome)
		assert.Zero(t, store.upgradeCalls)

		user, _ := store.snapshot("alice")
		assert.Equal(t, role.RoleFree, user.CurrentRole(), "unattributable event must not change roles")
	})

	t.Run("metadata lookup failure still tries the next source", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
		provider := &fakeProvider{
			subscriptionErr: errors.New("stripe is down"),
			customerTokens:  map[string]string{"cus_1": "tok-alice"},
		}
		rec := billing.NewReconciler(store, resolver, billing.WithProvider(provider))

		outcome, err := rec.Reconcile(ctx, billing.Event{
			Kind:           billing.EventInvoicePaid,
			SubscriptionID: "sub_1",
			CustomerID:     "cus_1",
		})

		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeUpgraded, outcome)
	})

	t.Run("store failure surfaces as upstream error", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
		store.upgradeErr = errors.New("connection refused")
		rec := billing.NewReconciler(store, resolver)
		ev := billing.Event{Kind: billing.EventCheckoutCompleted, Token: "tok-alice"}

		_, err := rec.Reconcile(ctx, ev)
		require.ErrorIs(t, err, billing.ErrUpstreamUnavailable)

		// The failure leaves no state behind: the next delivery succeeds.
		store.mu.Lock()
		store.upgradeErr = nil
		store.mu.Unlock()

		outcome, err := rec.Reconcile(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeUpgraded, outcome)
	})

	t.Run("get failure surfaces as upstream error", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		store.getErr = errors.New("connection refused")
		rec := billing.NewReconciler(store, resolver)

		_, err := rec.Reconcile(ctx, billing.Event{
			Kind:  billing.EventDirectRoleUpdate,
			Token: "tok-alice",
		})
		require.ErrorIs(t, err, billing.ErrUpstreamUnavailable)
		assert.Zero(t, store.upgradeCalls)
	})
}

func TestReconciler_ConcurrentTriggerPaths(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	resolver := fakeResolver{"tok-alice": "alice"}
	store := newFakeStore(role.User{ID: "alice", Role: role.RoleFree})
	rec := billing.NewReconciler(store, resolver)

	// The same purchase arrives through every trigger path at once.
	events := []billing.Event{
		{Kind: billing.EventCheckoutCompleted, Token: "tok-alice", CustomerID: "cus_1"},
		{Kind: billing.EventSubscriptionCreated, Token: "tok-alice", SubscriptionID: "sub_1"},
		{Kind: billing.EventInvoicePaid, Token: "tok-alice", SubscriptionID: "sub_1"},
		{Kind: billing.EventSetupIntentSucceeded, Token: "tok-alice", CustomerID: "cus_1"},
		{Kind: billing.EventDirectRoleUpdate, Token: "tok-alice"},
	}

	var wg sync.WaitGroup
	for _, ev := range events {
		wg.Add(1)
		go func(ev billing.Event) {
			defer wg.Done()
			_, err := rec.Reconcile(ctx, ev)
			assert.NoError(t, err)
		}(ev)
	}
	wg.Wait()

	user, ok := store.snapshot("alice")
	require.True(t, ok)
	assert.Equal(t, role.RolePro, user.CurrentRole())
	assert.Equal(t, 1, store.transitions, "racing paths must converge on a single transition")
}
