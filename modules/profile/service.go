// Package profile serves the account endpoints: role reads with
// get-or-create semantics, the monotonic upgrade, and the login-time wallet
// provisioning.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurahabits/aura/pkg/auth"
	"github.com/aurahabits/aura/pkg/billing"
	"github.com/aurahabits/aura/pkg/binder"
	"github.com/aurahabits/aura/pkg/role"
	"github.com/aurahabits/aura/pkg/wallet"
)

// UserStore is the profile persistence the service needs.
type UserStore interface {
	Get(ctx context.Context, userID string) (role.User, error)
	Upsert(ctx context.Context, u role.User) (role.User, error)
}

// WalletProvisioner provisions wallets idempotently at login.
type WalletProvisioner interface {
	EnsureWallet(ctx context.Context, userID string) (wallet.Wallet, error)
}

// RoleUpgrader converges a user to the pro role. All upgrade paths,
// including this module's PUT /upgrade, funnel through the same
// reconciliation.
type RoleUpgrader interface {
	Reconcile(ctx context.Context, ev billing.Event) (billing.Outcome, error)
}

// Service handles the /api/user and /api/login endpoints.
type Service struct {
	users    UserStore
	wallets  WalletProvisioner
	upgrader RoleUpgrader
	log      *slog.Logger
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

// NewService creates the profile service. All collaborators are required;
// panics otherwise to fail fast at wiring time.
func NewService(users UserStore, wallets WalletProvisioner, upgrader RoleUpgrader, opts ...Option) *Service {
	if users == nil {
		panic("profile: user store is required")
	}
	if wallets == nil {
		panic("profile: wallet provisioner is required")
	}
	if upgrader == nil {
		panic("profile: role upgrader is required")
	}

	s := &Service{
		users:    users,
		wallets:  wallets,
		upgrader: upgrader,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the /api/user routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/role", s.getRole)
	r.Put("/upgrade", s.upgrade)
	return r
}

// getRole returns the caller's profile, creating it on first contact and
// refreshing the name fields from the token claims. The role column is left
// alone on refresh so a stale token can never overwrite an upgrade.
func (s *Service) getRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		binder.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	firstName, lastName := claims.Name()
	user, err := s.users.Upsert(ctx, role.User{
		ID:        claims.Subject,
		Email:     claims.Email,
		Role:      role.RoleFree,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to load profile", "user_id", claims.Subject, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	binder.Respond(w, http.StatusOK, user)
}

type upgradeRequest struct {
	Role string `json:"role"`
}

// upgrade applies the monotonic role transition. Only pro is a valid
// target; anything else, including an attempt to set free, is a no-op that
// returns the current profile.
func (s *Service) upgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	token, _ := auth.Token(ctx)

	var req upgradeRequest
	if err := binder.JSON(r, &req); err != nil {
		binder.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if role.Role(req.Role) != role.RolePro {
		user, err := s.users.Get(ctx, userID)
		if errors.Is(err, role.ErrUserNotFound) {
			binder.RespondError(w, http.StatusNotFound, "profile not found")
			return
		}
		if err != nil {
			binder.RespondError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		binder.Respond(w, http.StatusOK, user)
		return
	}

	if _, err := s.upgrader.Reconcile(ctx, billing.Event{
		Kind:  billing.EventDirectRoleUpdate,
		Token: token,
	}); err != nil {
		s.log.ErrorContext(ctx, "role upgrade failed", "user_id", userID, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "failed to upgrade role")
		return
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		binder.RespondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	binder.Respond(w, http.StatusOK, user)
}

// HandleLogin serves POST /api/login: it guarantees the caller has a wallet
// and returns it. Safe to call on every login.
func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	wlt, err := s.wallets.EnsureWallet(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "wallet provisioning failed", "user_id", userID, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "failed to provision wallet")
		return
	}
	binder.Respond(w, http.StatusOK, wlt)
}
