// Package habits serves the habit CRUD and tracking endpoints. The
// admission policy is enforced here, server-side; the client's cached limit
// info is advisory only.
package habits

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aurahabits/aura/pkg/auth"
	"github.com/aurahabits/aura/pkg/binder"
	"github.com/aurahabits/aura/pkg/cache"
	"github.com/aurahabits/aura/pkg/habit"
	"github.com/aurahabits/aura/pkg/role"
)

// RoleReader resolves the caller's tier for policy evaluation.
type RoleReader interface {
	Get(ctx context.Context, userID string) (role.User, error)
}

// Service handles the /api/habits endpoints.
type Service struct {
	store  habit.Store
	users  RoleReader
	policy *habit.Policy
	cache  cache.Cache
	clock  func() time.Time
	log    *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithCache registers the cache whose habit entries are invalidated after
// mutations.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source for the one-track-per-day rule.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService creates the habits service. Store, role reader, and policy are
// required; panics otherwise to fail fast at wiring time.
func NewService(store habit.Store, users RoleReader, policy *habit.Policy, opts ...Option) *Service {
	if store == nil {
		panic("habits: store is required")
	}
	if users == nil {
		panic("habits: role reader is required")
	}
	if policy == nil {
		panic("habits: policy is required")
	}

	s := &Service{
		store:  store,
		users:  users,
		policy: policy,
		clock:  time.Now,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the /api/habits routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Put("/{habitID}/progress", s.track)
	return r
}

// listResponse pairs the habit list with the admission decision so the
// client can render the create button without a second round trip.
type listResponse struct {
	Habits []habit.Habit   `json:"habits"`
	Limit  habit.LimitInfo `json:"limit"`
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	habits, err := s.store.List(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to list habits", "user_id", userID, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "failed to load habits")
		return
	}
	if habits == nil {
		habits = []habit.Habit{}
	}

	binder.Respond(w, http.StatusOK, listResponse{
		Habits: habits,
		Limit:  s.policy.LimitInfo(s.userRole(ctx, userID), habits),
	})
}

type createRequest struct {
	Name string `json:"name"`
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	var req createRequest
	if err := binder.JSON(r, &req); err != nil {
		binder.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		binder.RespondError(w, http.StatusBadRequest, habit.ErrEmptyName.Error())
		return
	}

	habits, err := s.store.List(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to list habits", "user_id", userID, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "failed to load habits")
		return
	}

	// The limit check and the insert are not atomic. The window is accepted:
	// a user racing their own requests can at worst briefly exceed their own
	// limit, and the next list shows the true count.
	if info := s.policy.LimitInfo(s.userRole(ctx, userID), habits); !info.Allowed {
		binder.RespondError(w, http.StatusForbidden, info.Reason)
		return
	}

	created, err := s.store.Create(ctx, habit.Habit{UserID: userID, Name: req.Name})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to create habit", "user_id", userID, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "failed to create habit")
		return
	}

	s.invalidateHabits(ctx)
	binder.Respond(w, http.StatusCreated, created)
}

func (s *Service) track(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	habitID := chi.URLParam(r, "habitID")

	h, err := s.store.Get(ctx, userID, habitID)
	if errors.Is(err, habit.ErrHabitNotFound) {
		binder.RespondError(w, http.StatusNotFound, "habit not found")
		return
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to load habit", "habit_id", habitID, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "failed to load habit")
		return
	}

	tracked, err := h.Track(s.clock())
	switch {
	case errors.Is(err, habit.ErrAlreadyTrackedToday):
		binder.RespondError(w, http.StatusConflict, "habit already tracked today")
		return
	case errors.Is(err, habit.ErrHabitCompleted):
		binder.RespondError(w, http.StatusBadRequest, "habit is already completed")
		return
	case err != nil:
		binder.RespondError(w, http.StatusInternalServerError, "failed to track habit")
		return
	}

	updated, err := s.store.Update(ctx, tracked)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to save habit progress", "habit_id", habitID, "error", err)
		binder.RespondError(w, http.StatusInternalServerError, "failed to save habit progress")
		return
	}

	s.invalidateHabits(ctx)
	binder.Respond(w, http.StatusOK, updated)
}

// userRole resolves the caller's tier, defaulting to free when no profile
// exists yet or the lookup fails. Degrading to the most restrictive tier is
// the safe direction for an admission check.
func (s *Service) userRole(ctx context.Context, userID string) role.Role {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, role.ErrUserNotFound) {
			s.log.WarnContext(ctx, "role lookup failed, treating user as free", "user_id", userID, "error", err)
		}
		return role.RoleFree
	}
	return user.CurrentRole()
}

func (s *Service) invalidateHabits(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.HabitsPrefix)
	}
}
