package habits_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurahabits/aura/modules/habits"
	"github.com/aurahabits/aura/pkg/auth"
	"github.com/aurahabits/aura/pkg/cache"
	"github.com/aurahabits/aura/pkg/habit"
	"github.com/aurahabits/aura/pkg/role"
)

type fakeStore struct {
	habits []habit.Habit
	nextID int
}

func (s *fakeStore) List(ctx context.Context, userID string) ([]habit.Habit, error) {
	var out []habit.Habit
	for _, h := range s.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeStore) Get(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	for _, h := range s.habits {
		if h.UserID == userID && h.ID == habitID {
			return h, nil
		}
	}
	return habit.Habit{}, habit.ErrHabitNotFound
}

func (s *fakeStore) Create(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	s.nextID++
	h.ID = fmt.Sprintf("habit-%d", s.nextID)
	h.CreatedAt = time.Now()
	s.habits = append(s.habits, h)
	return h, nil
}

func (s *fakeStore) Update(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	for i, existing := range s.habits {
		if existing.UserID == h.UserID && existing.ID == h.ID {
			h.CreatedAt = existing.CreatedAt
			s.habits[i] = h
			return h, nil
		}
	}
	return habit.Habit{}, habit.ErrHabitNotFound
}

type fakeRoles map[string]role.Role

func (f fakeRoles) Get(ctx context.Context, userID string) (role.User, error) {
	r, ok := f[userID]
	if !ok {
		return role.User{}, role.ErrUserNotFound
	}
	return role.User{ID: userID, Role: r}, nil
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	ctx := auth.SetClaims(r.Context(), auth.Claims{Subject: "alice", Email: "alice@example.com"})
	ctx = auth.SetToken(ctx, "tok-alice")
	return r.WithContext(ctx)
}

func TestService_List(t *testing.T) {
	t.Parallel()

	t.Run("empty list still carries limit info", func(t *testing.T) {
		t.Parallel()

		svc := habits.NewService(&fakeStore{}, fakeRoles{}, habit.NewPolicy(nil))
		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("GET", "/", ""))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"habits":[]`)
		assert.Contains(t, w.Body.String(), `"canCreate":true`)
		assert.Contains(t, w.Body.String(), `"habitsRemaining":1`)
	})

	t.Run("pro user sees five slots", func(t *testing.T) {
		t.Parallel()

		svc := habits.NewService(&fakeStore{}, fakeRoles{"alice": role.RolePro}, habit.NewPolicy(nil))
		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("GET", "/", ""))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"habitsRemaining":5`)
	})
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates within the limit", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory()
		c.Set(context.Background(), cache.HabitsPrefix+"tok-alice", []byte("[]"), cache.HabitsTTL)

		svc := habits.NewService(&fakeStore{}, fakeRoles{}, habit.NewPolicy(nil), habits.WithCache(c))
		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("POST", "/", `{"name":"Drink water"}`))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Drink water"`)

		_, found := c.Get(context.Background(), cache.HabitsPrefix+"tok-alice")
		assert.False(t, found, "creating a habit must invalidate cached lists")
	})

	t.Run("free user hits the lifetime limit at one", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		svc := habits.NewService(store, fakeRoles{"alice": role.RoleFree}, habit.NewPolicy(nil))

		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("POST", "/", `{"name":"First"}`))
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("POST", "/", `{"name":"Second"}`))
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Upgrade to Pro")
	})

	t.Run("a completed habit still blocks a free user", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{habits: []habit.Habit{
			{ID: "h1", UserID: "alice", Name: "Done", DaysCompleted: 7, Completed: true},
		}}
		svc := habits.NewService(store, fakeRoles{"alice": role.RoleFree}, habit.NewPolicy(nil))

		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("POST", "/", `{"name":"Another"}`))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("a completed habit frees a pro slot", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		for i := range 4 {
			store.habits = append(store.habits, habit.Habit{
				ID: fmt.Sprintf("h%d", i), UserID: "alice", Name: "x",
			})
		}
		store.habits = append(store.habits, habit.Habit{
			ID: "done", UserID: "alice", Name: "Done", DaysCompleted: 7, Completed: true,
		})

		svc := habits.NewService(store, fakeRoles{"alice": role.RolePro}, habit.NewPolicy(nil))
		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("POST", "/", `{"name":"Fifth active"}`))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("rejects blank names", func(t *testing.T) {
		t.Parallel()

		svc := habits.NewService(&fakeStore{}, fakeRoles{}, habit.NewPolicy(nil))
		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("POST", "/", `{"name":"   "}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestService_Track(t *testing.T) {
	t.Parallel()

	newSvc := func(store *fakeStore, clock func() time.Time) *habits.Service {
		return habits.NewService(store, fakeRoles{}, habit.NewPolicy(nil), habits.WithClock(clock))
	}

	t.Run("records a day of progress", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{habits: []habit.Habit{{ID: "h1", UserID: "alice", Name: "Run"}}}
		svc := newSvc(store, time.Now)

		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("PUT", "/h1/progress", ""))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"daysCompleted":1`)
	})

	t.Run("second track on the same day conflicts", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{habits: []habit.Habit{{ID: "h1", UserID: "alice", Name: "Run"}}}
		svc := newSvc(store, time.Now)

		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("PUT", "/h1/progress", ""))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("PUT", "/h1/progress", ""))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("seventh day completes the habit", func(t *testing.T) {
		t.Parallel()

		yesterday := time.Now().AddDate(0, 0, -1)
		store := &fakeStore{habits: []habit.Habit{{
			ID: "h1", UserID: "alice", Name: "Run",
			DaysCompleted: 6, LastTrackedDate: &yesterday,
		}}}
		svc := newSvc(store, time.Now)

		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("PUT", "/h1/progress", ""))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"daysCompleted":7`)
		assert.Contains(t, w.Body.String(), `"completed":true`)
	})

	t.Run("completed habit rejects further tracking", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{habits: []habit.Habit{{
			ID: "h1", UserID: "alice", Name: "Run", DaysCompleted: 7, Completed: true,
		}}}
		svc := newSvc(store, time.Now)

		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("PUT", "/h1/progress", ""))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown habit is a 404", func(t *testing.T) {
		t.Parallel()

		svc := newSvc(&fakeStore{}, time.Now)
		w := httptest.NewRecorder()
		svc.Handle().ServeHTTP(w, authedRequest("PUT", "/nope/progress", ""))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
