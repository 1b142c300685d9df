package habit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurahabits/aura/pkg/habit"
	"github.com/aurahabits/aura/pkg/role"
)

func makeHabits(active, completed int) []habit.Habit {
	habits := make([]habit.Habit, 0, active+completed)
	for i := 0; i < active; i++ {
		habits = append(habits, habit.Habit{Name: "active", DaysCompleted: 2})
	}
	for i := 0; i < completed; i++ {
		habits = append(habits, habit.Habit{Name: "done", DaysCompleted: 7, Completed: true})
	}
	return habits
}

func TestPolicy_CanCreate(t *testing.T) {
	t.Parallel()

	policy := habit.NewPolicy(nil)

	tests := []struct {
		name      string
		role      role.Role
		active    int
		completed int
		want      bool
	}{
		{"free with no habits", role.RoleFree, 0, 0, true},
		{"free with one active habit", role.RoleFree, 1, 0, false},
		{"free with one completed habit still blocked", role.RoleFree, 0, 1, false},
		{"pro with four active habits", role.RolePro, 4, 0, true},
		{"pro with five active habits", role.RolePro, 5, 0, false},
		{"pro with four active one completed", role.RolePro, 4, 1, true},
		{"pro with five active two completed", role.RolePro, 5, 2, false},
		{"unknown role gets free limit", role.Role("vip"), 1, 0, false},
		{"empty role gets free limit", role.Role(""), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := policy.CanCreate(tt.role, makeHabits(tt.active, tt.completed))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_CanCreate_MatchesActiveCountRule(t *testing.T) {
	t.Parallel()

	policy := habit.NewPolicy(nil)

	// canCreate(pro, h) == activeCount(h) < 5 across mixed lists.
	for active := 0; active <= 6; active++ {
		for completed := 0; completed <= 3; completed++ {
			habits := makeHabits(active, completed)
			want := habit.ActiveCount(habits) < 5
			assert.Equal(t, want, policy.CanCreate(role.RolePro, habits),
				"active=%d completed=%d", active, completed)

			// canCreate(free, h) == len(h) == 0, regardless of completion.
			assert.Equal(t, len(habits) == 0, policy.CanCreate(role.RoleFree, habits),
				"active=%d completed=%d", active, completed)
		}
	}
}

func TestPolicy_LimitInfo(t *testing.T) {
	t.Parallel()

	policy := habit.NewPolicy(nil)

	t.Run("pro frees a slot on completion", func(t *testing.T) {
		t.Parallel()

		// Five active habits: at the ceiling.
		full := makeHabits(5, 0)
		info := policy.LimitInfo(role.RolePro, full)
		assert.False(t, info.Allowed)
		assert.EqualValues(t, 0, info.Remaining)
		assert.NotEmpty(t, info.Reason)

		// Mark one completed: a slot opens up.
		full[0].DaysCompleted = habit.CompletionDays
		full[0].Completed = true
		info = policy.LimitInfo(role.RolePro, full)
		assert.True(t, info.Allowed)
		assert.EqualValues(t, 1, info.Remaining)
		assert.Empty(t, info.Reason)
	})

	t.Run("free upsell reason", func(t *testing.T) {
		t.Parallel()

		info := policy.LimitInfo(role.RoleFree, makeHabits(1, 0))
		assert.False(t, info.Allowed)
		assert.Contains(t, info.Reason, "Upgrade")
	})

	t.Run("consistent with CanCreate", func(t *testing.T) {
		t.Parallel()

		for active := 0; active <= 6; active++ {
			habits := makeHabits(active, 1)
			for _, r := range []role.Role{role.RoleFree, role.RolePro} {
				info := policy.LimitInfo(r, habits)
				assert.Equal(t, policy.CanCreate(r, habits), info.Allowed)
			}
		}
	})

	t.Run("custom plans", func(t *testing.T) {
		t.Parallel()

		plans := role.Plans{
			role.RoleFree: {Role: role.RoleFree, MaxHabits: 2},
			role.RolePro:  {Role: role.RolePro, MaxHabits: 10},
		}
		policy := habit.NewPolicy(plans)
		assert.True(t, policy.CanCreate(role.RoleFree, makeHabits(1, 0)))
		assert.True(t, policy.CanCreate(role.RolePro, makeHabits(9, 0)))
		assert.False(t, policy.CanCreate(role.RolePro, makeHabits(10, 0)))
	})
}

func TestHabit_Track(t *testing.T) {
	t.Parallel()

	t.Run("increments progress", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
		h := habit.Habit{Name: "meditate", DaysCompleted: 3}

		tracked, err := h.Track(now)
		require.NoError(t, err)
		assert.Equal(t, 4, tracked.DaysCompleted)
		assert.False(t, tracked.Completed)
		require.NotNil(t, tracked.LastTrackedDate)
		assert.Equal(t, now, *tracked.LastTrackedDate)
	})

	t.Run("completes at seven days", func(t *testing.T) {
		t.Parallel()

		h := habit.Habit{Name: "run", DaysCompleted: 6}
		tracked, err := h.Track(time.Now())
		require.NoError(t, err)
		assert.Equal(t, habit.CompletionDays, tracked.DaysCompleted)
		assert.True(t, tracked.Completed)
		assert.False(t, tracked.Active())
	})

	t.Run("rejects second track on the same day", func(t *testing.T) {
		t.Parallel()

		morning := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
		evening := time.Date(2026, 8, 30, 21, 30, 0, 0, time.UTC)

		h := habit.Habit{Name: "read", DaysCompleted: 1}
		tracked, err := h.Track(morning)
		require.NoError(t, err)

		_, err = tracked.Track(evening)
		assert.ErrorIs(t, err, habit.ErrAlreadyTrackedToday)
	})

	t.Run("allows tracking the next day", func(t *testing.T) {
		t.Parallel()

		day1 := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
		day2 := time.Date(2026, 8, 31, 0, 1, 0, 0, time.UTC)

		h := habit.Habit{Name: "read", DaysCompleted: 1}
		tracked, err := h.Track(day1)
		require.NoError(t, err)

		tracked, err = tracked.Track(day2)
		require.NoError(t, err)
		assert.Equal(t, 3, tracked.DaysCompleted)
	})

	t.Run("rejects tracking a completed habit", func(t *testing.T) {
		t.Parallel()

		h := habit.Habit{Name: "done", DaysCompleted: 7, Completed: true}
		_, err := h.Track(time.Now())
		assert.ErrorIs(t, err, habit.ErrHabitCompleted)
	})
}

func TestActiveCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, habit.ActiveCount(nil))
	assert.Equal(t, 3, habit.ActiveCount(makeHabits(3, 2)))
	assert.Equal(t, 0, habit.ActiveCount(makeHabits(0, 4)))
}
