package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurahabits/aura/pkg/habit"
	"github.com/aurahabits/aura/pkg/pg"
)

// Habits is the habits store. It satisfies habit.Store.
type Habits struct {
	db *pgxpool.Pool
}

func NewHabits(db *pgxpool.Pool) *Habits {
	return &Habits{db: db}
}

const habitColumns = `id, user_id, name, days_completed, completed, created_at, last_tracked_date`

// List returns every habit the user has ever created, oldest first.
// Completed habits are included; the free-tier limit counts them.
func (s *Habits) List(ctx context.Context, userID string) ([]habit.Habit, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+habitColumns+`
		FROM habits
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: list habits for %s: %w", userID, err)
	}
	defer rows.Close()

	var habits []habit.Habit
	for rows.Next() {
		var h habit.Habit
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.DaysCompleted, &h.Completed, &h.CreatedAt, &h.LastTrackedDate); err != nil {
			return nil, fmt.Errorf("storage: scan habit row: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list habits for %s: %w", userID, err)
	}
	return habits, nil
}

// Get returns the habit or habit.ErrHabitNotFound. Scoping by user ID makes
// another user's habit indistinguishable from a missing one.
func (s *Habits) Get(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	var h habit.Habit
	err := s.db.QueryRow(ctx, `
		SELECT `+habitColumns+`
		FROM habits
		WHERE user_id = $1 AND id = $2`, userID, habitID,
	).Scan(&h.ID, &h.UserID, &h.Name, &h.DaysCompleted, &h.Completed, &h.CreatedAt, &h.LastTrackedDate)
	if pg.IsNotFoundError(err) {
		return habit.Habit{}, habit.ErrHabitNotFound
	}
	if err != nil {
		return habit.Habit{}, fmt.Errorf("storage: get habit %s: %w", habitID, err)
	}
	return h, nil
}

// Create inserts a new habit with a generated ID.
func (s *Habits) Create(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	h.ID = uuid.New().String()
	err := s.db.QueryRow(ctx, `
		INSERT INTO habits (id, user_id, name, days_completed, completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+habitColumns,
		h.ID, h.UserID, h.Name, h.DaysCompleted, h.Completed,
	).Scan(&h.ID, &h.UserID, &h.Name, &h.DaysCompleted, &h.Completed, &h.CreatedAt, &h.LastTrackedDate)
	if err != nil {
		return habit.Habit{}, fmt.Errorf("storage: create habit for %s: %w", h.UserID, err)
	}
	return h, nil
}

// Update persists tracking progress and completion state.
func (s *Habits) Update(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	var out habit.Habit
	err := s.db.QueryRow(ctx, `
		UPDATE habits
		SET days_completed = $3, completed = $4, last_tracked_date = $5
		WHERE user_id = $1 AND id = $2
		RETURNING `+habitColumns,
		h.UserID, h.ID, h.DaysCompleted, h.Completed, h.LastTrackedDate,
	).Scan(&out.ID, &out.UserID, &out.Name, &out.DaysCompleted, &out.Completed, &out.CreatedAt, &out.LastTrackedDate)
	if pg.IsNotFoundError(err) {
		return habit.Habit{}, habit.ErrHabitNotFound
	}
	if err != nil {
		return habit.Habit{}, fmt.Errorf("storage: update habit %s: %w", h.ID, err)
	}
	return out, nil
}
