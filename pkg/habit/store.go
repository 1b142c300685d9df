package habit

import "context"

// Store persists habits. List returns every habit the user has ever
// created, completed ones included; the admission policy depends on seeing
// the full history for free-tier counting.
type Store interface {
	List(ctx context.Context, userID string) ([]Habit, error)

	// Get returns the habit or ErrHabitNotFound. The userID guards against
	// cross-user access at the query level.
	Get(ctx context.Context, userID, habitID string) (Habit, error)

	Create(ctx context.Context, h Habit) (Habit, error)

	// Update persists tracking progress and completion state.
	Update(ctx context.Context, h Habit) (Habit, error)
}
