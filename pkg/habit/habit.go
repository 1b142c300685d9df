package habit

import "time"

// CompletionDays is the number of tracked days after which a habit counts as
// formed and stops occupying an active slot.
const CompletionDays = 7

// Habit is a single tracked habit. Completed is redundant with DaysCompleted
// reaching CompletionDays but is stored explicitly so list reads never have
// to recompute it.
type Habit struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	DaysCompleted   int        `json:"daysCompleted"`
	Completed       bool       `json:"completed"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastTrackedDate *time.Time `json:"lastTrackedDate,omitempty"`
}

// Active reports whether the habit still counts against the active-habit
// limit. Completed habits are kept for history but impose no ceiling.
func (h Habit) Active() bool {
	return !h.Completed
}

// TrackedOn reports whether the habit was already tracked on the calendar
// day of t. Progress may be recorded at most once per day.
func (h Habit) TrackedOn(t time.Time) bool {
	if h.LastTrackedDate == nil {
		return false
	}
	return h.LastTrackedDate.Format("2006-01-02") == t.Format("2006-01-02")
}

// Track records one day of progress at time now and returns the updated
// habit. It enforces the one-track-per-day rule and the completion
// invariant: DaysCompleted caps at CompletionDays and Completed flips to
// true exactly when the cap is reached.
func (h Habit) Track(now time.Time) (Habit, error) {
	if h.Completed {
		return h, ErrHabitCompleted
	}
	if h.TrackedOn(now) {
		return h, ErrAlreadyTrackedToday
	}

	h.DaysCompleted++
	if h.DaysCompleted >= CompletionDays {
		h.DaysCompleted = CompletionDays
		h.Completed = true
	}
	h.LastTrackedDate = &now
	return h, nil
}

// ActiveCount returns the number of non-completed habits in the list.
func ActiveCount(habits []Habit) int {
	n := 0
	for _, h := range habits {
		if h.Active() {
			n++
		}
	}
	return n
}
