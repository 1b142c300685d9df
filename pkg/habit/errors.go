package habit

import "errors"

var (
	ErrHabitNotFound       = errors.New("habit not found")
	ErrEmptyName           = errors.New("habit name is required")
	ErrAlreadyTrackedToday = errors.New("habit progress already tracked today")
	ErrHabitCompleted      = errors.New("habit is already completed")
	ErrLimitReached        = errors.New("habit limit reached for current plan")
)
