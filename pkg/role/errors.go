package role

import "errors"

var (
	ErrUnknownRole        = errors.New("unknown role")
	ErrUserNotFound       = errors.New("user not found")
	ErrPlanNotFound       = errors.New("plan not found for role")
	ErrInvalidPlanConfig  = errors.New("invalid plan configuration")
	ErrFailedToLoadPlans  = errors.New("failed to load plans")
	ErrUpgradeUnavailable = errors.New("role upgrade unavailable")
)
