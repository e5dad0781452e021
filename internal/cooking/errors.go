package cooking

import "errors"

// Sentinel errors returned by session and timer operations.
var (
	ErrSessionNotFound    = errors.New("cooking session not found")
	ErrSessionCompleted   = errors.New("cooking session already completed")
	ErrNoSteps            = errors.New("recipe has no steps")
	ErrStepOutOfRange     = errors.New("step index out of range")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrTimerNotFound      = errors.New("timer not found")
	ErrInvalidDuration    = errors.New("timer duration must be positive")
)
