package domain

import "errors"

// Domain errors returned by repository implementations and value object
// constructors. Callers compare with errors.Is; wrapped errors carry the
// offending value.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTaskNotFound indicates the specified scheduled task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrChecklistItemNotFound indicates the specified checklist entry does not exist.
	ErrChecklistItemNotFound = errors.New("checklist item not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")

	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title must be at most 255 characters")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidTaskType     = errors.New("invalid task type")
	ErrInvalidLevel        = errors.New("invalid level")
	ErrInvalidConfidence   = errors.New("confidence must be between 0 and 1")
	ErrInvalidPhase        = errors.New("invalid phase")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidWeekday      = errors.New("invalid weekday")
	ErrInvalidEnergy       = errors.New("energy must be between 1 and 5")
	ErrInvalidCycleDay     = errors.New("cycle day must be positive")
)
