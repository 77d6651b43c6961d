package domain

import (
	"time"

	"github.com/cyclesync/cyclesync/internal/cycle"
)

// ScheduledTask is the aggregate root of the persisted task store.
// It records a task together with the cycle position it was placed on.
//
// CycleDay and Phase describe ScheduledDate, not the day the task was created.
type ScheduledTask struct {
	ID    string
	Title string

	TaskType       TaskType
	EnergyRequired Level
	FocusRequired  Level

	// Placement
	ScheduledDate time.Time // Calendar date (UTC midnight)
	CycleDay      int
	Phase         cycle.Phase
	Confidence    float64

	// Explanation carried over from the accepted suggestion
	Reasoning        []string
	OptimizationTips []string
	Alternatives     []Alternative
	ShortSummary     string

	// Constraints the suggestion was produced under
	Constraints Constraints

	Completed bool

	// Timestamps (always UTC)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Alternative is a second-choice placement offered alongside a suggestion.
type Alternative struct {
	Date       time.Time
	CycleDay   int
	Phase      cycle.Phase
	Confidence float64
	Reason     string
}

// Constraints are the caller's limits on when a task can happen.
type Constraints struct {
	Description     string
	DueDate         *time.Time     // Optional
	AvailableDays   []time.Weekday // Empty means any day
	FlexibilityDays int
}

// AllowsDay reports whether a date falls on one of the available weekdays.
func (c Constraints) AllowsDay(date time.Time) bool {
	if len(c.AvailableDays) == 0 {
		return true
	}
	for _, d := range c.AvailableDays {
		if d == date.Weekday() {
			return true
		}
	}
	return false
}

// SuggestionInput describes a task to be placed on the calendar.
type SuggestionInput struct {
	Description    string
	TaskType       TaskType
	EnergyRequired Level
	FocusRequired  Level
	Constraints    Constraints
}

// Suggestion is a proposed date for a task with its explanation.
// It is never persisted directly; accepting it produces a ScheduledTask.
type Suggestion struct {
	SuggestedDate    time.Time
	CycleDay         int
	Phase            cycle.Phase
	Confidence       float64
	Reasoning        []string
	Alternatives     []Alternative
	OptimizationTips []string
	HormonalInsight  string
	ShortSummary     string
	Source           SuggestionSource
}

// ChecklistItem is a caller-owned quick task on the dashboard checklist.
type ChecklistItem struct {
	ID        string
	Title     string
	Completed bool
	CreatedAt time.Time
}

// QuickLog is a daily self-report stamped with the cycle position of its date.
type QuickLog struct {
	ID       string
	Date     time.Time
	CycleDay int
	Phase    cycle.Phase
	Energy   int // 1..5
	Mood     string
	Note     string

	CreatedAt time.Time
}
