package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cyclesync/cyclesync/internal/cycle"
)

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if len(s) > MaxTitleLength {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// NewTaskType validates and creates a TaskType.
// Empty input yields TaskTypeGeneral.
func NewTaskType(s string) (TaskType, error) {
	if strings.TrimSpace(s) == "" {
		return TaskTypeGeneral, nil
	}

	taskType := TaskType(strings.ToLower(strings.TrimSpace(s)))

	switch taskType {
	case TaskTypeCreative, TaskTypePresentation, TaskTypeDetail,
		TaskTypePlanning, TaskTypeSocial, TaskTypeGeneral:
		return taskType, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTaskType, s)
	}
}

// NewLevel validates and creates a Level.
// Empty input yields LevelMedium.
func NewLevel(s string) (Level, error) {
	if strings.TrimSpace(s) == "" {
		return LevelMedium, nil
	}

	level := Level(strings.ToLower(strings.TrimSpace(s)))

	switch level {
	case LevelLow, LevelMedium, LevelHigh:
		return level, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// NewConfidence validates a confidence score in [0, 1].
func NewConfidence(v float64) (float64, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConfidence, v)
	}
	return v, nil
}

// ClampConfidence forces a score into [0, 1]. NaN becomes DefaultConfidence.
func ClampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultConfidence
	}
	return min(max(v, 0), 1)
}

// NewPhase validates a canonical phase tag. The "any" sentinel is rejected
// because stored tasks always sit on a concrete day.
func NewPhase(s string) (cycle.Phase, error) {
	phase, err := cycle.ParsePhase(s)
	if err != nil || !phase.IsCanonical() {
		return "", fmt.Errorf("%w: %s", ErrInvalidPhase, s)
	}
	return phase, nil
}

// DateLayout is the wire format for calendar dates.
const DateLayout = time.DateOnly

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
// RFC 3339 timestamps are accepted and reduced to their date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return cycle.CalendarDate(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NewWeekday parses a weekday name, full ("Monday") or three-letter ("mon").
func NewWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdays[key]; ok {
		return d, nil
	}
	if len(key) == 3 {
		for name, d := range weekdays {
			if strings.HasPrefix(name, key) {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidWeekday, s)
}

// NewEnergy validates a 1..5 self-reported energy score.
func NewEnergy(n int) (int, error) {
	if n < 1 || n > 5 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidEnergy, n)
	}
	return n, nil
}
