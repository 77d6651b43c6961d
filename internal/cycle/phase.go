package cycle

import (
	"errors"
	"fmt"
	"strings"
)

// Phase is a named segment of the menstrual cycle.
// Value object - immutable string enum.
type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulatory  Phase = "ovulatory"
	PhaseLuteal     Phase = "luteal"

	// PhaseAny means no phase preference. It is never produced by
	// ClassifyPhase; task affinity uses it when no keyword family matches.
	PhaseAny Phase = "any"
)

// Fixed phase boundaries (1-based cycle days, inclusive).
// Every day after OvulatoryEnd is luteal, including days beyond the cycle length.
const (
	MenstrualEnd  = 5
	FollicularEnd = 13
	OvulatoryEnd  = 16
)

var (
	// ErrInvalidCycleLength is returned when a cycle length is not a positive integer.
	ErrInvalidCycleLength = errors.New("cycle length must be positive")

	// ErrInvalidPhase indicates an unknown phase tag.
	ErrInvalidPhase = errors.New("invalid phase")
)

// Phases returns the four canonical phases in cycle order.
func Phases() []Phase {
	return []Phase{PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal}
}

// ParsePhase validates a phase tag. The sentinel "any" is accepted.
func ParsePhase(s string) (Phase, error) {
	phase := Phase(strings.ToLower(strings.TrimSpace(s)))

	switch phase {
	case PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal, PhaseAny:
		return phase, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPhase, s)
	}
}

// IsCanonical reports whether p is one of the four cycle phases (not "any").
func (p Phase) IsCanonical() bool {
	switch p {
	case PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal:
		return true
	}
	return false
}

func (p Phase) String() string {
	return string(p)
}

// phaseMeta is the display metadata attached to a classified state.
type phaseMeta struct {
	label        string
	color        string
	description  string
	optimalTasks []string
}

var phaseTable = map[Phase]phaseMeta{
	PhaseMenstrual: {
		label:        "Menstruation",
		color:        "#ef4444",
		description:  "Time for rest, reflection, and intuitive thinking",
		optimalTasks: []string{"Planning", "Reflection", "Research"},
	},
	PhaseFollicular: {
		label:        "Follicular Phase",
		color:        "#10b981",
		description:  "Rising energy perfect for new projects and learning",
		optimalTasks: []string{"Creative work", "Learning", "New projects"},
	},
	PhaseOvulatory: {
		label:        "Ovulation",
		color:        "#f59e0b",
		description:  "Peak energy and communication skills",
		optimalTasks: []string{"Presentations", "Networking", "Important meetings"},
	},
	PhaseLuteal: {
		label:        "Luteal Phase",
		color:        "#8b5cf6",
		description:  "Focus and attention to detail for completing projects",
		optimalTasks: []string{"Editing", "Organizing", "Detail work"},
	},
}

// LutealStage subdivides the luteal phase for presentation only.
// It returns "early luteal" or "late luteal"; other phases return "".
func LutealStage(cycleDay, cycleLength int) string {
	if phaseForDay(cycleDay) != PhaseLuteal {
		return ""
	}
	// Late luteal covers the last four days of the cycle.
	if cycleDay > cycleLength-4 {
		return "late luteal"
	}
	return "early luteal"
}
