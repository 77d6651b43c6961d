// Package cycle computes the position within a menstrual cycle and the
// phase it falls in.
//
// Everything here is a pure function of its inputs: no state is kept between
// calls and nothing is read from the clock unless a caller asks for "today".
package cycle

import (
	"fmt"
	"slices"
	"time"
)

// Cycle length bounds used by callers that accept user input.
const (
	DefaultCycleLength = 28
	MinCycleLength     = 21
	MaxCycleLength     = 45
)

// Params are the inputs of a cycle evaluation.
type Params struct {
	LastPeriodStart time.Time // First day of the most recent period
	CycleLength     int       // Days; non-positive values are rejected
}

// Validate checks that the cycle length is usable.
func (p Params) Validate() error {
	if p.CycleLength <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCycleLength, p.CycleLength)
	}
	return nil
}

// State is the derived position within the current cycle.
// It is recomputed on demand and never stored.
type State struct {
	CycleDay     int
	CycleLength  int
	Phase        Phase
	Label        string
	Color        string
	Description  string
	OptimalTasks []string
}

// ClampCycleLength bounds a user-supplied cycle length to 21..45 days.
// Zero or negative input yields DefaultCycleLength.
func ClampCycleLength(n int) int {
	if n <= 0 {
		return DefaultCycleLength
	}
	return min(max(n, MinCycleLength), MaxCycleLength)
}

// ComputeCycleDay returns the 1-based day within the current cycle.
//
// Both dates are reduced to their calendar date before subtracting, so the
// time of day never shifts the result. The result is always in [1, cycleLength],
// even when lastPeriodStart is after asOf.
func ComputeCycleDay(lastPeriodStart time.Time, cycleLength int, asOf time.Time) (int, error) {
	if cycleLength <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCycleLength, cycleLength)
	}

	elapsed := DaysBetween(lastPeriodStart, asOf)

	day := elapsed%cycleLength + 1
	if day <= 0 {
		day += cycleLength
	}
	return day, nil
}

// ClassifyPhase maps a cycle day to its phase using the fixed boundaries.
// Any day past the ovulatory window is luteal, including days beyond
// cycleLength and non-positive days that fall through every other rule.
func ClassifyPhase(cycleDay, cycleLength int) State {
	phase := phaseForDay(cycleDay)
	meta := phaseTable[phase]

	return State{
		CycleDay:     cycleDay,
		CycleLength:  cycleLength,
		Phase:        phase,
		Label:        meta.label,
		Color:        meta.color,
		Description:  meta.description,
		OptimalTasks: slices.Clone(meta.optimalTasks),
	}
}

func phaseForDay(cycleDay int) Phase {
	switch {
	case cycleDay >= 1 && cycleDay <= MenstrualEnd:
		return PhaseMenstrual
	case cycleDay > MenstrualEnd && cycleDay <= FollicularEnd:
		return PhaseFollicular
	case cycleDay > FollicularEnd && cycleDay <= OvulatoryEnd:
		return PhaseOvulatory
	default:
		return PhaseLuteal
	}
}

// CurrentState evaluates the cycle as of the given moment.
func CurrentState(params Params, asOf time.Time) (State, error) {
	day, err := ComputeCycleDay(params.LastPeriodStart, params.CycleLength, asOf)
	if err != nil {
		return State{}, err
	}
	return ClassifyPhase(day, params.CycleLength), nil
}

// StateOn evaluates the cycle for an arbitrary calendar date, such as the
// date a task is scheduled for.
func StateOn(params Params, date time.Time) (State, error) {
	return CurrentState(params, date)
}

// Today evaluates the cycle as of the current moment.
//
//wallclock:allow
func Today(params Params) (State, error) {
	return CurrentState(params, time.Now())
}

// NextPhase returns the phase that follows the given state and how many days
// remain until it starts. A cycle too short to leave its phase returns the
// same phase and zero.
func NextPhase(state State) (Phase, int) {
	length := state.CycleLength
	if length <= 0 {
		return state.Phase, 0
	}
	for k := 1; k <= length; k++ {
		day := (state.CycleDay-1+k)%length + 1
		if day <= 0 {
			day += length
		}
		if next := phaseForDay(day); next != state.Phase {
			return next, k
		}
	}
	return state.Phase, 0
}

// DaysBetween returns the whole calendar days from a to b, negative when b is
// before a. Dates are compared by their year/month/day fields only.
func DaysBetween(a, b time.Time) int {
	return int(CalendarDate(b).Sub(CalendarDate(a)).Hours() / 24)
}

// CalendarDate truncates t to midnight UTC of its own calendar date.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
