// Package affinity maps free-text task descriptions to the cycle phase they
// suit best and produces the deterministic scheduling fallback.
//
// Matching is a coarse substring heuristic over fixed, ordered keyword
// families. Ambiguous text resolves to whichever family is checked first;
// there are no confidence scores.
package affinity

import (
	"strings"

	"github.com/cyclesync/cyclesync/internal/cycle"
)

type keywordFamily struct {
	phase    cycle.Phase
	keywords []string
}

// phaseFamilies is checked in order; the first family with a match wins.
var phaseFamilies = []keywordFamily{
	{cycle.PhaseFollicular, []string{"brainstorm", "creative", "idea", "design"}},
	{cycle.PhaseOvulatory, []string{"present", "meeting", "demo", "pitch", "network"}},
	{cycle.PhaseLuteal, []string{"review", "edit", "proofread", "organize", "complete", "finish", "detail"}},
	{cycle.PhaseMenstrual, []string{"plan", "strategy", "research"}},
}

// DetectOptimalPhase returns the phase a task description is best suited to,
// or cycle.PhaseAny when no keyword family matches.
func DetectOptimalPhase(text string) cycle.Phase {
	lower := strings.ToLower(text)
	for _, family := range phaseFamilies {
		if containsAny(lower, family.keywords) {
			return family.phase
		}
	}
	return cycle.PhaseAny
}

// IsOptimalTiming reports whether now is a good time for the task: its
// detected phase is the current phase, or it has no preference.
func IsOptimalTiming(text string, currentPhase cycle.Phase) bool {
	detected := DetectOptimalPhase(text)
	return detected == cycle.PhaseAny || detected == currentPhase
}

// Affinity is the derived fit of a task against the current phase.
type Affinity struct {
	Phase      cycle.Phase
	Display    DisplayInfo
	OptimalNow bool
}

// Evaluate bundles detection, display info and the optimal-now flag.
func Evaluate(text string, currentPhase cycle.Phase) Affinity {
	phase := DetectOptimalPhase(text)
	return Affinity{
		Phase:      phase,
		Display:    PhaseDisplayInfo(phase),
		OptimalNow: phase == cycle.PhaseAny || phase == currentPhase,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
