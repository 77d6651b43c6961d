package affinity

import (
	"slices"
	"time"

	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

// Fallback reasoning and tips. The first reasoning line marks the suggestion
// as heuristic so callers and users can tell it apart from a model answer.
const (
	FallbackReason     = "Fallback recommendation - using enhanced cycle heuristics"
	FallbackTip        = "Consider your natural energy patterns during this cycle phase"
	FallbackSummary    = "Scheduled for tomorrow using cycle heuristics"
	BaselineConfidence = 0.6
)

type fallbackRule struct {
	taskType   domain.TaskType
	phases     []cycle.Phase
	confidence float64
	reason     string
}

var fallbackRules = []fallbackRule{
	{
		taskType:   domain.TaskTypeCreative,
		phases:     []cycle.Phase{cycle.PhaseFollicular, cycle.PhaseMenstrual},
		confidence: 0.8,
		reason:     "Creative tasks align well with follicular/menstrual phases when innovation peaks",
	},
	{
		taskType:   domain.TaskTypePresentation,
		phases:     []cycle.Phase{cycle.PhaseOvulatory},
		confidence: 0.9,
		reason:     "Presentation tasks optimal during ovulatory phase when confidence and communication skills peak",
	},
	{
		taskType:   domain.TaskTypeDetail,
		phases:     []cycle.Phase{cycle.PhaseLuteal},
		confidence: 0.85,
		reason:     "Detail work suits luteal phase when focus and attention to detail are enhanced",
	},
	{
		taskType:   domain.TaskTypePlanning,
		phases:     []cycle.Phase{cycle.PhaseMenstrual},
		confidence: 0.75,
		reason:     "Planning and strategic thinking align with menstrual phase introspection",
	},
}

// FallbackSuggestion places a task on the next calendar day after now.
//
// Confidence comes from a fixed rule table keyed on the task type and the
// current phase; unmatched pairs get BaselineConfidence. The cycle day and
// phase describe the suggested date, wrapping to day 1 after the last day of
// the cycle. It never fails: a state with no usable cycle length is treated
// as a default-length cycle.
func FallbackSuggestion(input domain.SuggestionInput, current cycle.State, now time.Time) domain.Suggestion {
	length := current.CycleLength
	if length <= 0 {
		length = cycle.DefaultCycleLength
	}
	today := current.CycleDay
	if today < 1 || today > length {
		today = 1
	}

	tomorrow := cycle.CalendarDate(now).AddDate(0, 0, 1)
	nextDay := today%length + 1
	next := cycle.ClassifyPhase(nextDay, length)

	confidence := BaselineConfidence
	reasoning := []string{FallbackReason}
	if rule, ok := matchFallbackRule(input.TaskType, current.Phase); ok {
		confidence = rule.confidence
		reasoning = append(reasoning, rule.reason)
	}

	return domain.Suggestion{
		SuggestedDate:    tomorrow,
		CycleDay:         nextDay,
		Phase:            next.Phase,
		Confidence:       confidence,
		Reasoning:        reasoning,
		Alternatives:     []domain.Alternative{},
		OptimizationTips: []string{FallbackTip},
		HormonalInsight:  next.Description,
		ShortSummary:     FallbackSummary,
		Source:           domain.SourceFallback,
	}
}

func matchFallbackRule(taskType domain.TaskType, phase cycle.Phase) (fallbackRule, bool) {
	for _, rule := range fallbackRules {
		if rule.taskType == taskType && slices.Contains(rule.phases, phase) {
			return rule, true
		}
	}
	return fallbackRule{}, false
}
