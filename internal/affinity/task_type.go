package affinity

import (
	"strings"

	"github.com/cyclesync/cyclesync/internal/domain"
)

type taskTypeFamily struct {
	taskType domain.TaskType
	keywords []string
}

// taskTypeFamilies is checked in order, like phaseFamilies. The word lists
// differ from the phase families: "write" is creative here and "network"
// is social.
var taskTypeFamilies = []taskTypeFamily{
	{domain.TaskTypeCreative, []string{"brainstorm", "design", "write", "creative", "art", "idea"}},
	{domain.TaskTypePresentation, []string{"present", "demo", "meeting", "speak", "pitch"}},
	{domain.TaskTypeDetail, []string{"review", "edit", "organize", "detail", "check", "proofread"}},
	{domain.TaskTypePlanning, []string{"plan", "strategy", "goal", "analyze", "research"}},
	{domain.TaskTypeSocial, []string{"network", "team", "social", "call", "collaborate"}},
}

// AnalyzeTaskType guesses a task type from its description.
// Text that matches no family is general.
func AnalyzeTaskType(description string) domain.TaskType {
	lower := strings.ToLower(description)
	for _, family := range taskTypeFamilies {
		if containsAny(lower, family.keywords) {
			return family.taskType
		}
	}
	return domain.TaskTypeGeneral
}

var actionWords = []string{"review", "write", "plan", "design", "create", "analyze", "organize", "present"}

const titleWords = 4

// ExtractTaskTitle derives a short title from a longer description.
//
// Descriptions of up to four words are returned unchanged. Otherwise the
// title is four words starting at the first action word, or the first four
// words followed by "..." when there is none.
func ExtractTaskTitle(description string) string {
	description = strings.TrimSpace(description)
	words := strings.Fields(description)
	if len(words) <= titleWords {
		return description
	}

	for i, w := range words {
		if containsAny(strings.ToLower(w), actionWords) {
			return strings.Join(words[i:min(i+titleWords, len(words))], " ")
		}
	}

	return strings.Join(words[:titleWords], " ") + "..."
}

var taskTypeGlyphs = map[domain.TaskType]string{
	domain.TaskTypeCreative:     "🎨",
	domain.TaskTypePresentation: "📊",
	domain.TaskTypeDetail:       "🔍",
	domain.TaskTypePlanning:     "📋",
	domain.TaskTypeSocial:       "👥",
	domain.TaskTypeGeneral:      "📝",
}

// TaskTypeGlyph returns the glyph shown next to a task type.
func TaskTypeGlyph(t domain.TaskType) string {
	if g, ok := taskTypeGlyphs[t]; ok {
		return g
	}
	return taskTypeGlyphs[domain.TaskTypeGeneral]
}
