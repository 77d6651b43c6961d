package domain

// TaskType classifies what kind of work a task is.
// Value object - immutable string enum.
type TaskType string

const (
	TaskTypeCreative     TaskType = "creative"
	TaskTypePresentation TaskType = "presentation"
	TaskTypeDetail       TaskType = "detail"
	TaskTypePlanning     TaskType = "planning"
	TaskTypeSocial       TaskType = "social"
	TaskTypeGeneral      TaskType = "general"
)

// TaskTypes returns every task type, general last.
func TaskTypes() []TaskType {
	return []TaskType{
		TaskTypeCreative, TaskTypePresentation, TaskTypeDetail,
		TaskTypePlanning, TaskTypeSocial, TaskTypeGeneral,
	}
}

// Level is the energy or focus a task demands.
// Value object - immutable string enum.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// SuggestionSource records which path produced a scheduling suggestion.
type SuggestionSource string

const (
	SourceModel    SuggestionSource = "model"
	SourceFallback SuggestionSource = "fallback"
)

// Default values applied when a request leaves a field empty.
const (
	DefaultFlexibilityDays = 7
	DefaultConfidence      = 0.7
	MaxTitleLength         = 255
)
