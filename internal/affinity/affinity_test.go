package affinity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

func TestDetectOptimalPhase(t *testing.T) {
	tests := []struct {
		text string
		want cycle.Phase
	}{
		{"Brainstorm new marketing ideas", cycle.PhaseFollicular},
		{"Prepare and deliver the board presentation", cycle.PhaseOvulatory},
		{"Proofread and finish the report", cycle.PhaseLuteal},
		{"Research and plan Q3 strategy", cycle.PhaseMenstrual},
		{"Buy groceries", cycle.PhaseAny},
		{"", cycle.PhaseAny},
		{"DESIGN the landing page", cycle.PhaseFollicular},
		{"Client pitch", cycle.PhaseOvulatory},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectOptimalPhase(tt.text))
		})
	}
}

func TestDetectOptimalPhase_FirstFamilyWins(t *testing.T) {
	// creative is checked before detail
	assert.Equal(t, cycle.PhaseFollicular, DetectOptimalPhase("Review the design mockups"))
	// presentation is checked before planning
	assert.Equal(t, cycle.PhaseOvulatory, DetectOptimalPhase("Plan the demo"))
}

func TestIsOptimalTiming(t *testing.T) {
	assert.True(t, IsOptimalTiming("Buy groceries", cycle.PhaseMenstrual))
	assert.False(t, IsOptimalTiming("Brainstorm ideas", cycle.PhaseLuteal))
	assert.True(t, IsOptimalTiming("Brainstorm ideas", cycle.PhaseFollicular))

	for _, phase := range cycle.Phases() {
		assert.True(t, IsOptimalTiming("Water the garden", phase), "no preference is always optimal")
	}
}

func TestEvaluate(t *testing.T) {
	got := Evaluate("Edit the chapter", cycle.PhaseLuteal)

	assert.Equal(t, cycle.PhaseLuteal, got.Phase)
	assert.Equal(t, "Luteal", got.Display.Name)
	assert.True(t, got.OptimalNow)

	got = Evaluate("Edit the chapter", cycle.PhaseOvulatory)
	assert.False(t, got.OptimalNow)
}

func TestPhaseDisplayInfo(t *testing.T) {
	for _, phase := range cycle.Phases() {
		info := PhaseDisplayInfo(phase)
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Color)
		assert.NotEmpty(t, info.Glyph)
		assert.NotEqual(t, "Any time", info.Name)
	}

	assert.Equal(t, "Any time", PhaseDisplayInfo(cycle.PhaseAny).Name)
	assert.Equal(t, "Any time", PhaseDisplayInfo(cycle.Phase("unknown")).Name)
}

func TestAnalyzeTaskType(t *testing.T) {
	tests := []struct {
		text string
		want domain.TaskType
	}{
		{"Write the blog post", domain.TaskTypeCreative},
		{"Demo the new feature", domain.TaskTypePresentation},
		{"Check invoices", domain.TaskTypeDetail},
		{"Define annual goals", domain.TaskTypePlanning},
		{"Call the team", domain.TaskTypeSocial},
		{"Buy groceries", domain.TaskTypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeTaskType(tt.text))
		})
	}
}

func TestExtractTaskTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text unchanged", "Write report", "Write report"},
		{"four words unchanged", "Send the weekly update", "Send the weekly update"},
		{"starts at action word", "Please take some time to review the quarterly budget numbers", "review the quarterly budget"},
		{"action word near the end", "Before friday we should organize files", "organize files"},
		{"no action word", "Buy milk eggs bread and butter", "Buy milk eggs bread..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTaskTitle(tt.text))
		})
	}
}

func TestTaskTypeGlyph(t *testing.T) {
	for _, tt := range domain.TaskTypes() {
		assert.NotEmpty(t, TaskTypeGlyph(tt))
	}
	assert.Equal(t, TaskTypeGlyph(domain.TaskTypeGeneral), TaskTypeGlyph("unknown"))
}
