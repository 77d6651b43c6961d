package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/application/checklist"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

// === Wire types ===

type displayDTO struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Glyph string `json:"glyph"`
}

type alternativeDTO struct {
	Date       string  `json:"date"`
	CycleDay   int     `json:"cycle_day"`
	Phase      string  `json:"phase"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

type constraintsDTO struct {
	Description     string   `json:"description,omitempty"`
	DueDate         string   `json:"due_date,omitempty"`
	AvailableDays   []string `json:"available_days,omitempty"`
	FlexibilityDays int      `json:"flexibility_days,omitempty"`
}

type taskDTO struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	TaskType         string           `json:"task_type"`
	TaskTypeGlyph    string           `json:"task_type_glyph"`
	EnergyRequired   string           `json:"energy_required"`
	FocusRequired    string           `json:"focus_required"`
	ScheduledDate    string           `json:"scheduled_date"`
	CycleDay         int              `json:"cycle_day"`
	Phase            string           `json:"phase"`
	PhaseDisplay     displayDTO       `json:"phase_display"`
	Confidence       float64          `json:"confidence"`
	Reasoning        []string         `json:"reasoning"`
	OptimizationTips []string         `json:"optimization_tips"`
	Alternatives     []alternativeDTO `json:"alternatives"`
	ShortSummary     string           `json:"short_summary,omitempty"`
	Constraints      constraintsDTO   `json:"constraints"`
	Completed        bool             `json:"completed"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type suggestionDTO struct {
	SuggestedDate    string           `json:"suggested_date"`
	CycleDay         int              `json:"cycle_day"`
	Phase            string           `json:"phase"`
	PhaseDisplay     displayDTO       `json:"phase_display"`
	Confidence       float64          `json:"confidence"`
	Reasoning        []string         `json:"reasoning"`
	Alternatives     []alternativeDTO `json:"alternatives"`
	OptimizationTips []string         `json:"optimization_tips"`
	HormonalInsight  string           `json:"hormonal_insight,omitempty"`
	ShortSummary     string           `json:"short_summary,omitempty"`
	Source           string           `json:"source"`
}

type stateDTO struct {
	CycleDay     int        `json:"cycle_day"`
	CycleLength  int        `json:"cycle_length"`
	Phase        string     `json:"phase"`
	Label        string     `json:"label"`
	Color        string     `json:"color"`
	Description  string     `json:"description"`
	OptimalTasks []string   `json:"optimal_tasks"`
	LutealStage  string     `json:"luteal_stage,omitempty"`
	Display      displayDTO `json:"display"`
}

type checklistItemDTO struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"created_at"`
	OptimalPhase string     `json:"optimal_phase"`
	PhaseDisplay displayDTO `json:"phase_display"`
	OptimalNow   bool       `json:"optimal_now"`
}

type quickLogDTO struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	CycleDay  int       `json:"cycle_day"`
	Phase     string    `json:"phase"`
	Energy    int       `json:"energy"`
	Mood      string    `json:"mood,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// === Domain -> wire ===

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func toDisplayDTO(d affinity.DisplayInfo) displayDTO {
	return displayDTO{Name: d.Name, Color: d.Color, Glyph: d.Glyph}
}

func toAlternativeDTOs(alts []domain.Alternative) []alternativeDTO {
	out := make([]alternativeDTO, 0, len(alts))
	for _, a := range alts {
		out = append(out, alternativeDTO{
			Date:       formatDate(a.Date),
			CycleDay:   a.CycleDay,
			Phase:      string(a.Phase),
			Confidence: a.Confidence,
			Reason:     a.Reason,
		})
	}
	return out
}

func toConstraintsDTO(c domain.Constraints) constraintsDTO {
	out := constraintsDTO{Description: c.Description, FlexibilityDays: c.FlexibilityDays}
	if c.DueDate != nil {
		out.DueDate = formatDate(*c.DueDate)
	}
	for _, d := range c.AvailableDays {
		out.AvailableDays = append(out.AvailableDays, strings.ToLower(d.String()))
	}
	return out
}

func toTaskDTO(t *domain.ScheduledTask) taskDTO {
	return taskDTO{
		ID:               t.ID,
		Title:            t.Title,
		TaskType:         string(t.TaskType),
		TaskTypeGlyph:    affinity.TaskTypeGlyph(t.TaskType),
		EnergyRequired:   string(t.EnergyRequired),
		FocusRequired:    string(t.FocusRequired),
		ScheduledDate:    formatDate(t.ScheduledDate),
		CycleDay:         t.CycleDay,
		Phase:            string(t.Phase),
		PhaseDisplay:     toDisplayDTO(affinity.PhaseDisplayInfo(t.Phase)),
		Confidence:       t.Confidence,
		Reasoning:        nonNil(t.Reasoning),
		OptimizationTips: nonNil(t.OptimizationTips),
		Alternatives:     toAlternativeDTOs(t.Alternatives),
		ShortSummary:     t.ShortSummary,
		Constraints:      toConstraintsDTO(t.Constraints),
		Completed:        t.Completed,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toTaskDTOs(tasks []*domain.ScheduledTask) []taskDTO {
	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	return out
}

func toSuggestionDTO(s domain.Suggestion) suggestionDTO {
	return suggestionDTO{
		SuggestedDate:    formatDate(s.SuggestedDate),
		CycleDay:         s.CycleDay,
		Phase:            string(s.Phase),
		PhaseDisplay:     toDisplayDTO(affinity.PhaseDisplayInfo(s.Phase)),
		Confidence:       s.Confidence,
		Reasoning:        nonNil(s.Reasoning),
		Alternatives:     toAlternativeDTOs(s.Alternatives),
		OptimizationTips: nonNil(s.OptimizationTips),
		HormonalInsight:  s.HormonalInsight,
		ShortSummary:     s.ShortSummary,
		Source:           string(s.Source),
	}
}

func toStateDTO(s cycle.State) stateDTO {
	return stateDTO{
		CycleDay:     s.CycleDay,
		CycleLength:  s.CycleLength,
		Phase:        string(s.Phase),
		Label:        s.Label,
		Color:        s.Color,
		Description:  s.Description,
		OptimalTasks: nonNil(s.OptimalTasks),
		LutealStage:  cycle.LutealStage(s.CycleDay, s.CycleLength),
		Display:      toDisplayDTO(affinity.PhaseDisplayInfo(s.Phase)),
	}
}

func toChecklistItemDTO(item checklist.AnnotatedItem) checklistItemDTO {
	return checklistItemDTO{
		ID:           item.ID,
		Title:        item.Title,
		Completed:    item.Completed,
		CreatedAt:    item.CreatedAt,
		OptimalPhase: string(item.Phase),
		PhaseDisplay: toDisplayDTO(item.Display),
		OptimalNow:   item.OptimalNow,
	}
}

func toQuickLogDTO(l domain.QuickLog) quickLogDTO {
	return quickLogDTO{
		ID:        l.ID,
		Date:      formatDate(l.Date),
		CycleDay:  l.CycleDay,
		Phase:     string(l.Phase),
		Energy:    l.Energy,
		Mood:      l.Mood,
		Note:      l.Note,
		CreatedAt: l.CreatedAt,
	}
}

// === Wire -> domain ===

// cycleInput is embedded by requests that carry the caller's cycle settings.
type cycleInput struct {
	LastPeriodStart string `json:"last_period_start"`
	CycleLength     int    `json:"cycle_length"`
}

// params validates the cycle settings. A missing length uses the default;
// a supplied one is bounded to the supported range.
func (c cycleInput) params() (cycle.Params, error) {
	if strings.TrimSpace(c.LastPeriodStart) == "" {
		return cycle.Params{}, fmt.Errorf("%w: last_period_start is required", domain.ErrInvalidDate)
	}
	start, err := domain.ParseDate(c.LastPeriodStart)
	if err != nil {
		return cycle.Params{}, err
	}

	length := c.CycleLength
	switch {
	case length < 0:
		return cycle.Params{}, fmt.Errorf("%w: %d", cycle.ErrInvalidCycleLength, length)
	case length == 0:
		length = cycle.DefaultCycleLength
	default:
		length = cycle.ClampCycleLength(length)
	}
	return cycle.Params{LastPeriodStart: start, CycleLength: length}, nil
}

func (c cycleInput) present() bool {
	return strings.TrimSpace(c.LastPeriodStart) != ""
}

func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toAlternatives(dtos []alternativeDTO) ([]domain.Alternative, error) {
	out := make([]domain.Alternative, 0, len(dtos))
	for _, a := range dtos {
		date, err := domain.ParseDate(a.Date)
		if err != nil {
			return nil, err
		}
		phase, err := domain.NewPhase(a.Phase)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Alternative{
			Date:       date,
			CycleDay:   a.CycleDay,
			Phase:      phase,
			Confidence: domain.ClampConfidence(a.Confidence),
			Reason:     a.Reason,
		})
	}
	return out, nil
}

func toConstraints(dto constraintsDTO) (domain.Constraints, error) {
	due, err := parseOptionalDate(dto.DueDate)
	if err != nil {
		return domain.Constraints{}, err
	}
	out := domain.Constraints{
		Description:     dto.Description,
		DueDate:         due,
		FlexibilityDays: dto.FlexibilityDays,
	}
	for _, name := range dto.AvailableDays {
		day, err := domain.NewWeekday(name)
		if err != nil {
			return domain.Constraints{}, err
		}
		out.AvailableDays = append(out.AvailableDays, day)
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
