package handler

import (
	"net/http"
	"strings"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/infrastructure/http/response"
)

type affinityRequest struct {
	Text         string `json:"text"`
	CurrentPhase string `json:"current_phase"`
}

type affinityResponse struct {
	Title         string     `json:"title"`
	OptimalPhase  string     `json:"optimal_phase"`
	PhaseDisplay  displayDTO `json:"phase_display"`
	OptimalNow    bool       `json:"optimal_now"`
	TaskType      string     `json:"task_type"`
	TaskTypeGlyph string     `json:"task_type_glyph"`
}

// EvaluateAffinity classifies free text: best phase, task type, and whether
// the current phase suits it.
func (h *Handler) EvaluateAffinity(w http.ResponseWriter, r *http.Request) {
	var req affinityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		response.ValidationError(w, "text", "must not be empty")
		return
	}

	current := cycle.PhaseAny
	if req.CurrentPhase != "" {
		phase, err := cycle.ParsePhase(req.CurrentPhase)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		current = phase
	}

	fit := affinity.Evaluate(req.Text, current)
	taskType := affinity.AnalyzeTaskType(req.Text)
	response.OK(w, affinityResponse{
		Title:         affinity.ExtractTaskTitle(req.Text),
		OptimalPhase:  string(fit.Phase),
		PhaseDisplay:  toDisplayDTO(fit.Display),
		OptimalNow:    fit.OptimalNow,
		TaskType:      string(taskType),
		TaskTypeGlyph: affinity.TaskTypeGlyph(taskType),
	})
}

type suggestRequest struct {
	cycleInput
	Description     string   `json:"description"`
	TaskType        string   `json:"task_type"`
	EnergyRequired  string   `json:"energy_required"`
	FocusRequired   string   `json:"focus_required"`
	DueDate         string   `json:"due_date"`
	AvailableDays   []string `json:"available_days"`
	FlexibilityDays int      `json:"flexibility_days"`
}

type suggestResponse struct {
	Title         string        `json:"title"`
	TaskType      string        `json:"task_type"`
	TaskTypeGlyph string        `json:"task_type_glyph"`
	Current       stateDTO      `json:"current"`
	Suggestion    suggestionDTO `json:"suggestion"`
}

// Suggest proposes a date for a task. A suggestion is always returned once
// the request validates; model trouble degrades to the heuristic fallback.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		response.ValidationError(w, "due_date", err.Error())
		return
	}

	result, err := h.scheduling.Suggest(r.Context(), scheduling.SuggestRequest{
		Description:     req.Description,
		TaskType:        req.TaskType,
		EnergyRequired:  req.EnergyRequired,
		FocusRequired:   req.FocusRequired,
		DueDate:         due,
		AvailableDays:   req.AvailableDays,
		FlexibilityDays: req.FlexibilityDays,
		Cycle:           params,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, suggestResponse{
		Title:         result.Title,
		TaskType:      string(result.TaskType),
		TaskTypeGlyph: affinity.TaskTypeGlyph(result.TaskType),
		Current:       toStateDTO(result.State),
		Suggestion:    toSuggestionDTO(result.Suggestion),
	})
}
