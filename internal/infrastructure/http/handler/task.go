package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/http/response"
)

type saveTaskRequest struct {
	cycleInput
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	TaskType         string           `json:"task_type"`
	EnergyRequired   string           `json:"energy_required"`
	FocusRequired    string           `json:"focus_required"`
	ScheduledDate    string           `json:"scheduled_date"`
	CycleDay         int              `json:"cycle_day"`
	Phase            string           `json:"phase"`
	Confidence       *float64         `json:"confidence"`
	Reasoning        []string         `json:"reasoning"`
	OptimizationTips []string         `json:"optimization_tips"`
	Alternatives     []alternativeDTO `json:"alternatives"`
	ShortSummary     string           `json:"short_summary"`
	Constraints      constraintsDTO   `json:"constraints"`
}

type updateTaskRequest struct {
	Completed *bool `json:"completed"`
}

type taskListResponse struct {
	Tasks []taskDTO `json:"tasks"`
}

// SaveTask persists an accepted suggestion. When the caller's cycle settings
// are included, cycle day and phase are recomputed for the scheduled date.
func (h *Handler) SaveTask(w http.ResponseWriter, r *http.Request) {
	var req saveTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	scheduled, err := domain.ParseDate(req.ScheduledDate)
	if err != nil {
		response.ValidationError(w, "scheduled_date", err.Error())
		return
	}
	alternatives, err := toAlternatives(req.Alternatives)
	if err != nil {
		response.ValidationError(w, "alternatives", err.Error())
		return
	}
	constraints, err := toConstraints(req.Constraints)
	if err != nil {
		response.ValidationError(w, "constraints", err.Error())
		return
	}

	var params *cycle.Params
	if req.present() {
		p, err := req.params()
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		params = &p
	}

	confidence := domain.DefaultConfidence
	if req.Confidence != nil {
		confidence = *req.Confidence
	}

	task, err := h.scheduling.SaveTask(r.Context(), scheduling.SaveTaskRequest{
		Title:            req.Title,
		Description:      req.Description,
		TaskType:         req.TaskType,
		EnergyRequired:   req.EnergyRequired,
		FocusRequired:    req.FocusRequired,
		ScheduledDate:    scheduled,
		CycleDay:         req.CycleDay,
		Phase:            req.Phase,
		Confidence:       confidence,
		Reasoning:        req.Reasoning,
		OptimizationTips: req.OptimizationTips,
		Alternatives:     alternatives,
		ShortSummary:     req.ShortSummary,
		Constraints:      constraints,
		Cycle:            params,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, toTaskDTO(task))
}

// GetTask returns one task.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.scheduling.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, toTaskDTO(task))
}

// ListTasks returns every task, newest first.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.scheduling.ListAll(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, taskListResponse{Tasks: toTaskDTOs(tasks)})
}

// ListUpcoming returns incomplete tasks from today on, earliest first.
func (h *Handler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.ValidationError(w, "limit", "must be a non-negative integer")
			return
		}
		limit = n
	}

	tasks, err := h.scheduling.ListUpcoming(r.Context(), limit)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, taskListResponse{Tasks: toTaskDTOs(tasks)})
}

// UpdateTask sets the completion flag.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Completed == nil {
		response.ValidationError(w, "completed", "is required")
		return
	}

	task, err := h.scheduling.SetCompleted(r.Context(), chi.URLParam(r, "id"), *req.Completed)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, toTaskDTO(task))
}

// DeleteTask removes a task.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduling.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}
