package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cyclesync/cyclesync/internal/application/checklist"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/http/response"
)

type addChecklistItemRequest struct {
	Title        string `json:"title"`
	CurrentPhase string `json:"current_phase"`
}

type checklistResponse struct {
	Items []checklistItemDTO `json:"items"`
}

type addLogRequest struct {
	cycleInput
	Energy int    `json:"energy"`
	Mood   string `json:"mood"`
	Note   string `json:"note"`
}

type logsResponse struct {
	Logs []quickLogDTO `json:"logs"`
}

// currentPhase reads an optional phase; empty means no preference.
func currentPhase(raw string) (cycle.Phase, error) {
	if raw == "" {
		return cycle.PhaseAny, nil
	}
	return cycle.ParsePhase(raw)
}

// ListChecklist returns the checklist annotated against ?phase=.
func (h *Handler) ListChecklist(w http.ResponseWriter, r *http.Request) {
	phase, err := currentPhase(r.URL.Query().Get("phase"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	items, err := h.checklist.List(r.Context(), phase)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	out := make([]checklistItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toChecklistItemDTO(item))
	}
	response.OK(w, checklistResponse{Items: out})
}

// AddChecklistItem appends a quick task.
func (h *Handler) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req addChecklistItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	phase, err := currentPhase(req.CurrentPhase)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	item, err := h.checklist.Add(r.Context(), req.Title, phase)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, toChecklistItemDTO(item))
}

// ToggleChecklistItem flips an item's completion flag.
func (h *Handler) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	phase, err := currentPhase(r.URL.Query().Get("phase"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	item, err := h.checklist.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, toChecklistItemDTO(checklist.Annotate([]domain.ChecklistItem{item}, phase)[0]))
}

// DeleteChecklistItem removes a quick task.
func (h *Handler) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	if err := h.checklist.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// AddLog records today's energy, mood and note.
func (h *Handler) AddLog(w http.ResponseWriter, r *http.Request) {
	var req addLogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	entry, err := h.checklist.Log(r.Context(), checklist.LogRequest{
		Energy: req.Energy,
		Mood:   req.Mood,
		Note:   req.Note,
		Cycle:  params,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, toQuickLogDTO(entry))
}

// ListLogs returns recent logs, newest first.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.ValidationError(w, "limit", "must be a non-negative integer")
			return
		}
		limit = n
	}

	logs, err := h.checklist.Logs(r.Context(), limit)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	out := make([]quickLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, toQuickLogDTO(l))
	}
	response.OK(w, logsResponse{Logs: out})
}
