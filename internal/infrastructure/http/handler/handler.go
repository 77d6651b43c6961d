// Package handler adapts HTTP requests to the scheduling and checklist
// services.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cyclesync/cyclesync/internal/application/checklist"
	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/infrastructure/http/response"
)

// Handler serves the /v1 API.
type Handler struct {
	scheduling *scheduling.Service
	checklist  *checklist.Service
	now        func() time.Time
}

// New creates a Handler.
func New(schedulingService *scheduling.Service, checklistService *checklist.Service) *Handler {
	return &Handler{
		scheduling: schedulingService,
		checklist:  checklistService,
		now:        time.Now,
	}
}

// Routes returns the /v1 router. Callers mount it under /v1.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/cycle", h.GetCycle)
	r.Post("/affinity", h.EvaluateAffinity)
	r.Post("/schedule", h.Suggest)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.SaveTask)
		r.Get("/upcoming", h.ListUpcoming)
		r.Get("/{id}", h.GetTask)
		r.Patch("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})

	r.Route("/checklist", func(r chi.Router) {
		r.Get("/", h.ListChecklist)
		r.Post("/", h.AddChecklistItem)
		r.Get("/logs", h.ListLogs)
		r.Post("/logs", h.AddLog)
		r.Patch("/{id}", h.ToggleChecklistItem)
		r.Delete("/{id}", h.DeleteChecklistItem)
	})

	return r
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
// It writes the 400 itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(w, "request body is required")
		} else {
			response.BadRequest(w, "invalid JSON")
		}
		return false
	}
	return true
}
