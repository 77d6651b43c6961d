// Package response writes JSON bodies and the standard error envelope:
//
//	{"error":{"code":"...","message":"...","details":[{"field":"...","issue":"..."}]}}
//
// Bodies are marshaled before the status line is written, so an encoding
// failure still produces a well-formed 500.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

// internalErrorJSON is written when even the error envelope fails to encode.
const internalErrorJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response","details":[]}}`

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a machine-readable code and a human message.
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details"` // Never null
}

// ErrorField points at the request field that failed validation.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		writeRaw(w, http.StatusInternalServerError, []byte(internalErrorJSON))
		return
	}
	writeRaw(w, status, body)
}

// OK writes 200 with data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes 201 with data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes the error envelope with no field details.
func Error(w http.ResponseWriter, code, message string, status int) {
	JSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: []ErrorField{}}})
}

// BadRequest writes 400 INVALID_REQUEST.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError writes 400 VALIDATION_ERROR naming the offending field.
func ValidationError(w http.ResponseWriter, field, issue string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
		Code:    "VALIDATION_ERROR",
		Message: "validation failed",
		Details: []ErrorField{{Field: field, Issue: issue}},
	}})
}

// NotFound writes 404 NOT_FOUND.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, "NOT_FOUND", message, http.StatusNotFound)
}

// InternalError writes 500 without leaking the cause.
func InternalError(w http.ResponseWriter) {
	Error(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
}

// validationFields maps value-object errors to the request field they come from.
var validationFields = []struct {
	err   error
	field string
}{
	{domain.ErrTitleRequired, "title"},
	{domain.ErrTitleTooLong, "title"},
	{domain.ErrDescriptionRequired, "description"},
	{domain.ErrInvalidTaskType, "task_type"},
	{domain.ErrInvalidLevel, "level"},
	{domain.ErrInvalidConfidence, "confidence"},
	{domain.ErrInvalidPhase, "phase"},
	{cycle.ErrInvalidPhase, "phase"},
	{domain.ErrInvalidDate, "date"},
	{domain.ErrInvalidWeekday, "available_days"},
	{domain.ErrInvalidEnergy, "energy"},
	{domain.ErrInvalidCycleDay, "cycle_day"},
	{cycle.ErrInvalidCycleLength, "cycle_length"},
}

// FromDomainError maps a service error to its HTTP representation.
// Unknown errors are logged and reported as 500.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		NotFound(w, "task not found")
		return
	case errors.Is(err, domain.ErrChecklistItemNotFound):
		NotFound(w, "checklist item not found")
		return
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "resource not found")
		return
	case errors.Is(err, domain.ErrInvalidID):
		ValidationError(w, "id", err.Error())
		return
	}

	for _, v := range validationFields {
		if errors.Is(err, v.err) {
			ValidationError(w, v.field, err.Error())
			return
		}
	}

	slog.ErrorContext(r.Context(), "unhandled service error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	InternalError(w)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
