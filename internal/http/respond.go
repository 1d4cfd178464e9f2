package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"budgetbook/internal/codec"
	"budgetbook/internal/core"
	"budgetbook/internal/services"
	"budgetbook/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors onto HTTP statuses: malformed documents are
// 400, validation failures 422, missing entities 404 and a full store 507.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var formatErr *codec.FormatError
	switch {
	case errors.As(err, &formatErr):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrTitleTooLong),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrDateOutOfRange),
		errors.Is(err, core.ErrNegativeBudget),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrEmptyGoalName),
		errors.Is(err, core.ErrGoalCompleted):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrGoalNotFound),
		errors.Is(err, core.ErrTemplateNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrStorageFull):
		status = http.StatusInsufficientStorage
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
