package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendlog/internal/core"
	applog "spendlog/internal/log"
)

// errorBody is the JSON error envelope. Field and Reason are only set
// for validation failures.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeCoreError maps the core error taxonomy onto HTTP statuses:
// validation 422 with the violated field, not-found 404, empty dataset
// 404 with an explicit no-data code, anything else 500.
func writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorDetail{
			Code:    "validation_error",
			Message: verr.Error(),
			Field:   verr.Field,
			Reason:  verr.Reason,
		}})
		return
	}

	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, http.StatusNotFound, "not_found", nf.Error())
		return
	}

	if errors.Is(err, core.ErrEmptyDataset) {
		writeError(w, http.StatusNotFound, "empty_dataset", core.ErrEmptyDataset.Error())
		return
	}

	slog.ErrorContext(r.Context(), "Request failed",
		applog.FieldError, err,
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
