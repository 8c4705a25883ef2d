package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/metrics"
)

// createExpenseRequest is the POST /expenses body. Amount arrives as a
// raw JSON token so "15.50" and 15.50 are both accepted and parsed with
// decimal (not float) semantics.
type createExpenseRequest struct {
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	order, err := core.ParseListOrder(r.URL.Query().Get("order"))
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorDetail{
			Code:    "validation_error",
			Message: err.Error(),
			Field:   "order",
			Reason:  "must be 'id' or 'date'",
		}})
		return
	}

	expenses, err := s.store.List(r.Context(), order)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	created, err := s.store.Add(r.Context(), core.ExpenseInput{
		Date:        req.Date,
		Category:    req.Category,
		Amount:      rawAmount(req.Amount),
		Description: req.Description,
	})
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			metrics.ValidationFailures.WithLabelValues(verr.Field).Inc()
		}
		writeCoreError(w, r, err)
		return
	}

	metrics.ExpensesCreated.Inc()
	s.invalidateAggregates()
	slog.InfoContext(r.Context(), "Expense created",
		applog.FieldExpenseID, created.ID,
		"category", created.Category,
		"amount_cents", created.Amount.Cents)
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	expense, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeCoreError(w, r, err)
		return
	}

	metrics.ExpensesDeleted.Inc()
	s.invalidateAggregates()
	slog.InfoContext(r.Context(), "Expense deleted", applog.FieldExpenseID, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.insightsCache.Get(aggregateCacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	insights, err := s.store.Insights(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	s.insightsCache.Set(aggregateCacheKey, insights)
	respondJSON(w, http.StatusOK, insights)
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.summariesCache.Get(aggregateCacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	summaries, err := s.store.Summaries(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	s.summariesCache.Set(aggregateCacheKey, summaries)
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, core.CategoryNames())
}

// parseID reads the {id} path parameter; on garbage it answers 404, the
// same as an id that was never assigned.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusNotFound, "not_found", "expense "+raw+" not found")
		return 0, false
	}
	return id, true
}

// rawAmount strips surrounding quotes so the validator sees the bare
// decimal text whether the client sent a number or a string.
func rawAmount(raw json.RawMessage) string {
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
