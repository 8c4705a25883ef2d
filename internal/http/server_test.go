package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"spendlog/internal/core"
	"spendlog/internal/service"
	"spendlog/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := service.NewExpenseService(storage.NewMemoryRepository(), nil)
	srv := NewServer(":0", store)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func createExpense(t *testing.T, srv *Server, date, category, amount string) core.Expense {
	t.Helper()
	body := `{"date":"` + date + `","category":"` + category + `","amount":"` + amount + `","description":"test"}`
	rec := doRequest(t, srv, http.MethodPost, "/expenses", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var e core.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode created expense: %v", err)
	}
	return e
}

func TestCreateExpense(t *testing.T) {
	srv := newTestServer(t)

	e := createExpense(t, srv, "2026-01-30", "Food", "15.50")
	if e.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if e.Amount.Cents != 1550 {
		t.Fatalf("expected 1550 cents, got %d", e.Amount.Cents)
	}

	// Amount as a JSON number works the same as a string.
	rec := doRequest(t, srv, http.MethodPost, "/expenses",
		`{"date":"2026-01-31","category":"Bills","amount":20.00,"description":""}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for numeric amount, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name, body, field string
	}{
		{"bad date", `{"date":"2026-13-40","category":"Food","amount":"1"}`, "date"},
		{"bad category", `{"date":"2026-01-01","category":"Snacks","amount":"1"}`, "category"},
		{"zero amount", `{"date":"2026-01-01","category":"Food","amount":"0"}`, "amount"},
		{"negative amount", `{"date":"2026-01-01","category":"Food","amount":"-2"}`, "amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/expenses", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error.Code != "validation_error" || body.Error.Field != tc.field {
				t.Fatalf("expected validation_error on %q, got %+v", tc.field, body.Error)
			}
		})
	}

	// The collection stays empty after rejected creates.
	rec := doRequest(t, srv, http.MethodGet, "/expenses", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty collection, got %s", rec.Body.String())
	}
}

func TestCreateExpenseMalformedJSON(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/expenses", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListOrdering(t *testing.T) {
	srv := newTestServer(t)

	a := createExpense(t, srv, "2026-03-01", "Food", "1.00")
	b := createExpense(t, srv, "2026-01-01", "Bills", "2.00")

	rec := doRequest(t, srv, http.MethodGet, "/expenses", "")
	var byID []core.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &byID); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(byID) != 2 || byID[0].ID != a.ID || byID[1].ID != b.ID {
		t.Fatalf("default order must be id ascending: %+v", byID)
	}

	rec = doRequest(t, srv, http.MethodGet, "/expenses?order=date", "")
	var byDate []core.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &byDate); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if byDate[0].ID != b.ID || byDate[1].ID != a.ID {
		t.Fatalf("date order wrong: %+v", byDate)
	}

	rec = doRequest(t, srv, http.MethodGet, "/expenses?order=amount", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown order, got %d", rec.Code)
	}
}

func TestGetAndDeleteExpense(t *testing.T) {
	srv := newTestServer(t)
	e := createExpense(t, srv, "2026-01-30", "Healthcare", "9.99")
	path := "/expenses/" + strconv.FormatInt(e.ID, 10)

	rec := doRequest(t, srv, http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, path, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, path, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}

	// Second delete is an error, not a silent success.
	rec = doRequest(t, srv, http.MethodDelete, path, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestDeleteGarbageID(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodDelete, "/expenses/abc", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric id, got %d", rec.Code)
	}
}

func TestInsightsEmptyState(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/insights", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty dataset, got %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != "empty_dataset" {
		t.Fatalf("expected empty_dataset code, got %+v", body.Error)
	}
}

func TestInsightsScenario(t *testing.T) {
	srv := newTestServer(t)
	createExpense(t, srv, "2026-01-01", "Food", "20.00")
	createExpense(t, srv, "2026-01-01", "Transport", "5.00")
	createExpense(t, srv, "2026-01-02", "Food", "10.00")

	rec := doRequest(t, srv, http.MethodGet, "/insights", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		AverageSpending    json.Number `json:"average_spending"`
		HighestExpense     json.Number `json:"highest_expense"`
		MostCommonCategory string      `json:"most_common_category"`
		CategoryCount      int         `json:"category_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode insights: %v", err)
	}
	if got.AverageSpending.String() != "11.67" {
		t.Fatalf("expected average 11.67, got %s", got.AverageSpending)
	}
	if got.HighestExpense.String() != "20.00" {
		t.Fatalf("expected highest 20.00, got %s", got.HighestExpense)
	}
	if got.MostCommonCategory != "Food" || got.CategoryCount != 2 {
		t.Fatalf("expected Food x2, got %+v", got)
	}
}

func TestInsightsCacheInvalidatedOnMutation(t *testing.T) {
	srv := newTestServer(t)
	createExpense(t, srv, "2026-01-01", "Food", "10.00")

	// Prime the cache.
	if rec := doRequest(t, srv, http.MethodGet, "/insights", ""); rec.Code != http.StatusOK {
		t.Fatalf("prime: expected 200, got %d", rec.Code)
	}

	createExpense(t, srv, "2026-01-02", "Food", "30.00")

	rec := doRequest(t, srv, http.MethodGet, "/insights", "")
	var got struct {
		AverageSpending json.Number `json:"average_spending"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode insights: %v", err)
	}
	if got.AverageSpending.String() != "20.00" {
		t.Fatalf("cache must be invalidated by the create, got average %s", got.AverageSpending)
	}
}

func TestSummaries(t *testing.T) {
	srv := newTestServer(t)
	createExpense(t, srv, "2026-01-30", "Food", "10.00")
	createExpense(t, srv, "2026-01-30", "Bills", "15.50")
	createExpense(t, srv, "2026-02-01", "Food", "3.00")

	rec := doRequest(t, srv, http.MethodGet, "/summaries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []struct {
		Date  string      `json:"date"`
		Total json.Number `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two groups, got %d", len(got))
	}
	if got[0].Date != "2026-01-30" || got[0].Total.String() != "25.50" {
		t.Fatalf("unexpected first group %+v", got[0])
	}
	if got[1].Date != "2026-02-01" || got[1].Total.String() != "3.00" {
		t.Fatalf("unexpected second group %+v", got[1])
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(got) != len(core.Categories) || got[0] != "Food" || got[len(got)-1] != "Other" {
		t.Fatalf("unexpected categories %v", got)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := doRequest(t, srv, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers")
	}
}
