package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/catalog"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/memory"
)

const categoriesDoc = `{"Food": ["Groceries", "Lunch"], "Transport": ["Fuel"]}`

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func newTestServer(t *testing.T, store storage.Store, categoriesPath string) *Server {
	t.Helper()
	svc := services.NewExpenseService(store, catalog.NewReader(categoriesPath, 0), nil).WithLogger(quietLogger())
	return NewServer(":0", svc, Options{Logger: quietLogger(), RateLimitPerMinute: 1000})
}

func writeCategoriesFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.json")
	require.NoError(t, os.WriteFile(path, []byte(categoriesDoc), 0o644))
	return path
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, memory.New(), writeCategoriesFile(t))

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	}
}

func TestHealthReportsCounters(t *testing.T) {
	svc := services.NewExpenseService(memory.New(), catalog.NewReader(writeCategoriesFile(t), 0), nil).WithLogger(quietLogger())
	s := NewServer(":0", svc, Options{Logger: quietLogger(), RateLimitPerMinute: 1})

	body := `{"date":"2024-01-05","amount":1,"category":"A","subcategory":"B","note":""}`
	do(t, s, http.MethodPost, "/expenses", body)
	do(t, s, http.MethodPost, "/expenses", body)
	do(t, s, http.MethodGet, "/.env", "")

	health := decode[HealthResponse](t, do(t, s, http.MethodGet, "/healthz", ""))
	assert.Equal(t, core.StatusOK, health.Status)
	assert.Equal(t, int64(1), health.RateLimited)
	assert.Equal(t, int64(1), health.TrackedClients)
	assert.Equal(t, int64(1), health.SuspiciousRequests)
	assert.GreaterOrEqual(t, health.Requests, int64(3))
}

func TestExpenseLifecycle(t *testing.T) {
	s := newTestServer(t, memory.New(), writeCategoriesFile(t))

	rec := do(t, s, http.MethodPost, "/expenses", `{"date":"2024-01-05","amount":12.5,"category":"Food","subcategory":"Lunch","note":"deli"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[core.AddResult](t, rec)
	assert.Equal(t, core.StatusOK, added.Status)
	assert.Positive(t, added.ID)

	rec = do(t, s, http.MethodGet, "/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"date":"2024-01-05","amount":12.50,"category":"Food","subcategory":"Lunch","note":"deli"}]`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/expenses", `{"date":"2024-01-05","amount":"12.50","note":"deli"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"ok","deleted_count":1}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/expenses", "")
	assert.Equal(t, "[]", rec.Body.String())
}

func TestJanuaryScenario(t *testing.T) {
	for name, store := range map[string]func(t *testing.T) storage.Store{
		"memory": func(*testing.T) storage.Store { return memory.New() },
		"sqlite": func(t *testing.T) storage.Store {
			repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "expense.db"))
			require.NoError(t, err)
			return repo
		},
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t, store(t), writeCategoriesFile(t))

			for _, body := range []string{
				`{"date":"2024-01-01","amount":10,"category":"Food","subcategory":"Groceries","note":""}`,
				`{"date":"2024-01-15","amount":5,"category":"Food","subcategory":"Lunch","note":""}`,
				`{"date":"2024-01-20","amount":30,"category":"Transport","subcategory":"Fuel","note":""}`,
			} {
				require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/expenses", body).Code)
			}

			rec := do(t, s, http.MethodGet, "/expenses/summary?start_date=2024-01-01&end_date=2024-01-31", "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, `[{"category":"Food","total_amount":15.00},{"category":"Transport","total_amount":30.00}]`, rec.Body.String())

			rec = do(t, s, http.MethodGet, "/expenses/summary?start_date=2024-01-01&end_date=2024-01-31&category=Food", "")
			assert.JSONEq(t, `[{"category":"Food","total_amount":15.00}]`, rec.Body.String())

			rec = do(t, s, http.MethodGet, "/expenses/summary?start_date=2024-01-01&end_date=2024-01-31&category=", "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, `[{"category":"Food","total_amount":15.00},{"category":"Transport","total_amount":30.00}]`, rec.Body.String(),
				"an empty category must not filter")

			rec = do(t, s, http.MethodGet, "/expenses/range?start_date=2024-01-15&end_date=2024-01-15", "")
			got := decode[[]core.Expense](t, rec)
			require.Len(t, got, 1)
			assert.Equal(t, "Lunch", got[0].Subcategory)

			rec = do(t, s, http.MethodGet, "/expenses/range?start_date=2024-03-01&end_date=2024-03-31", "")
			assert.Equal(t, "[]", rec.Body.String())

			rec = do(t, s, http.MethodDelete, "/expenses", `{"date":"2024-01-15","amount":5,"note":""}`)
			assert.JSONEq(t, `{"status":"ok","deleted_count":1}`, rec.Body.String())

			rec = do(t, s, http.MethodGet, "/expenses/summary?start_date=2024-01-01&end_date=2024-01-31", "")
			assert.JSONEq(t, `[{"category":"Food","total_amount":10.00},{"category":"Transport","total_amount":30.00}]`, rec.Body.String())
		})
	}
}

func TestBindingErrors(t *testing.T) {
	s := newTestServer(t, memory.New(), writeCategoriesFile(t))

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"add without body", http.MethodPost, "/expenses", ""},
		{"add bad date", http.MethodPost, "/expenses", `{"date":"2024-02-30","amount":1,"category":"A","subcategory":"B","note":""}`},
		{"add bad amount", http.MethodPost, "/expenses", `{"date":"2024-01-05","amount":"1,2.3","category":"A","subcategory":"B","note":""}`},
		{"add amount beyond int64 cents", http.MethodPost, "/expenses", `{"date":"2024-01-05","amount":"100000000000000000","category":"A","subcategory":"B","note":""}`},
		{"add oversized body", http.MethodPost, "/expenses", `{"date":"2024-01-05","amount":1,"category":"A","subcategory":"B","note":"` + strings.Repeat("x", maxBodyBytes) + `"}`},
		{"delete missing note", http.MethodDelete, "/expenses", `{"date":"2024-01-05","amount":1}`},
		{"range missing end", http.MethodGet, "/expenses/range?start_date=2024-01-01", ""},
		{"summary bad start", http.MethodGet, "/expenses/summary?start_date=yesterday&end_date=2024-01-31", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decode[ErrorBody](t, rec)
			assert.NotEmpty(t, body.Error)
		})
	}

	rec := do(t, s, http.MethodGet, "/expenses", "")
	assert.Equal(t, "[]", rec.Body.String(), "rejected requests must not write")
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, memory.New(), writeCategoriesFile(t))

	rec := do(t, s, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, categoriesDoc, rec.Body.String())

	missing := newTestServer(t, memory.New(), filepath.Join(t.TempDir(), "absent.json"))
	rec = do(t, missing, http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"category catalog not found"}`, rec.Body.String())
}

type downStore struct{ *memory.Store }

func (downStore) ListAll(context.Context) ([]core.Expense, error) {
	return nil, &core.StorageError{Op: "list", Err: errors.New("unable to open database file")}
}

func (downStore) Ping(context.Context) error {
	return &core.StorageError{Op: "ping", Err: errors.New("unable to open database file")}
}

func TestStorageFailures(t *testing.T) {
	s := newTestServer(t, downStore{memory.New()}, writeCategoriesFile(t))

	rec := do(t, s, http.MethodGet, "/expenses", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"storage unavailable"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutingErrors(t *testing.T) {
	s := newTestServer(t, memory.New(), writeCategoriesFile(t))

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodPut, "/expenses", `{}`).Code)
}

func TestRateLimitAppliesToWritesOnly(t *testing.T) {
	svc := services.NewExpenseService(memory.New(), catalog.NewReader(writeCategoriesFile(t), 0), nil).WithLogger(quietLogger())
	s := NewServer(":0", svc, Options{Logger: quietLogger(), RateLimitPerMinute: 2})

	body := `{"date":"2024-01-05","amount":1,"category":"A","subcategory":"B","note":""}`
	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, s, http.MethodPost, "/expenses", body).Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/expenses", "").Code)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	s := newTestServer(t, memory.New(), writeCategoriesFile(t))
	ctx := context.Background()
	assert.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, s.Shutdown(ctx))
}
