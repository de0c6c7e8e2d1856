package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/auth"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/presenter"
	"spendwise/internal/services"
	"spendwise/internal/store/memory"
)

var fixedNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	srv   *Server
	store *memory.Store
	token string
	user  core.User
}

func newTestEnv(t *testing.T, wrap func(Expenses) Expenses) *testEnv {
	t.Helper()
	st := memory.New()
	var svc Expenses = services.NewExpenseService(st, cache.NewLRUCache[[]core.Expense](16, time.Minute), nil, nil)
	if wrap != nil {
		svc = wrap(svc)
	}

	authSvc := auth.NewService(st, st, 0, nil)
	u, err := authSvc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	sess, err := authSvc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	srv, err := NewServer(Options{Location: time.UTC, RequestsPerMinute: 1000}, svc, authSvc, st, nil)
	require.NoError(t, err)
	srv.now = func() time.Time { return fixedNow }
	t.Cleanup(srv.limiter.Stop)

	return &testEnv{srv: srv, store: st, token: sess.Token, user: u}
}

func (e *testEnv) do(method, path string, form url.Values, authed bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("HX-Request", "true")
	if authed {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: e.token})
	}
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seed(t *testing.T, amount float64, category, date string) core.Expense {
	t.Helper()
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	x, err := e.store.Create(context.Background(), e.user.ID, core.CreateExpenseData{Amount: amount, Category: category, ExpenseDate: d})
	require.NoError(t, err)
	return x
}

func (e *testEnv) list(t *testing.T) []core.Expense {
	t.Helper()
	l, err := e.store.List(context.Background(), e.user.ID)
	require.NoError(t, err)
	return l
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := env.do(http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnonymousAccess(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, "/api/expenses", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/stats", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"no_data":true`)

	rec = env.do(http.MethodPost, "/expenses", url.Values{"amount": {"5"}, "category": {"food"}}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/login", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ExpenseTrack")

	rec = env.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"nope"}}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")

	rec = env.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"s3cret"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), auth.CookieName+"=")

	rec = env.do(http.MethodGet, "/login", nil, true)
	assert.Equal(t, http.StatusFound, rec.Code, "signed-in users skip the login page")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/logout", nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))

	rec = env.do(http.MethodGet, "/api/expenses", nil, true)
	assert.JSONEq(t, `[]`, rec.Body.String(), "session is gone")
}

func TestDashboardPage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "January 2024")
	assert.Contains(t, body, "Add Expense")
	assert.Contains(t, body, "Sign Out")
}

func TestPartials_Empty(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/ui/stats", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "$0.00")

	rec = env.do(http.MethodGet, "/ui/chart", nil, true)
	assert.Contains(t, rec.Body.String(), "No expenses to display")

	rec = env.do(http.MethodGet, "/ui/expenses", nil, true)
	assert.Contains(t, rec.Body.String(), "No expenses yet")
	assert.Contains(t, rec.Body.String(), "Add your first expense to get started")
}

func TestPartials_WithData(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, 50, "food", "2024-01-05")
	env.seed(t, 30, "food", "2024-01-20")
	env.seed(t, 20, "transport", "2024-02-01")

	rec := env.do(http.MethodGet, "/ui/stats", nil, true)
	body := rec.Body.String()
	assert.Contains(t, body, "$80.00")
	assert.Contains(t, body, "$100.00")
	assert.Contains(t, body, "$40.00")

	rec = env.do(http.MethodGet, "/ui/chart", nil, true)
	body = rec.Body.String()
	assert.Contains(t, body, "Spending by Category")
	assert.Contains(t, body, "Food &amp; Dining")
	assert.NotContains(t, body, "Transport")
	assert.Contains(t, body, "conic-gradient(")
	assert.NotContains(t, body, "ZgotmplZ")

	rec = env.do(http.MethodGet, "/ui/expenses", nil, true)
	body = rec.Body.String()
	assert.Contains(t, body, "Recent Expenses")
	assert.Contains(t, body, "Thursday, February 1, 2024")
	assert.Contains(t, body, "Saturday, January 20, 2024")
}

func TestCreateExpense(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/ui/expenses/new", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add New Expense")
	assert.Contains(t, rec.Body.String(), `value="2024-01-15"`)

	t.Run("zero amount is rejected without a store call", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/expenses", url.Values{"amount": {"0"}, "category": {"bills"}}, true)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Amount must be a positive number")
		assert.Empty(t, env.list(t))
	})

	t.Run("valid submission without note", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/expenses", url.Values{"amount": {"12.5"}, "category": {"bills"}, "note": {"  "}}, true)
		require.Equal(t, http.StatusOK, rec.Code)

		trigger := rec.Header().Get("HX-Trigger")
		assert.Contains(t, trigger, "Expense added successfully!")
		assert.Contains(t, trigger, EventExpensesChanged)

		list := env.list(t)
		require.Len(t, list, 1)
		assert.Equal(t, 12.5, list[0].Amount)
		assert.Equal(t, "bills", list[0].Category)
		assert.Equal(t, "2024-01-15", list[0].ExpenseDate.String())
		assert.Nil(t, list[0].Note)
	})
}

func TestCreateExpense_OversizedAmounts(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, amount := range []string{"1e400", "1e308", "1000000000000.01"} {
		rec := env.do(http.MethodPost, "/expenses", url.Values{"amount": {amount}, "category": {"bills"}}, true)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, amount)
	}
	assert.Empty(t, env.list(t))

	for range 2 {
		rec := env.do(http.MethodPost, "/expenses", url.Values{"amount": {"1000000000000"}, "category": {"bills"}}, true)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	for _, path := range []string{"/ui/stats", "/ui/chart", "/ui/expenses", "/api/stats"} {
		rec := env.do(http.MethodGet, path, nil, true)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	rec := env.do(http.MethodGet, "/ui/stats", nil, true)
	assert.Contains(t, rec.Body.String(), "$2000000000000.00")
}

func TestCreateExpense_JSON(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"amount": 7.25, "category": "health", "expense_date": "2024-01-02", "note": "pharmacy"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: env.token})
	rec := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got core.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, env.user.ID, got.UserID)
	require.NotNil(t, got.Note)
	assert.Equal(t, "pharmacy", *got.Note)

	rec = env.do(http.MethodGet, "/api/expenses", nil, true)
	var list []core.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestUpdateExpense(t *testing.T) {
	env := newTestEnv(t, nil)
	x := env.seed(t, 10, "food", "2024-01-05")

	rec := env.do(http.MethodGet, "/ui/expenses/"+x.ID+"/edit", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Edit Expense")
	assert.Contains(t, rec.Body.String(), "Update Expense")
	assert.Contains(t, rec.Body.String(), `value="10"`)

	rec = env.do(http.MethodPost, "/expenses/"+x.ID, url.Values{
		"amount": {"22"}, "category": {"shopping"}, "expense_date": {"2024-01-06"},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "Expense updated successfully!")

	list := env.list(t)
	require.Len(t, list, 1)
	assert.Equal(t, 22.0, list[0].Amount)
	assert.Equal(t, "shopping", list[0].Category)

	rec = env.do(http.MethodPost, "/expenses/missing", url.Values{"amount": {"1"}, "category": {"food"}}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "Error updating expense")

	rec = env.do(http.MethodGet, "/ui/expenses/missing/edit", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	x := env.seed(t, 10, "food", "2024-01-05")

	rec := env.do(http.MethodGet, "/ui/expenses/"+x.ID+"/delete", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Delete Expense")
	assert.Contains(t, rec.Body.String(), "This action cannot be undone.")
	assert.Len(t, env.list(t), 1, "staging does not delete")

	rec = env.do(http.MethodPost, "/ui/delete/dismiss", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.list(t), 1, "dismissing does not delete")

	rec = env.do(http.MethodPost, "/expenses/"+x.ID+"/delete", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.list(t), 1, "confirm after dismiss is a no-op")

	env.do(http.MethodGet, "/ui/expenses/"+x.ID+"/delete", nil, true)
	rec = env.do(http.MethodPost, "/expenses/"+x.ID+"/delete", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "Expense deleted successfully!")
	assert.Empty(t, env.list(t))
}

func TestDeleteFlow_MismatchedConfirm(t *testing.T) {
	env := newTestEnv(t, nil)
	a := env.seed(t, 10, "food", "2024-01-05")
	b := env.seed(t, 20, "food", "2024-01-06")

	env.do(http.MethodGet, "/ui/expenses/"+a.ID+"/delete", nil, true)
	rec := env.do(http.MethodPost, "/expenses/"+b.ID+"/delete", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "deletion was not confirmed")
	assert.Len(t, env.list(t), 2)

	rec = env.do(http.MethodPost, "/expenses/"+a.ID+"/delete", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	list := env.list(t)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

type failingExpenses struct {
	Expenses
	err error
}

func (f failingExpenses) Create(context.Context, string, core.CreateExpenseData) (core.Expense, error) {
	return core.Expense{}, f.err
}

func (f failingExpenses) Dashboard(context.Context, string, time.Time) (presenter.Dashboard, error) {
	return presenter.Dashboard{}, f.err
}

func TestStoreFailures(t *testing.T) {
	env := newTestEnv(t, func(e Expenses) Expenses {
		return failingExpenses{Expenses: e, err: errors.New("network unreachable")}
	})

	rec := env.do(http.MethodPost, "/expenses", url.Values{"amount": {"5"}, "category": {"food"}}, true)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	trigger := rec.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, "Error adding expense")
	assert.Contains(t, trigger, "network unreachable")
	assert.NotContains(t, trigger, EventExpensesChanged)

	rec = env.do(http.MethodGet, "/ui/stats", nil, true)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAPIStats(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, 50, "food", "2024-01-05")
	env.seed(t, 20, "transport", "2024-02-01")

	rec := env.do(http.MethodGet, "/api/stats?month=2024-02", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var got statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 20.0, got.TotalThisMonth)
	assert.Equal(t, 70.0, got.TotalAll)
	assert.Equal(t, "February 2024", got.MonthLabel)
	require.Len(t, got.Breakdown, 1)
	assert.Equal(t, "transport", got.Breakdown[0].Category)
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/static/app.css", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=3600")
}

func TestRateLimitOnPost(t *testing.T) {
	st := memory.New()
	svc := services.NewExpenseService(st, cache.NewLRUCache[[]core.Expense](4, time.Minute), nil, nil)
	srv, err := NewServer(Options{RequestsPerMinute: 2}, svc, auth.NewService(st, st, 0, nil), st, nil)
	require.NoError(t, err)
	t.Cleanup(srv.limiter.Stop)

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ui/delete/dismiss", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "GET requests are not limited")
}
