package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvcrn/expense-client/internal/auth"
	"github.com/dvcrn/expense-client/internal/client"
	"github.com/dvcrn/expense-client/internal/credentials"
	"github.com/dvcrn/expense-client/internal/credentials/mocks"
	"github.com/dvcrn/expense-client/internal/session"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) (*API, *credentials.MemoryStore) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	store := credentials.NewMemoryStore()
	c := client.New(ts.URL, store, auth.NewRefresher(ts.URL, ts.Client()), session.NewNotifier())
	return New(c, store), store
}

func writeData(w http.ResponseWriter, r *http.Request, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"path":      r.URL.Path,
	})
}

func TestAuth_LoginPersistsSession(t *testing.T) {
	a, store := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, auth.LoginPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.EmailOrUsername)

		writeData(w, r, map[string]any{
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
			"user": map[string]any{
				"id":        "u1",
				"username":  "alice",
				"email":     "alice@example.com",
				"isActive":  true,
				"createdAt": "2024-03-01T10:00:00.000Z",
			},
		})
	})
	ctx := context.Background()

	data, err := a.Auth.Login(ctx, LoginRequest{EmailOrUsername: "alice", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "alice", data.User.Username)

	creds, err := credentials.LoadCredentials(ctx, store)
	require.NoError(t, err)
	require.Equal(t, credentials.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}, creds)

	ok, err := a.Auth.IsAuthenticated(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	user, err := a.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)

	require.NoError(t, a.Auth.Logout(ctx))
	ok, err = a.Auth.IsAuthenticated(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	user, err = a.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestAuth_LoginFailure(t *testing.T) {
	a, store := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials","statusCode":401,"error":"Unauthorized"}`))
	})

	_, err := a.Auth.Login(context.Background(), LoginRequest{EmailOrUsername: "alice", Password: "nope"})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid credentials", apiErr.Message)
	require.Equal(t, "Unauthorized", apiErr.Code)
	require.True(t, IsStatus(err, http.StatusUnauthorized))

	access, err := store.GetAccessToken(context.Background())
	require.NoError(t, err)
	require.Empty(t, access)
}

func TestAuth_RegisterWithoutTokens(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, auth.RegisterPath, r.URL.Path)
		writeData(w, r, map[string]any{"user": map[string]any{"id": "u1"}})
	})

	_, err := a.Auth.Register(context.Background(), RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "pw"})
	require.ErrorIs(t, err, ErrIncompleteAuth)
}

func TestExpenses_ListEncodesQuery(t *testing.T) {
	a, store := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/expenses", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "c1", q.Get("categoryId"))
		assert.Equal(t, "5.5", q.Get("minAmount"))
		assert.False(t, q.Has("maxAmount"))
		assert.False(t, q.Has("search"))

		writeData(w, r, map[string]any{
			"expenses": []map[string]any{{
				"id":       "e1",
				"name":     "Lunch",
				"amount":   12.5,
				"date":     "2024-03-01",
				"category": map[string]any{"id": "c1", "name": "Food"},
			}},
			"pagination": map[string]any{"total": 21, "page": 2, "limit": 20, "totalPages": 2},
		})
	})
	require.NoError(t, store.SetAccessToken(context.Background(), "access-1"))

	minAmount := 5.5
	page, err := a.Expenses.List(context.Background(), ExpenseQuery{Page: 2, Limit: 20, CategoryID: "c1", MinAmount: &minAmount})
	require.NoError(t, err)
	require.Len(t, page.Expenses, 1)
	require.Equal(t, "Food", page.Expenses[0].Category.Name)
	require.Equal(t, 21, page.Pagination.Total)
}

func TestExpenses_CreateAndRecent(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/expenses":
			assert.Equal(t, http.MethodPost, r.Method)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"name":"Coffee","amount":3.2,"categoryId":"c1"}`, string(body))
			writeData(w, r, map[string]any{"id": "e2", "name": "Coffee", "amount": 3.2})
		case "/expenses/recent":
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			writeData(w, r, []map[string]any{{"id": "e2"}, {"id": "e1"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	e, err := a.Expenses.Create(ctx, CreateExpense{Name: "Coffee", Amount: 3.2, CategoryID: "c1"})
	require.NoError(t, err)
	require.Equal(t, "e2", e.ID)

	recent, err := a.Expenses.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
}

func TestBudgets_ListAndStatus(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/budgets":
			assert.Equal(t, "true", r.URL.Query().Get("isActive"))
			writeData(w, r, []map[string]any{{"id": "b1", "amount": 500, "periodType": "MONTHLY"}})
		case "/budgets/b1/status":
			writeData(w, r, map[string]any{"id": "b1", "amount": 500, "spentAmount": 620, "isOverBudget": true})
		case "/budgets/b1":
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	active := true
	budgets, err := a.Budgets.List(ctx, &active)
	require.NoError(t, err)
	require.Equal(t, PeriodMonthly, budgets[0].PeriodType)

	status, err := a.Budgets.Status(ctx, "b1")
	require.NoError(t, err)
	require.True(t, status.IsOverBudget)
	require.Equal(t, "b1", status.ID)

	require.NoError(t, a.Budgets.Delete(ctx, "b1"))
}

func TestCategories_ValidationError(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":["name should not be empty","color must be a hex color"],"statusCode":400,"error":"Bad Request"}`))
	})

	_, err := a.Categories.Create(context.Background(), CreateCategory{})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "name should not be empty; color must be a hex color", apiErr.Message)
	require.Equal(t, "Bad Request", apiErr.Code)
}

func TestStatistics_Defaults(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/statistics/monthly":
			assert.Equal(t, "6", r.URL.Query().Get("months"))
			writeData(w, r, []map[string]any{{"month": "March", "year": 2024, "totalAmount": 420.5}})
		case "/statistics/by-category":
			assert.Empty(t, r.URL.RawQuery)
			writeData(w, r, []map[string]any{{"categoryId": "c1", "total": 100, "percentage": 50}})
		case "/statistics/dashboard":
			writeData(w, r, map[string]any{"todayTotal": 12, "topCategories": []any{}, "recentExpenses": []any{}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	monthly, err := a.Statistics.Monthly(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 2024, monthly[0].Year)

	byCategory, err := a.Statistics.ByCategory(ctx, "", "")
	require.NoError(t, err)
	require.Equal(t, float64(50), byCategory[0].Percentage)

	dash, err := a.Statistics.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, float64(12), dash.TodayTotal)
	require.Nil(t, dash.BudgetStatus)
}

func TestUsers_PasswordAndAccount(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/users/password":
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.JSONEq(t, `{"currentPassword":"a","newPassword":"b","confirmPassword":"b"}`, string(body))
		case "/users/account":
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.JSONEq(t, `{"password":"a"}`, string(body))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeData(w, r, map[string]any{"message": "ok"})
	})
	ctx := context.Background()

	require.ErrorIs(t, a.Users.ChangePassword(ctx, ChangePassword{CurrentPassword: "a", NewPassword: "b", ConfirmPassword: "c"}), ErrPasswordMismatch)
	require.NoError(t, a.Users.ChangePassword(ctx, ChangePassword{CurrentPassword: "a", NewPassword: "b", ConfirmPassword: "b"}))
	require.NoError(t, a.Users.DeleteAccount(ctx, DeleteAccount{Password: "a"}))
}

func TestCall_SessionExpiredSurfaces(t *testing.T) {
	a, store := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
	})
	require.NoError(t, store.SetAccessToken(context.Background(), "stale"))

	_, err := a.Categories.List(context.Background())
	require.ErrorIs(t, err, client.ErrSessionExpired)
}

func TestAuth_PartialSaveClearsSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, r, map[string]any{"accessToken": "access-1", "refreshToken": "refresh-1"})
	}))
	t.Cleanup(ts.Close)

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	writeErr := errors.New("disk full")
	gomock.InOrder(
		store.EXPECT().SetAccessToken(gomock.Any(), "access-1").Return(nil),
		store.EXPECT().SetRefreshToken(gomock.Any(), "refresh-1").Return(writeErr),
		store.EXPECT().ClearAll(gomock.Any()).Return(nil),
	)

	c := client.New(ts.URL, store, auth.NewRefresher(ts.URL, ts.Client()), nil)
	a := New(c, store)

	_, err := a.Auth.Login(context.Background(), LoginRequest{EmailOrUsername: "alice", Password: "secret"})
	require.ErrorIs(t, err, writeErr)
}
