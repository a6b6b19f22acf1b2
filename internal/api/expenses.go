package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type ExpensesService struct {
	d Doer
}

func (s *ExpensesService) List(ctx context.Context, q ExpenseQuery) (*ExpensePage, error) {
	query := url.Values{}
	setInt(query, "page", q.Page)
	setInt(query, "limit", q.Limit)
	setString(query, "sortBy", q.SortBy)
	setString(query, "order", q.Order)
	setString(query, "startDate", q.StartDate)
	setString(query, "endDate", q.EndDate)
	setString(query, "categoryId", q.CategoryID)
	setFloat(query, "minAmount", q.MinAmount)
	setFloat(query, "maxAmount", q.MaxAmount)
	setString(query, "search", q.Search)

	return call[*ExpensePage](ctx, s.d, http.MethodGet, "/expenses", query, nil)
}

func (s *ExpensesService) Get(ctx context.Context, id string) (*Expense, error) {
	return call[*Expense](ctx, s.d, http.MethodGet, "/expenses/"+url.PathEscape(id), nil, nil)
}

func (s *ExpensesService) Create(ctx context.Context, in CreateExpense) (*Expense, error) {
	return call[*Expense](ctx, s.d, http.MethodPost, "/expenses", nil, in)
}

func (s *ExpensesService) Update(ctx context.Context, id string, in UpdateExpense) (*Expense, error) {
	return call[*Expense](ctx, s.d, http.MethodPut, "/expenses/"+url.PathEscape(id), nil, in)
}

func (s *ExpensesService) Delete(ctx context.Context, id string) error {
	return exec(ctx, s.d, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil)
}

// Recent returns the latest expenses. A limit <= 0 uses 10.
func (s *ExpensesService) Recent(ctx context.Context, limit int) ([]Expense, error) {
	if limit <= 0 {
		limit = 10
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	return call[[]Expense](ctx, s.d, http.MethodGet, "/expenses/recent", query, nil)
}
