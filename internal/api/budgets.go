package api

import (
	"context"
	"net/http"
	"net/url"
)

type BudgetsService struct {
	d Doer
}

// List returns the budgets, optionally filtered by their active flag.
func (s *BudgetsService) List(ctx context.Context, isActive *bool) ([]Budget, error) {
	query := url.Values{}
	setBool(query, "isActive", isActive)
	return call[[]Budget](ctx, s.d, http.MethodGet, "/budgets", query, nil)
}

func (s *BudgetsService) Get(ctx context.Context, id string) (*Budget, error) {
	return call[*Budget](ctx, s.d, http.MethodGet, "/budgets/"+url.PathEscape(id), nil, nil)
}

// Current returns the status of the budget covering today.
func (s *BudgetsService) Current(ctx context.Context) (*BudgetStatus, error) {
	return call[*BudgetStatus](ctx, s.d, http.MethodGet, "/budgets/current", nil, nil)
}

func (s *BudgetsService) Status(ctx context.Context, id string) (*BudgetStatus, error) {
	return call[*BudgetStatus](ctx, s.d, http.MethodGet, "/budgets/"+url.PathEscape(id)+"/status", nil, nil)
}

func (s *BudgetsService) Create(ctx context.Context, in CreateBudget) (*Budget, error) {
	return call[*Budget](ctx, s.d, http.MethodPost, "/budgets", nil, in)
}

func (s *BudgetsService) Update(ctx context.Context, id string, in UpdateBudget) (*Budget, error) {
	return call[*Budget](ctx, s.d, http.MethodPut, "/budgets/"+url.PathEscape(id), nil, in)
}

func (s *BudgetsService) Delete(ctx context.Context, id string) error {
	return exec(ctx, s.d, http.MethodDelete, "/budgets/"+url.PathEscape(id), nil)
}
