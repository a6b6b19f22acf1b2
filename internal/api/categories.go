package api

import (
	"context"
	"net/http"
	"net/url"
)

type CategoriesService struct {
	d Doer
}

func (s *CategoriesService) List(ctx context.Context) ([]Category, error) {
	return call[[]Category](ctx, s.d, http.MethodGet, "/categories", nil, nil)
}

func (s *CategoriesService) Get(ctx context.Context, id string) (*Category, error) {
	return call[*Category](ctx, s.d, http.MethodGet, "/categories/"+url.PathEscape(id), nil, nil)
}

func (s *CategoriesService) Create(ctx context.Context, in CreateCategory) (*Category, error) {
	return call[*Category](ctx, s.d, http.MethodPost, "/categories", nil, in)
}

func (s *CategoriesService) Update(ctx context.Context, id string, in UpdateCategory) (*Category, error) {
	return call[*Category](ctx, s.d, http.MethodPut, "/categories/"+url.PathEscape(id), nil, in)
}

func (s *CategoriesService) Delete(ctx context.Context, id string) error {
	return exec(ctx, s.d, http.MethodDelete, "/categories/"+url.PathEscape(id), nil)
}
