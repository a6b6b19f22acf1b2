// Package api is a typed client for the expense-tracker REST endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dvcrn/expense-client/internal/credentials"
)

// Doer builds and sends requests against the API base URL. *client.Client
// implements it.
type Doer interface {
	NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error)
	Do(req *http.Request) (*http.Response, error)
}

// API groups the endpoint services.
type API struct {
	Auth       *AuthService
	Expenses   *ExpensesService
	Budgets    *BudgetsService
	Categories *CategoriesService
	Statistics *StatisticsService
	Users      *UsersService
}

func New(d Doer, store credentials.Store) *API {
	return &API{
		Auth:       &AuthService{d: d, store: store},
		Expenses:   &ExpensesService{d: d},
		Budgets:    &BudgetsService{d: d},
		Categories: &CategoriesService{d: d},
		Statistics: &StatisticsService{d: d},
		Users:      &UsersService{d: d},
	}
}

// Error is a non-2xx answer of the API.
type Error struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type envelope[T any] struct {
	Data      T      `json:"data"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// errorBody is the error payload of the backend. message is sometimes a list
// of validation messages.
type errorBody struct {
	Message    json.RawMessage `json:"message"`
	StatusCode int             `json:"statusCode"`
	Error      string          `json:"error"`
}

const maxErrorBody = 64 << 10

func call[T any](ctx context.Context, d Doer, method, path string, query url.Values, body any) (T, error) {
	var zero T

	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := d.NewRequest(ctx, method, path, body)
	if err != nil {
		return zero, err
	}

	resp, err := d.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, decodeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return zero, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(raw) == 0 {
		return zero, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return env.Data, nil
}

// exec is call for endpoints whose payload is ignored.
func exec(ctx context.Context, d Doer, method, path string, body any) error {
	_, err := call[json.RawMessage](ctx, d, method, path, nil, body)
	return err
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = string(raw)
		return apiErr
	}
	apiErr.Code = body.Error

	var msg string
	var msgs []string
	switch {
	case json.Unmarshal(body.Message, &msg) == nil && msg != "":
		apiErr.Message = msg
	case json.Unmarshal(body.Message, &msgs) == nil && len(msgs) > 0:
		apiErr.Message = msgs[0]
		for _, m := range msgs[1:] {
			apiErr.Message += "; " + m
		}
	}
	return apiErr
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setFloat(q url.Values, key string, v *float64) {
	if v != nil {
		q.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}

func setBool(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}
