package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type StatisticsService struct {
	d Doer
}

func (s *StatisticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	return call[*Dashboard](ctx, s.d, http.MethodGet, "/statistics/dashboard", nil, nil)
}

// Daily returns one entry per day between start and end (YYYY-MM-DD).
func (s *StatisticsService) Daily(ctx context.Context, start, end string) ([]DailyStat, error) {
	query := url.Values{"startDate": {start}, "endDate": {end}}
	return call[[]DailyStat](ctx, s.d, http.MethodGet, "/statistics/daily", query, nil)
}

// Monthly returns the last months totals. months <= 0 uses 6.
func (s *StatisticsService) Monthly(ctx context.Context, months int) ([]MonthlyStat, error) {
	if months <= 0 {
		months = 6
	}
	query := url.Values{"months": {strconv.Itoa(months)}}
	return call[[]MonthlyStat](ctx, s.d, http.MethodGet, "/statistics/monthly", query, nil)
}

// ByCategory aggregates spending per category. Empty bounds are left to the backend.
func (s *StatisticsService) ByCategory(ctx context.Context, start, end string) ([]CategoryStat, error) {
	query := url.Values{}
	setString(query, "startDate", start)
	setString(query, "endDate", end)
	return call[[]CategoryStat](ctx, s.d, http.MethodGet, "/statistics/by-category", query, nil)
}
