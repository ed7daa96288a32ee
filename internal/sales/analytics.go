package sales

import (
	"context"
	"time"
)

// Analytics computes revenue aggregates directly against a Storage.
// It keeps no state between calls.
type Analytics struct {
	storage Storage
	now     func() time.Time
}

// AnalyticsOption configures an Analytics.
type AnalyticsOption func(*Analytics)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) AnalyticsOption {
	return func(a *Analytics) {
		a.now = now
	}
}

// NewAnalytics creates a new Analytics over storage.
func NewAnalytics(storage Storage, opts ...AnalyticsOption) *Analytics {
	a := &Analytics{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Today returns the current time from the configured clock.
func (a *Analytics) Today() time.Time {
	return a.now()
}

// DailyRevenue returns per-day totals for the last windowDays days,
// today included. Days without sales are omitted, not zero-filled.
func (a *Analytics) DailyRevenue(ctx context.Context, windowDays int) ([]DailyTotal, error) {
	if windowDays <= 0 {
		return []DailyTotal{}, nil
	}
	cutoff := a.now().AddDate(0, 0, -(windowDays - 1))
	return a.storage.DailyTotals(ctx, dateOf(cutoff))
}

// AverageCheck returns the mean amount per sale, 0 with no sales.
func (a *Analytics) AverageCheck(ctx context.Context) (float64, error) {
	return a.storage.AverageAmount(ctx)
}

// TopProducts returns the limit highest-revenue products.
func (a *Analytics) TopProducts(ctx context.Context, limit int) ([]ProductRevenue, error) {
	if limit <= 0 {
		return []ProductRevenue{}, nil
	}
	return a.storage.TopProductsByRevenue(ctx, limit)
}
