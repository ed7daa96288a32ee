package sales

import (
	"context"

	"github.com/shopspring/decimal"
)

const (
	// ForecastWindowDays is the trailing window the forecast looks at.
	ForecastWindowDays = 7
	// MinForecastDays is the fewest distinct sales days that yield a forecast.
	MinForecastDays = 3
)

// Forecaster produces a naive next-day revenue estimate: the unweighted
// mean of the daily totals present in the trailing window. Days without
// sales count toward neither the sum nor the divisor.
type Forecaster struct {
	analytics *Analytics
}

// NewForecaster creates a Forecaster reading through analytics.
func NewForecaster(analytics *Analytics) *Forecaster {
	return &Forecaster{analytics: analytics}
}

// ForecastNextPeriod estimates tomorrow's revenue. With fewer than
// MinForecastDays days of data it returns a Forecast with Sufficient unset
// and no error.
func (f *Forecaster) ForecastNextPeriod(ctx context.Context) (Forecast, error) {
	daily, err := f.analytics.DailyRevenue(ctx, ForecastWindowDays)
	if err != nil {
		return Forecast{}, err
	}

	fc := Forecast{
		TargetDate:   dateOf(f.analytics.Today().AddDate(0, 0, 1)),
		DaysObserved: len(daily),
		WindowDays:   ForecastWindowDays,
	}
	if len(daily) < MinForecastDays {
		return fc, nil
	}

	sum := decimal.Zero
	for _, d := range daily {
		sum = sum.Add(decimal.NewFromFloat(d.Total))
	}
	fc.Sufficient = true
	fc.Value = sum.Div(decimal.NewFromInt(int64(len(daily)))).InexactFloat64()
	return fc, nil
}
