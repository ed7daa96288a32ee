package sales

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoData is returned when a report is requested before any sales exist
// in the reporting window.
var ErrNoData = errors.New("no sales data, upload data first")

const (
	reportWindowDays  = 7
	reportTopProducts = 3
)

// Service is the single entry point for uploads, reports and forecasts.
type Service struct {
	storage      Storage
	analytics    *Analytics
	forecaster   *Forecaster
	logger       *zap.Logger
	maxBatchRows int
}

// NewService creates a new Service. maxBatchRows <= 0 disables the
// per-upload row limit.
func NewService(storage Storage, logger *zap.Logger, maxBatchRows int, opts ...AnalyticsOption) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	analytics := NewAnalytics(storage, opts...)
	return &Service{
		storage:      storage,
		analytics:    analytics,
		forecaster:   NewForecaster(analytics),
		logger:       logger,
		maxBatchRows: maxBatchRows,
	}
}

// Upload parses and validates a CSV payload and stores it as one batch.
// Validation failures are returned before anything is written.
func (s *Service) Upload(ctx context.Context, r io.Reader) (*UploadResult, error) {
	table, err := ParseCSV(r, s.maxBatchRows)
	if err != nil {
		s.logger.Warn("rejected upload", zap.Error(err))
		return nil, err
	}

	batchID := uuid.NewString()
	records, err := Normalize(table, batchID)
	if err != nil {
		s.logger.Warn("rejected upload", zap.String("batch_id", batchID), zap.Int("rows", len(table.Rows)), zap.Error(err))
		return nil, err
	}

	n, err := s.storage.Insert(ctx, records)
	if err != nil {
		s.logger.Error("failed to store batch", zap.String("batch_id", batchID), zap.Error(err))
		return nil, fmt.Errorf("failed to store batch: %w", err)
	}

	s.logger.Info("batch stored", zap.String("batch_id", batchID), zap.Int("inserted", n))
	return &UploadResult{BatchID: batchID, Inserted: n}, nil
}

// BuildReport composes daily revenue, average check and top products.
// Any failing part fails the whole report.
func (s *Service) BuildReport(ctx context.Context) (*Report, error) {
	daily, err := s.analytics.DailyRevenue(ctx, reportWindowDays)
	if err != nil {
		s.logger.Error("failed to compute daily revenue", zap.Error(err))
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	if len(daily) == 0 {
		return nil, ErrNoData
	}

	avg, err := s.analytics.AverageCheck(ctx)
	if err != nil {
		s.logger.Error("failed to compute average check", zap.Error(err))
		return nil, fmt.Errorf("average check: %w", err)
	}

	top, err := s.analytics.TopProducts(ctx, reportTopProducts)
	if err != nil {
		s.logger.Error("failed to rank products", zap.Error(err))
		return nil, fmt.Errorf("top products: %w", err)
	}

	report := &Report{
		DailyRevenue: daily,
		AverageCheck: avg,
		TopProducts:  top,
		GeneratedAt:  s.analytics.Today(),
	}
	s.logger.Info("report built", zap.Int("days", len(daily)), zap.Int("products", len(top)))
	return report, nil
}

// Forecast returns the naive next-day revenue forecast.
func (s *Service) Forecast(ctx context.Context) (Forecast, error) {
	fc, err := s.forecaster.ForecastNextPeriod(ctx)
	if err != nil {
		s.logger.Error("failed to forecast", zap.Error(err))
		return Forecast{}, fmt.Errorf("forecast: %w", err)
	}
	if !fc.Sufficient {
		s.logger.Info("insufficient data for forecast", zap.Int("days_observed", fc.DaysObserved))
	}
	return fc, nil
}
