package sales

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrEmptyBatchID is returned when trying to store records without a batch ID.
var ErrEmptyBatchID = errors.New("empty batch ID")

// Storage is the main interface for our sales storage layer.
//
// Insert is atomic per batch: either every record is persisted or none is.
// Reads only ever observe fully committed batches.
type Storage interface {
	Insert(ctx context.Context, records []SaleRecord) (int, error)
	// DailyTotals returns one entry per date >= since that has at least one
	// record, in ascending date order.
	DailyTotals(ctx context.Context, since string) ([]DailyTotal, error)
	// AverageAmount returns 0 when the store is empty.
	AverageAmount(ctx context.Context) (float64, error)
	// TopProductsByRevenue orders by revenue descending, then product name
	// ascending. Revenue is summed in decimal so ties do not depend on
	// float rounding.
	TopProductsByRevenue(ctx context.Context, limit int) ([]ProductRevenue, error)
	Count(ctx context.Context) (int, error)
	BatchRecords(ctx context.Context, batchID string) ([]SaleRecord, error)
	Close() error
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu     sync.RWMutex
	nextID int64
	s      []SaleRecord
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage instantiates a new, empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// Insert appends the batch under a single write lock.
// Returns ErrEmptyBatchID if any record has an empty batch ID.
func (l *LocalStorage) Insert(ctx context.Context, records []SaleRecord) (int, error) {
	for _, r := range records {
		if r.BatchID == "" {
			return 0, ErrEmptyBatchID
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range records {
		l.nextID++
		r.ID = l.nextID
		l.s = append(l.s, r)
	}
	return len(records), nil
}

func (l *LocalStorage) DailyTotals(ctx context.Context, since string) ([]DailyTotal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	byDate := map[string]decimal.Decimal{}
	for _, r := range l.s {
		if r.Date < since {
			continue
		}
		byDate[r.Date] = byDate[r.Date].Add(decimal.NewFromFloat(r.Amount))
	}

	totals := make([]DailyTotal, 0, len(byDate))
	for d, sum := range byDate {
		totals = append(totals, DailyTotal{Date: d, Total: sum.InexactFloat64()})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date < totals[j].Date })
	return totals, nil
}

func (l *LocalStorage) AverageAmount(ctx context.Context) (float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.s) == 0 {
		return 0, nil
	}
	sum := decimal.Zero
	for _, r := range l.s {
		sum = sum.Add(decimal.NewFromFloat(r.Amount))
	}
	return sum.Div(decimal.NewFromInt(int64(len(l.s)))).InexactFloat64(), nil
}

func (l *LocalStorage) TopProductsByRevenue(ctx context.Context, limit int) ([]ProductRevenue, error) {
	if limit <= 0 {
		return []ProductRevenue{}, nil
	}

	l.mu.RLock()
	byProduct := map[string]decimal.Decimal{}
	for _, r := range l.s {
		byProduct[r.Product] = byProduct[r.Product].Add(decimal.NewFromFloat(r.Amount))
	}
	l.mu.RUnlock()

	return rankProducts(byProduct, limit), nil
}

// rankProducts orders products by revenue descending, then by name
// ascending, and keeps the first limit entries. Both stores rank through
// it so that equal decimal sums tie the same way on every backend.
func rankProducts(byProduct map[string]decimal.Decimal, limit int) []ProductRevenue {
	type ranked struct {
		product string
		revenue decimal.Decimal
	}
	all := make([]ranked, 0, len(byProduct))
	for p, rev := range byProduct {
		all = append(all, ranked{product: p, revenue: rev})
	}
	sort.Slice(all, func(i, j int) bool {
		if c := all[i].revenue.Cmp(all[j].revenue); c != 0 {
			return c > 0
		}
		return all[i].product < all[j].product
	})
	if len(all) > limit {
		all = all[:limit]
	}

	top := make([]ProductRevenue, len(all))
	for i, r := range all {
		top[i] = ProductRevenue{Product: r.product, Revenue: r.revenue.InexactFloat64()}
	}
	return top
}

func (l *LocalStorage) Count(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.s), nil
}

// BatchRecords retrieves all records of one batch in insertion order.
func (l *LocalStorage) BatchRecords(ctx context.Context, batchID string) ([]SaleRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]SaleRecord, 0)
	for _, r := range l.s {
		if r.BatchID == batchID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (l *LocalStorage) Close() error {
	return nil
}
