package sales

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sales (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT    NOT NULL,
	date     TEXT    NOT NULL,
	product  TEXT    NOT NULL,
	quantity INTEGER NOT NULL,
	amount   REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date);
CREATE INDEX IF NOT EXISTS idx_sales_batch ON sales(batch_id);`

// SQLiteStorage implements Storage on a single SQLite file.
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an in-memory database.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// One connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Insert writes the whole batch in one transaction.
func (s *SQLiteStorage) Insert(ctx context.Context, records []SaleRecord) (int, error) {
	for _, r := range records {
		if r.BatchID == "" {
			return 0, ErrEmptyBatchID
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO sales (batch_id, date, product, quantity, amount) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.BatchID, r.Date, r.Product, r.Quantity, r.Amount); err != nil {
			return 0, fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return len(records), nil
}

func (s *SQLiteStorage) DailyTotals(ctx context.Context, since string) ([]DailyTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, SUM(amount) AS total
		FROM sales
		WHERE date >= ?
		GROUP BY date
		ORDER BY date ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("daily totals since %s: %w", since, err)
	}
	defer rows.Close()

	totals := make([]DailyTotal, 0)
	for rows.Next() {
		var t DailyTotal
		if err := rows.Scan(&t.Date, &t.Total); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (s *SQLiteStorage) AverageAmount(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, "SELECT AVG(amount) FROM sales").Scan(&avg); err != nil {
		return 0, fmt.Errorf("average amount: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// TopProductsByRevenue sums amounts per product in decimal rather than
// with SQL SUM over REAL, which would rank 0.1+0.2 above 0.3.
func (s *SQLiteStorage) TopProductsByRevenue(ctx context.Context, limit int) ([]ProductRevenue, error) {
	if limit <= 0 {
		return []ProductRevenue{}, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT product, amount FROM sales")
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	byProduct := map[string]decimal.Decimal{}
	for rows.Next() {
		var (
			product string
			amount  float64
		)
		if err := rows.Scan(&product, &amount); err != nil {
			return nil, fmt.Errorf("scan product amount: %w", err)
		}
		byProduct[product] = byProduct[product].Add(decimal.NewFromFloat(amount))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return rankProducts(byProduct, limit), nil
}

func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales").Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

func (s *SQLiteStorage) BatchRecords(ctx context.Context, batchID string) ([]SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, batch_id, date, product, quantity, amount
		FROM sales
		WHERE batch_id = ?
		ORDER BY id ASC`, batchID)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", batchID, err)
	}
	defer rows.Close()

	out := make([]SaleRecord, 0)
	for rows.Next() {
		var r SaleRecord
		if err := rows.Scan(&r.ID, &r.BatchID, &r.Date, &r.Product, &r.Quantity, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
