package sales

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Errores de validación de la carga. Any of them rejects the whole batch.
var (
	ErrSchema         = errors.New("missing required fields")
	ErrDateParse      = errors.New("unparseable date")
	ErrTypeCoercion   = errors.New("non-numeric value")
	ErrInvalidProduct = errors.New("empty product")
)

// RequiredFields lists the columns every upload must carry.
var RequiredFields = []string{"date", "product", "quantity", "amount"}

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"02.01.2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Normalize validates every row of t and converts it into SaleRecords
// stamped with batchID. It returns on the first invalid row without
// producing any records, and preserves input row order otherwise.
func Normalize(t *Table, batchID string) ([]SaleRecord, error) {
	cols := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		h = strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	var missing []string
	for _, f := range RequiredFields {
		if _, ok := cols[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrSchema, strings.Join(missing, ", "))
	}

	records := make([]SaleRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		line := i + 2 // 1-based, after the header
		cell := func(f string) string {
			idx := cols[f]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		date, err := parseDate(cell("date"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %q", ErrDateParse, line, cell("date"))
		}

		product := cell("product")
		if product == "" {
			return nil, fmt.Errorf("%w: row %d", ErrInvalidProduct, line)
		}

		qty, err := parseQuantity(cell("quantity"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: quantity %q", ErrTypeCoercion, line, cell("quantity"))
		}

		amount, err := parseAmount(cell("amount"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: amount %q", ErrTypeCoercion, line, cell("amount"))
		}

		records = append(records, SaleRecord{
			BatchID:  batchID,
			Date:     date,
			Product:  product,
			Quantity: qty,
			Amount:   amount,
		})
	}
	return records, nil
}

func parseDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t), nil
		}
	}
	return "", fmt.Errorf("no layout matches %q", s)
}

// parseAmount rejects values that do not fit a finite float64, such as 1e400.
func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return f, nil
}

// parseQuantity accepts integers and truncates finite floats toward zero,
// so "1.5" becomes 1.
func parseQuantity(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1<<63 {
		return 0, fmt.Errorf("quantity %q is out of range", s)
	}
	return int64(math.Trunc(f)), nil
}
