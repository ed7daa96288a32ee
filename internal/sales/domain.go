package sales

import "time"

// DateLayout is the canonical form of a sale date.
const DateLayout = "2006-01-02"

// SaleRecord represents a single sales transaction in the system.
type SaleRecord struct {
	ID       int64   `json:"id"`
	BatchID  string  `json:"batch_id"`
	Date     string  `json:"date"`
	Product  string  `json:"product"`
	Quantity int64   `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// DailyTotal is the sum of amounts of all records sharing a calendar date.
type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// ProductRevenue is the total revenue of one product.
type ProductRevenue struct {
	Product string  `json:"product"`
	Revenue float64 `json:"revenue"`
}

// Report is the composite result handed to the presentation layer.
type Report struct {
	DailyRevenue []DailyTotal     `json:"daily_revenue"`
	AverageCheck float64          `json:"average_check"`
	TopProducts  []ProductRevenue `json:"top_products"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// Forecast is a one-day-ahead revenue estimate. Sufficient is false when
// the trailing window holds too few days of sales; Value is zero then and
// must not be read as a forecast of zero revenue.
type Forecast struct {
	Sufficient   bool    `json:"sufficient"`
	Value        float64 `json:"value"`
	TargetDate   string  `json:"target_date"`
	DaysObserved int     `json:"days_observed"`
	WindowDays   int     `json:"window_days"`
}

// UploadResult describes an accepted ingestion batch.
type UploadResult struct {
	BatchID  string `json:"batch_id"`
	Inserted int    `json:"inserted"`
}

func dateOf(t time.Time) string {
	return t.Format(DateLayout)
}
