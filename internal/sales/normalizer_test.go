package sales

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, csv string) *Table {
	t.Helper()
	table, err := ParseCSV(strings.NewReader(csv), 0)
	require.NoError(t, err)
	return table
}

func TestParseCSV_LowercasesHeader(t *testing.T) {
	table := mustParse(t, "\ufeffDate, Product ,QUANTITY,Amount,Note\n2026-10-01,tea,2,3.5,x\n")
	assert.Equal(t, []string{"date", "product", "quantity", "amount", "note"}, table.Header)
	assert.Equal(t, [][]string{{"2026-10-01", "tea", "2", "3.5", "x"}}, table.Rows)
}

func TestParseCSV_Errors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), 0)
	assert.ErrorIs(t, err, ErrSchema)

	_, err = ParseCSV(strings.NewReader("date,product,quantity,amount\n"), 0)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = ParseCSV(strings.NewReader("date,product,quantity,amount\n2026-10-01,tea,1\n"), 0)
	assert.ErrorIs(t, err, ErrMalformedCSV, "ragged row")
	assert.NotErrorIs(t, err, ErrSchema)

	_, err = ParseCSV(strings.NewReader("date,product,quantity,amount\n2026-10-01,\"tea,1,1\n"), 0)
	assert.ErrorIs(t, err, ErrMalformedCSV, "unterminated quote")
}

func TestParseCSV_MaxRows(t *testing.T) {
	csv := "date,product,quantity,amount\n2026-10-01,a,1,1\n2026-10-01,b,1,1\n2026-10-01,c,1,1\n"

	_, err := ParseCSV(strings.NewReader(csv), 2)
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	table, err := ParseCSV(strings.NewReader(csv), 3)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)
}

func TestNormalize_Valid(t *testing.T) {
	table := mustParse(t, `Amount,Date,Product,Quantity,Store
12.50,2026-10-03,Coffee,2,north
7,2026/10/01,Tea,1,south
1e2,02.10.2026,Cake,3.0,north
-4.25,2026-10-04T18:30:00Z,Coffee,-1,north
`)

	records, err := Normalize(table, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, []SaleRecord{
		{BatchID: "batch-1", Date: "2026-10-03", Product: "Coffee", Quantity: 2, Amount: 12.5},
		{BatchID: "batch-1", Date: "2026-10-01", Product: "Tea", Quantity: 1, Amount: 7},
		{BatchID: "batch-1", Date: "2026-10-02", Product: "Cake", Quantity: 3, Amount: 100},
		{BatchID: "batch-1", Date: "2026-10-04", Product: "Coffee", Quantity: -1, Amount: -4.25},
	}, records)
}

func TestNormalize_MissingFields(t *testing.T) {
	table := mustParse(t, "date,product,quantity\n2026-10-01,tea,1\n")
	_, err := Normalize(table, "b")
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "amount")

	table = mustParse(t, "product,qty\ntea,1\n")
	_, err = Normalize(table, "b")
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "amount, date, quantity")
}

func TestNormalize_RejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want error
	}{
		{
			name: "bad date on last row",
			csv:  "date,product,quantity,amount\n2026-10-01,tea,1,1\n2026-13-45,tea,1,1\n",
			want: ErrDateParse,
		},
		{
			name: "empty date",
			csv:  "date,product,quantity,amount\n,tea,1,1\n",
			want: ErrDateParse,
		},
		{
			name: "text quantity",
			csv:  "date,product,quantity,amount\n2026-10-01,tea,two,1\n",
			want: ErrTypeCoercion,
		},
		{
			name: "quantity out of range",
			csv:  "date,product,quantity,amount\n2026-10-01,tea,1e30,1\n",
			want: ErrTypeCoercion,
		},
		{
			name: "text amount",
			csv:  "date,product,quantity,amount\n2026-10-01,tea,1,free\n",
			want: ErrTypeCoercion,
		},
		{
			name: "nan amount",
			csv:  "date,product,quantity,amount\n2026-10-01,tea,1,NaN\n",
			want: ErrTypeCoercion,
		},
		{
			name: "amount overflows float",
			csv:  "date,product,quantity,amount\n2026-10-01,tea,1,1\n2026-10-01,tea,1,1e400\n",
			want: ErrTypeCoercion,
		},
		{
			name: "negative amount overflows float",
			csv:  "date,product,quantity,amount\n2026-10-01,tea,1,-1e400\n",
			want: ErrTypeCoercion,
		},
		{
			name: "blank product",
			csv:  "date,product,quantity,amount\n2026-10-01,  ,1,1\n",
			want: ErrInvalidProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Normalize(mustParse(t, tt.csv), "b")
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, records)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	n, err := parseQuantity("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = parseQuantity("-7.0")
	require.NoError(t, err)
	assert.Equal(t, int64(-7), n)

	n, err = parseQuantity("1.5")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = parseQuantity("-2.9")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), n)

	_, err = parseQuantity("1e30")
	assert.Error(t, err)

	_, err = parseQuantity("NaN")
	assert.Error(t, err)
}

func TestNormalize_TruncatesFractionalQuantity(t *testing.T) {
	records, err := Normalize(mustParse(t, "date,product,quantity,amount\n2026-10-19,tea,1.5,1\n"), "b")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].Quantity)
}

func TestParseAmount(t *testing.T) {
	f, err := parseAmount("12.50")
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)

	for _, s := range []string{"1e400", "-1e400", "NaN", "Inf", ""} {
		_, err := parseAmount(s)
		assert.Error(t, err, s)
	}
}
