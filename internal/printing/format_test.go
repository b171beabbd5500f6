package printing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testFormatter() *Formatter {
	return NewFormatter(DefaultCodePage(), 32, "DH", time.UTC)
}

func TestCurrency(t *testing.T) {
	f := testFormatter()
	tests := []struct {
		amount string
		want   string
	}{
		{amount: "0", want: "0,00 DH"},
		{amount: "12.5", want: "12,50 DH"},
		{amount: "1234.5", want: "1 234,50 DH"},
		{amount: "1234567.891", want: "1 234 567,89 DH"},
		{amount: "999.999", want: "1 000,00 DH"},
		{amount: "-45", want: "-45,00 DH"},
		{amount: "-0.001", want: "0,00 DH"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Currency(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestCurrencyWithoutSymbol(t *testing.T) {
	f := NewFormatter(DefaultCodePage(), 32, "", time.UTC)
	assert.Equal(t, "7,00", f.Currency(decimal.NewFromInt(7)))
}

func TestDates(t *testing.T) {
	f := testFormatter()
	ts := time.Date(2024, time.March, 15, 14, 5, 9, 0, time.UTC)

	assert.Equal(t, "15/03/2024 14:05", f.Date(ts))
	assert.Equal(t, "15/03/2024", f.ShortDate(ts))
	assert.Equal(t, "14:05:09", f.Time(ts))
	assert.Equal(t, "mars 2024", f.MonthYear(ts))
	assert.Equal(t, "2024", f.Year(ts))
}

func TestDatesUseFormatterLocation(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	f := NewFormatter(DefaultCodePage(), 32, "DH", loc)
	ts := time.Date(2024, time.December, 31, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "01/01/2025", f.ShortDate(ts))
	assert.Equal(t, "2025", f.Year(ts))
}

func TestZeroLocationMeansLocal(t *testing.T) {
	f := &Formatter{CodePage: DefaultCodePage(), Width: 32}
	ts := time.Date(2024, time.March, 15, 14, 5, 0, 0, time.UTC)

	assert.NotPanics(t, func() { f.Date(ts) })
	assert.Equal(t, ts.In(time.Local).Format("02/01/2006"), f.ShortDate(ts))
}
