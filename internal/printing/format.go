package printing

import (
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/shopspring/decimal"
)

// Formatter renders amounts and dates the way the café prints them
// (French conventions) and opens documents on the configured paper.
type Formatter struct {
	CodePage       CodePage
	Width          int
	CurrencySymbol string
	Location       *time.Location
}

func NewFormatter(page CodePage, width int, symbol string, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{CodePage: page, Width: width, CurrencySymbol: symbol, Location: loc}
}

// NewDocument starts an initialized document.
func (f *Formatter) NewDocument() *Document {
	return NewDocument(f.CodePage, f.Width).Init()
}

// Currency formats amount with two decimals, a comma separator and
// space-grouped thousands: 1 234,50 DH.
func (f *Formatter) Currency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	intPart, frac, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart))
	b.WriteByte(',')
	b.WriteString(frac)
	if f.CurrencySymbol != "" {
		b.WriteByte(' ')
		b.WriteString(f.CurrencySymbol)
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	var b strings.Builder
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func (f *Formatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

// Date is the ticket timestamp: 15/03/2024 14:05.
func (f *Formatter) Date(t time.Time) string {
	return t.In(f.location()).Format("02/01/2006 15:04")
}

func (f *Formatter) ShortDate(t time.Time) string {
	return t.In(f.location()).Format("02/01/2006")
}

func (f *Formatter) Time(t time.Time) string {
	return t.In(f.location()).Format("15:04:05")
}

// MonthYear spells the month in French: mars 2024.
func (f *Formatter) MonthYear(t time.Time) string {
	return monday.Format(t.In(f.location()), "January 2006", monday.LocaleFrFR)
}

func (f *Formatter) Year(t time.Time) string {
	return strconv.Itoa(t.In(f.location()).Year())
}
