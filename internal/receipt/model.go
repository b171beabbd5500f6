package receipt

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is the read-only projection handed in by the order screens.
type Order struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	AgentName   string          `json:"agentName"`
	Items       []LineItem      `json:"items"`
	Total       decimal.Decimal `json:"total"`
	TableNumber *int            `json:"tableNumber,omitempty"`
}

// ItemsTotal is what every document prints as TOTAL.
func (o Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range o.Items {
		sum = sum.Add(li.LineTotal())
	}
	return sum
}

// ShortID is the invoice number printed under FACTURE.
func (o Order) ShortID() string {
	r := []rune(o.ID)
	if len(r) > 8 {
		return string(r[:8])
	}
	return o.ID
}

type PeriodKind string

const (
	PeriodDay    PeriodKind = "day"
	PeriodMonth  PeriodKind = "month"
	PeriodYear   PeriodKind = "year"
	PeriodCustom PeriodKind = "custom"
)

type ReportQuery struct {
	Period       PeriodKind      `json:"period"`
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	OrderCount   int             `json:"orderCount"`
}

// NewReportQuery sums the already filtered orders into a query.
func NewReportQuery(period PeriodKind, start, end time.Time, orders []Order) ReportQuery {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.ItemsTotal())
	}
	return ReportQuery{
		Period:       period,
		Start:        start,
		End:          end,
		TotalRevenue: total,
		OrderCount:   len(orders),
	}
}
