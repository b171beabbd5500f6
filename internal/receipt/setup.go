package receipt

import (
	"fmt"
	"time"

	"cafe-receipt-bridge/internal/config"
	"cafe-receipt-bridge/internal/logging"
	"cafe-receipt-bridge/internal/printing"

	"github.com/shopspring/decimal"
)

// OptionsFromConfig maps the shop and receipt sections onto Options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	page, err := printing.LookupCodePage(cfg.Receipt.CodePage)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Shop: Shop{
			Name:       cfg.Shop.Name,
			TicketName: cfg.Shop.TicketName,
			Branch:     cfg.Shop.Branch,
			Address:    append([]string(nil), cfg.Shop.Address...),
			Phone:      cfg.Shop.Phone,
		},
		Formatter:  printing.NewFormatter(page, cfg.Receipt.PaperWidth, cfg.Receipt.CurrencySymbol, cfg.Location()),
		SplitDelay: cfg.SplitDelay(),
	}, nil
}

// FromConfig is NewService with options taken from cfg.
func FromConfig(cfg *config.Config, d Dispatcher, log *logging.Logger, onDeferred func(Result)) (*Service, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.OnDeferred = onDeferred
	return NewService(d, log, opts), nil
}

// ReportRequest is the wire form of a report: calendar dates plus either
// precomputed figures or the orders to total.
type ReportRequest struct {
	Period       PeriodKind       `json:"period"`
	Start        string           `json:"start"`
	End          string           `json:"end"`
	TotalRevenue *decimal.Decimal `json:"totalRevenue,omitempty"`
	OrderCount   *int             `json:"orderCount,omitempty"`
	Orders       []Order          `json:"orders,omitempty"`
}

const requestDate = "2006-01-02"

// Query resolves dates in loc. Supplied orders win over supplied totals.
func (r ReportRequest) Query(loc *time.Location) (ReportQuery, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := parseRequestDate(r.Start, loc)
	if err != nil {
		return ReportQuery{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseRequestDate(r.End, loc)
	if err != nil {
		return ReportQuery{}, fmt.Errorf("end: %w", err)
	}
	if end.IsZero() {
		end = start
	}
	if r.Orders != nil {
		return NewReportQuery(r.Period, start, end, r.Orders), nil
	}
	q := ReportQuery{Period: r.Period, Start: start, End: end}
	if r.TotalRevenue != nil {
		q.TotalRevenue = *r.TotalRevenue
	}
	if r.OrderCount != nil {
		q.OrderCount = *r.OrderCount
	}
	return q, nil
}

func parseRequestDate(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(requestDate, v, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	// keep the calendar day the caller wrote, whatever its offset
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}
