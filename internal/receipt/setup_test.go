package receipt

import (
	"context"
	"testing"
	"time"

	"cafe-receipt-bridge/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Receipt.TimeZone = "UTC"
	cfg.Receipt.SplitDelaySeconds = 5

	d := &recordingDispatcher{}
	svc, err := FromConfig(cfg, d, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, svc.splitDelay)
	assert.Equal(t, "1ER BOULEVARD", svc.shop.TicketName)

	require.True(t, svc.PrintInvoice(context.Background(), sampleOrder()).OK())
	assert.Contains(t, d.preview(0), "19 , Immeuble Jakar")

	cfg.Receipt.CodePage = "ebcdic"
	_, err = FromConfig(cfg, d, nil, nil)
	assert.Error(t, err)
}

func TestReportRequestQuery(t *testing.T) {
	casablanca := time.FixedZone("UTC+1", 3600)
	revenue := decimal.RequireFromString("480.25")
	count := 9

	tests := []struct {
		name    string
		req     ReportRequest
		want    ReportQuery
		wantErr bool
	}{
		{
			name: "figures",
			req:  ReportRequest{Period: PeriodDay, Start: "2024-03-15", TotalRevenue: &revenue, OrderCount: &count},
			want: ReportQuery{
				Period:       PeriodDay,
				Start:        time.Date(2024, time.March, 15, 0, 0, 0, 0, casablanca),
				End:          time.Date(2024, time.March, 15, 0, 0, 0, 0, casablanca),
				TotalRevenue: revenue,
				OrderCount:   9,
			},
		},
		{
			name: "orders win",
			req:  ReportRequest{Period: PeriodCustom, Start: "2024-01-01", End: "2024-01-31", TotalRevenue: &revenue, Orders: []Order{sampleOrder()}},
			want: ReportQuery{
				Period:       PeriodCustom,
				Start:        time.Date(2024, time.January, 1, 0, 0, 0, 0, casablanca),
				End:          time.Date(2024, time.January, 31, 0, 0, 0, 0, casablanca),
				TotalRevenue: dec("63.25"),
				OrderCount:   1,
			},
		},
		{
			name: "timestamp keeps its calendar day",
			req:  ReportRequest{Period: PeriodDay, Start: "2024-03-15T00:30:00+02:00"},
			want: ReportQuery{
				Period: PeriodDay,
				Start:  time.Date(2024, time.March, 15, 0, 0, 0, 0, casablanca),
				End:    time.Date(2024, time.March, 15, 0, 0, 0, 0, casablanca),
			},
		},
		{name: "bad start", req: ReportRequest{Period: PeriodDay, Start: "15/03/2024"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Query(casablanca)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Period, got.Period)
			assert.True(t, tt.want.Start.Equal(got.Start), "start %s", got.Start)
			assert.True(t, tt.want.End.Equal(got.End), "end %s", got.End)
			assert.True(t, tt.want.TotalRevenue.Equal(got.TotalRevenue))
			assert.Equal(t, tt.want.OrderCount, got.OrderCount)
		})
	}
}

func TestReportRequestLabelsCallerDay(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	q, err := ReportRequest{Period: PeriodDay, Start: "2024-03-15T00:30:00+02:00"}.Query(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "Jour: 15/03/2024", svc.PeriodLabel(q.Period, q.Start, q.End))
}
