package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"cafe-receipt-bridge/internal/logging"
	"cafe-receipt-bridge/internal/printing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	docs  [][]byte
	times []time.Time
	ctxs  []context.Context
	err   error
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, append([]byte(nil), data...))
	r.times = append(r.times, time.Now())
	r.ctxs = append(r.ctxs, ctx)
	return r.err
}

func (r *recordingDispatcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func (r *recordingDispatcher) preview(i int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return printing.Preview(r.docs[i], printing.DefaultCodePage())
}

type pendingCall struct {
	delay time.Duration
	fn    func()
}

type manualScheduler struct {
	pending []pendingCall
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) {
	m.pending = append(m.pending, pendingCall{delay: d, fn: f})
}

func (m *manualScheduler) runAll() {
	calls := m.pending
	m.pending = nil
	for _, c := range calls {
		c.fn()
	}
}

type countingNotifier struct {
	messages []string
}

func (c *countingNotifier) Alert(message string) { c.messages = append(c.messages, message) }

var testNow = time.Date(2024, time.April, 2, 18, 30, 0, 0, time.UTC)

func testShop() Shop {
	return Shop{
		Name:       "Le 1er Boulevard",
		TicketName: "1ER BOULEVARD",
		Branch:     "GUELIZ",
		Address:    []string{"19 , Immeuble Jakar", "Boulevard Mohammed V 40000, Marrakech"},
		Phone:      "01 23 45 67 89",
	}
}

func newTestService(t *testing.T, d Dispatcher, mutate func(*Options)) (*Service, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	opts := Options{
		Shop:       testShop(),
		Formatter:  printing.NewFormatter(printing.DefaultCodePage(), 32, "DH", time.UTC),
		SplitDelay: 3 * time.Second,
		Pick:       func(int) int { return 0 },
		Now:        func() time.Time { return testNow },
		Scheduler:  &manualScheduler{},
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewService(d, logging.NewWriter(&logs, true), opts), &logs
}

func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func countLogs(t *testing.T, buf *bytes.Buffer, level string, kind Kind) int {
	t.Helper()
	n := 0
	for _, e := range logEntries(t, buf) {
		if e["level"] == level && e["component"] == string(kind) {
			n++
		}
	}
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func table(n int) *int { return &n }

func sampleOrder() Order {
	return Order{
		ID:        "3f2b8c1e-9a7d-4e21-b5f0-1c2d3e4f5a6b",
		Date:      time.Date(2024, time.March, 15, 9, 45, 0, 0, time.UTC),
		AgentName: "Yassine",
		Items: []LineItem{
			{Name: "Cafe noir", Quantity: 2, UnitPrice: dec("12.50")},
			{Name: "Jus d'orange", Quantity: 1, UnitPrice: dec("18")},
			{Name: "Croissant", Quantity: 3, UnitPrice: dec("6.75")},
		},
		Total: dec("63.25"),
	}
}
