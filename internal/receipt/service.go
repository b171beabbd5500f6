package receipt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cafe-receipt-bridge/internal/logging"
	"cafe-receipt-bridge/internal/printing"
)

// Dispatcher hands a finished command stream to the printer. It is treated
// as fire-and-forget: a nil error only means the bytes were accepted.
type Dispatcher interface {
	Dispatch(ctx context.Context, data []byte) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, data []byte) error

func (f DispatcherFunc) Dispatch(ctx context.Context, data []byte) error { return f(ctx, data) }

// Scheduler runs f once, no earlier than d from now.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

type Shop struct {
	Name       string
	TicketName string
	Branch     string
	Address    []string
	Phone      string
}

type Options struct {
	Shop      Shop
	Formatter *printing.Formatter
	// SplitDelay separates the two halves of a split table ticket.
	SplitDelay time.Duration
	Pick       Picker
	Now        func() time.Time
	Scheduler  Scheduler
	// OnDeferred receives the outcome of dispatches that ran after the
	// originating call returned.
	OnDeferred func(Result)
}

// Service assembles café documents and sends them to a Dispatcher.
type Service struct {
	dispatcher Dispatcher
	log        *logging.Logger
	shop       Shop
	format     *printing.Formatter
	splitDelay time.Duration
	courtesy   []string
	pick       Picker
	now        func() time.Time
	scheduler  Scheduler
	onDeferred func(Result)

	pending   sync.WaitGroup
	scheduled atomic.Int64
}

func NewService(d Dispatcher, log *logging.Logger, opts Options) *Service {
	if log == nil {
		log = logging.Nop()
	}
	if opts.Formatter == nil {
		opts.Formatter = printing.NewFormatter(printing.DefaultCodePage(), 32, "DH", time.Local)
	}
	if opts.Pick == nil {
		opts.Pick = defaultPicker
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timerScheduler{}
	}
	if opts.Shop.TicketName == "" {
		opts.Shop.TicketName = strings.ToUpper(opts.Shop.Name)
	}
	return &Service{
		dispatcher: d,
		log:        log,
		shop:       opts.Shop,
		format:     opts.Formatter,
		splitDelay: opts.SplitDelay,
		courtesy:   CourtesyMessages(opts.Shop.Name),
		pick:       opts.Pick,
		now:        opts.Now,
		scheduler:  opts.Scheduler,
		onDeferred: opts.OnDeferred,
	}
}

// Formatter exposes the formatter so callers can preview amounts/dates.
func (s *Service) Formatter() *printing.Formatter { return s.format }

// dispatch builds one document and sends it. Any failure, including a
// panic while building, comes back as a failed Result.
func (s *Service) dispatch(ctx context.Context, kind Kind, build func() *printing.Document) Result {
	doc, err := assemble(build)
	if err != nil {
		return s.failed(kind, 0, err)
	}
	return s.deliver(ctx, kind, doc.Bytes())
}

func (s *Service) deliver(ctx context.Context, kind Kind, data []byte) Result {
	log := s.log.Tagged(string(kind))
	log.Info("sending to printer, content length: %d", len(data))

	if err := s.send(ctx, data); err != nil {
		return s.failed(kind, len(data), err)
	}
	log.Info("print command sent successfully")
	return Result{Kind: kind, Bytes: len(data), Dispatches: 1}
}

func (s *Service) failed(kind Kind, n int, err error) Result {
	s.log.Tagged(string(kind)).Failure(err, "error printing")
	return Result{
		Kind:   kind,
		Reason: ReasonDispatchFailed,
		Bytes:  n,
		Err:    fmt.Errorf("print %s: %w", strings.ToLower(string(kind)), err),
	}
}

func assemble(build func() *printing.Document) (doc *printing.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("document assembly panicked: %v", r)
		}
	}()
	doc = build()
	if doc == nil {
		return nil, fmt.Errorf("document assembly produced nothing")
	}
	return doc, nil
}

// send converts a panicking sink into an error so nothing escapes a builder.
func (s *Service) send(ctx context.Context, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("printer sink panicked: %v", r)
		}
	}()
	if s.dispatcher == nil {
		return fmt.Errorf("no printer configured")
	}
	return s.dispatcher.Dispatch(ctx, data)
}

// dispatchPair builds both documents, sends first now and second after the
// split delay. The deferred half is skipped when the first one could not be
// delivered.
func (s *Service) dispatchPair(ctx context.Context, kind Kind, buildFirst, buildSecond func() *printing.Document) Result {
	first, err := assemble(buildFirst)
	if err != nil {
		return s.failed(kind, 0, err)
	}
	second, err := assemble(buildSecond)
	if err != nil {
		return s.failed(kind, 0, err)
	}

	res := s.deliver(ctx, kind, first.Bytes())
	if !res.OK() {
		return res
	}

	detached := context.WithoutCancel(ctx)
	later := second.Bytes()
	s.log.Tagged(string(kind)).Info("second ticket scheduled in %s", s.splitDelay)
	s.pending.Add(1)
	s.scheduled.Add(1)
	s.scheduler.AfterFunc(s.splitDelay, func() {
		defer s.pending.Done()
		defer s.scheduled.Add(-1)
		deferred := s.deliver(detached, kind, later)
		if s.onDeferred != nil {
			s.onDeferred(deferred)
		}
	})
	res.Bytes += len(later)
	res.Deferred = 1
	return res
}

// Pending counts deferred dispatches that have not run yet.
func (s *Service) Pending() int { return int(s.scheduled.Load()) }

// Wait blocks until every deferred dispatch scheduled so far has run. The
// dispatcher must stay usable until then.
func (s *Service) Wait() { s.pending.Wait() }

func (s *Service) checkTotal(log *logging.Logger, o Order) {
	computed := o.ItemsTotal()
	if !o.Total.IsZero() && !o.Total.Equal(computed) {
		log.Warn("order %s total %s differs from items total %s, printing items total",
			o.ID, o.Total.StringFixed(2), computed.StringFixed(2))
	}
}

func missingTable(log *logging.Logger, kind Kind, o Order) (Result, bool) {
	if o.TableNumber != nil {
		return Result{}, false
	}
	err := fmt.Errorf("order %s has no table number", o.ID)
	log.Failure(err, "error printing")
	return Result{Kind: kind, Reason: ReasonMissingTable, Err: err}, true
}
