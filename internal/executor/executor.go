package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quotelab/stockplay/internal/engine"
	"github.com/quotelab/stockplay/internal/model"
	"github.com/quotelab/stockplay/internal/report"
)

// Submission shape failures, reported to the submitter rather than silently
// dropped.
var (
	ErrInvalidCount  = errors.New("count must be positive")
	ErrNoDestination = errors.New("reply destination required")
	ErrNoNick        = errors.New("nick required")
	ErrStopped       = errors.New("executor stopped")
)

// Kind discriminates Task payloads.
type Kind int

const (
	KindTrade Kind = iota
	KindReport
)

// Task is one unit of serialized work.
type Task struct {
	ID     uuid.UUID
	Kind   Kind
	Trade  model.TradeRequest
	Report model.ReportRequest
}

// TradeExecutor commits validated trades.
type TradeExecutor interface {
	Execute(ctx context.Context, req model.TradeRequest) (engine.Receipt, error)
}

// ReportBuilder assembles portfolio reports.
type ReportBuilder interface {
	Build(ctx context.Context, nick string) (report.Report, error)
}

// SnapshotStore is the ledger slice housekeeping needs.
type SnapshotStore interface {
	AccountsWithoutSnapshot(ctx context.Context, day string) ([]string, error)
	InsertSnapshot(ctx context.Context, nick, day string, cents int64) error
}

// Notifier delivers reply text to a destination.
type Notifier interface {
	Notify(replyTo, text string)
}

// NotifierFunc is a function adapter for Notifier.
type NotifierFunc func(replyTo, text string)

func (f NotifierFunc) Notify(replyTo, text string) {
	f(replyTo, text)
}

// Config holds executor configuration.
type Config struct {
	IdleWait             time.Duration // Wait between queue polls when idle (default: 1s)
	HousekeepingInterval time.Duration // Min spacing between snapshot passes (default: 60s)
	MidnightOffset       time.Duration // Shifts the day boundary for snapshots (default: 0)
	TaskTimeout          time.Duration // Per-task deadline (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		IdleWait:             time.Second,
		HousekeepingInterval: time.Minute,
		TaskTimeout:          30 * time.Second,
	}
}

// Executor drains the task queue one task at a time. It is the single
// writer of ledger state; the engine and snapshot store it drives assume no
// concurrent mutation.
type Executor struct {
	cfg     Config
	trades  TradeExecutor
	reports ReportBuilder
	snaps   SnapshotStore
	notify  Notifier
	logger  *slog.Logger

	queue *Queue[Task]
	now   func() time.Time // test seam

	lastHousekeeping time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an executor.
func New(cfg Config, trades TradeExecutor, reports ReportBuilder, snaps SnapshotStore, notify Notifier, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		cfg:     cfg,
		trades:  trades,
		reports: reports,
		snaps:   snaps,
		notify:  notify,
		logger:  logger,
		queue:   NewQueue[Task](16),
		now:     time.Now,
	}
}

// SubmitTrade validates the request's shape and enqueues it. It never
// blocks; enqueueing grows the queue as needed.
func (e *Executor) SubmitTrade(req model.TradeRequest) error {
	symbol, err := model.CleanSymbol(req.Symbol)
	if err != nil {
		return err
	}
	req.Symbol = symbol

	if req.Count <= 0 {
		return ErrInvalidCount
	}
	if req.ReplyTo == "" {
		return ErrNoDestination
	}
	if req.Nick == "" {
		return ErrNoNick
	}

	task := Task{ID: uuid.New(), Kind: KindTrade, Trade: req}
	if !e.queue.Send(task) {
		return ErrStopped
	}
	e.logger.Debug("trade queued",
		"task", task.ID,
		"nick", req.Nick,
		"side", req.Side,
		"symbol", req.Symbol,
		"count", req.Count,
	)
	return nil
}

// SubmitReport validates the request's shape and enqueues it.
func (e *Executor) SubmitReport(req model.ReportRequest) error {
	if req.Nick == "" || req.Requester == "" {
		return ErrNoNick
	}
	if req.ReplyTo == "" {
		return ErrNoDestination
	}

	task := Task{ID: uuid.New(), Kind: KindReport, Report: req}
	if !e.queue.Send(task) {
		return ErrStopped
	}
	e.logger.Debug("report queued", "task", task.ID, "nick", req.Nick)
	return nil
}

// Start begins the processing loop.
func (e *Executor) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go e.run()

	e.logger.Info("task executor started",
		"idle_wait", e.cfg.IdleWait,
		"housekeeping_interval", e.cfg.HousekeepingInterval,
	)
	return nil
}

// Stop gracefully shuts down the executor. The in-flight task, if any,
// completes; queued tasks beyond it are discarded.
func (e *Executor) Stop(ctx context.Context) error {
	e.queue.Close()
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("task executor stopped", "discarded", e.queue.Len())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run drains the queue. Cancellation is only observed at an idle point, so
// a task that has started always finishes.
func (e *Executor) run() {
	defer e.wg.Done()

	for {
		task, ok := e.queue.TryReceive()
		if ok {
			e.process(task)
			continue
		}

		select {
		case <-e.ctx.Done():
			return
		case <-time.After(e.cfg.IdleWait):
			e.maybeHousekeep()
		}
	}
}

func (e *Executor) process(task Task) {
	// Detached from e.ctx so shutdown cannot tear a half-applied task.
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.TaskTimeout)
	defer cancel()

	switch task.Kind {
	case KindTrade:
		e.processTrade(ctx, task.Trade)
	case KindReport:
		e.processReport(ctx, task.Report)
	default:
		e.logger.Error("unknown task kind", "task", task.ID, "kind", task.Kind)
	}
}

func (e *Executor) processTrade(ctx context.Context, req model.TradeRequest) {
	rcpt, err := e.trades.Execute(ctx, req)

	switch {
	case err == nil:
		verb := "bought"
		if req.Side == model.Sell {
			verb = "sold"
		}
		e.notify.Notify(req.ReplyTo, fmt.Sprintf("%s: %s %d %s for %s. cash: %s",
			req.Nick, verb, req.Count, req.Symbol,
			report.FormatCents(rcpt.PriceCents), report.FormatCents(rcpt.CashCents)))

	case errors.Is(err, engine.ErrInsufficientFunds):
		e.notify.Notify(req.ReplyTo, fmt.Sprintf("%s: you can't afford %s.",
			req.Nick, report.FormatCents(rcpt.PriceCents)))

	case errors.Is(err, engine.ErrInsufficientShares):
		e.notify.Notify(req.ReplyTo, fmt.Sprintf("%s: you don't have that many.", req.Nick))

	case errors.Is(err, engine.ErrInvalidQuantity):
		e.notify.Notify(req.ReplyTo, fmt.Sprintf("%s: invalid quantity.", req.Nick))

	default:
		// Quote failure, storage failure or timeout. The ledger is
		// untouched either way.
		e.logger.Error("trade aborted",
			"nick", req.Nick,
			"symbol", req.Symbol,
			"error", err,
		)
		e.notify.Notify(req.ReplyTo, fmt.Sprintf("%s: invalid symbol or api failure, trade aborted!", req.Nick))
	}
}

func (e *Executor) processReport(ctx context.Context, req model.ReportRequest) {
	rep, err := e.reports.Build(ctx, req.Nick)
	if err != nil {
		e.logger.Error("report failed", "nick", req.Nick, "error", err)
		e.notify.Notify(req.ReplyTo, fmt.Sprintf("%s: report unavailable, try again later.", req.Requester))
		return
	}

	owner := "you have"
	if req.Nick != req.Requester {
		owner = req.Nick + " has"
	}
	e.notify.Notify(req.ReplyTo, fmt.Sprintf("%s: %s cash: %s stock value: ~%s total: ~%s (24h %s)",
		req.Requester, owner,
		report.FormatDecimal(rep.Cash),
		report.FormatDecimal(rep.HoldingValue),
		report.FormatDecimal(rep.Total()),
		report.FormatGainLoss(rep.DayGain, rep.DayGainPct)))

	if !req.Full {
		return
	}

	rows := make([][]string, 0, len(rep.Holdings))
	for _, h := range rep.Holdings {
		diff, pct := report.FormatGainLossParts(h.Price.Sub(h.AvgBuy), h.GainPct)
		rows = append(rows, []string{
			strconv.FormatInt(h.Count, 10),
			h.Symbol,
			"bought at average",
			report.FormatDecimal(h.AvgBuy),
			diff,
			pct,
			"now",
			report.FormatDecimal(h.Price),
		})
	}
	justify := []bool{false, true, true, false, false, false, true, false}
	for _, line := range report.Tabulate(rows, justify) {
		e.notify.Notify(req.ReplyTo, req.Requester+": "+line)
	}
}
