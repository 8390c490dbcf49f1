package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotelab/stockplay/internal/engine"
	"github.com/quotelab/stockplay/internal/ledger"
	"github.com/quotelab/stockplay/internal/model"
	"github.com/quotelab/stockplay/internal/report"
)

// recordingTrades captures Execute calls in arrival order.
type recordingTrades struct {
	mu   sync.Mutex
	reqs []model.TradeRequest
	rcpt engine.Receipt
	err  error
}

func (r *recordingTrades) Execute(_ context.Context, req model.TradeRequest) (engine.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	rcpt := r.rcpt
	rcpt.Nick = req.Nick
	rcpt.Side = req.Side
	rcpt.Symbol = req.Symbol
	rcpt.Count = req.Count
	return rcpt, r.err
}

func (r *recordingTrades) seen() []model.TradeRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.TradeRequest(nil), r.reqs...)
}

// stubReports returns canned reports per nick.
type stubReports struct {
	reports map[string]report.Report
	err     error
}

func (s *stubReports) Build(_ context.Context, nick string) (report.Report, error) {
	if s.err != nil {
		return report.Report{}, s.err
	}
	rep, ok := s.reports[nick]
	if !ok {
		rep = report.Report{Nick: nick}
	}
	return rep, nil
}

// captureNotifier records delivered lines.
type captureNotifier struct {
	mu    sync.Mutex
	lines []string
}

func (n *captureNotifier) Notify(replyTo, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lines = append(n.lines, replyTo+"|"+text)
}

func (n *captureNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.lines...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.IdleWait = 10 * time.Millisecond
	cfg.HousekeepingInterval = time.Hour // Not under test unless said so.
	return cfg
}

func TestExecutor_FIFOOrdering(t *testing.T) {
	trades := &recordingTrades{}
	notifier := &captureNotifier{}
	e := New(testConfig(), trades, &stubReports{}, ledger.NewMemoryStore(), notifier, nil)

	symbols := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}
	for _, sym := range symbols {
		req := model.TradeRequest{Nick: "alice", Side: model.Buy, Symbol: sym, Count: 1, ReplyTo: "#chan"}
		if err := e.SubmitTrade(req); err != nil {
			t.Fatalf("SubmitTrade(%s): %v", sym, err)
		}
	}

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, func() bool { return len(trades.seen()) == len(symbols) })

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	for i, req := range trades.seen() {
		if req.Symbol != symbols[i] {
			t.Errorf("processed[%d] = %s, want %s", i, req.Symbol, symbols[i])
		}
	}
}

func TestExecutor_SubmitValidation(t *testing.T) {
	e := New(testConfig(), &recordingTrades{}, &stubReports{}, ledger.NewMemoryStore(), &captureNotifier{}, nil)

	tests := []struct {
		name    string
		req     model.TradeRequest
		wantErr error
	}{
		{"bad symbol", model.TradeRequest{Nick: "a", Side: model.Buy, Symbol: "no$good", Count: 1, ReplyTo: "#c"}, model.ErrBadSymbol},
		{"zero count", model.TradeRequest{Nick: "a", Side: model.Buy, Symbol: "AMD", Count: 0, ReplyTo: "#c"}, ErrInvalidCount},
		{"negative count", model.TradeRequest{Nick: "a", Side: model.Sell, Symbol: "AMD", Count: -3, ReplyTo: "#c"}, ErrInvalidCount},
		{"no destination", model.TradeRequest{Nick: "a", Side: model.Buy, Symbol: "AMD", Count: 1}, ErrNoDestination},
		{"no nick", model.TradeRequest{Side: model.Buy, Symbol: "AMD", Count: 1, ReplyTo: "#c"}, ErrNoNick},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.SubmitTrade(tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("SubmitTrade() err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if got := e.queue.Len(); got != 0 {
		t.Errorf("queue.Len() = %d, want 0 after rejected submissions", got)
	}

	// Lowercase symbols are upcased, not rejected.
	if err := e.SubmitTrade(model.TradeRequest{Nick: "a", Side: model.Buy, Symbol: "amd", Count: 1, ReplyTo: "#c"}); err != nil {
		t.Errorf("SubmitTrade(lowercase) err = %v, want nil", err)
	}
	task, ok := e.queue.TryReceive()
	if !ok || task.Trade.Symbol != "AMD" {
		t.Errorf("queued symbol = %q, want AMD", task.Trade.Symbol)
	}
}

func TestExecutor_TradeReplies(t *testing.T) {
	tests := []struct {
		name string
		rcpt engine.Receipt
		err  error
		want string
	}{
		{
			name: "buy confirmation",
			rcpt: engine.Receipt{PriceCents: 10000, CashCents: 0},
			want: "#chan|alice: bought 10 AMD for $100.00. cash: $0.00",
		},
		{
			name: "insufficient funds",
			rcpt: engine.Receipt{PriceCents: 123456},
			err:  engine.ErrInsufficientFunds,
			want: "#chan|alice: you can't afford $1,234.56.",
		},
		{
			name: "insufficient shares",
			err:  engine.ErrInsufficientShares,
			want: "#chan|alice: you don't have that many.",
		},
		{
			name: "quote failure",
			err:  errors.New("api: status 500"),
			want: "#chan|alice: invalid symbol or api failure, trade aborted!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades := &recordingTrades{rcpt: tt.rcpt, err: tt.err}
			notifier := &captureNotifier{}
			e := New(testConfig(), trades, &stubReports{}, ledger.NewMemoryStore(), notifier, nil)

			req := model.TradeRequest{Nick: "alice", Side: model.Buy, Symbol: "AMD", Count: 10, ReplyTo: "#chan"}
			e.processTrade(context.Background(), req)

			lines := notifier.all()
			if len(lines) != 1 || lines[0] != tt.want {
				t.Errorf("lines = %q, want [%q]", lines, tt.want)
			}
		})
	}
}

func TestExecutor_ReportReplies(t *testing.T) {
	rep := report.Report{
		Nick: "alice",
		Cash: decimal.RequireFromString("491.02"),
		Holdings: []report.HoldingLine{
			{
				Symbol: "AMD",
				Count:  14,
				Price:  decimal.RequireFromString("24.21"),
				AvgBuy: decimal.RequireFromString("23.05"),
				GainPct: decimal.RequireFromString("24.21").
					Sub(decimal.RequireFromString("23.05")).
					Div(decimal.RequireFromString("23.05")),
				Value: decimal.RequireFromString("338.94"),
			},
		},
		HoldingValue: decimal.RequireFromString("338.94"),
	}
	reports := &stubReports{reports: map[string]report.Report{"alice": rep}}
	notifier := &captureNotifier{}
	e := New(testConfig(), &recordingTrades{}, reports, ledger.NewMemoryStore(), notifier, nil)

	e.processReport(context.Background(), model.ReportRequest{
		Nick: "alice", Requester: "alice", ReplyTo: "#chan", Full: true,
	})

	lines := notifier.all()
	if len(lines) != 2 {
		t.Fatalf("lines = %q, want summary plus one holding row", lines)
	}
	wantSummary := "#chan|alice: you have cash: $491.02 stock value: ~$338.94 total: ~$829.96 (24h +0.00 (0.00%)⬆)"
	if lines[0] != wantSummary {
		t.Errorf("summary = %q, want %q", lines[0], wantSummary)
	}
	for _, frag := range []string{"14 AMD", "bought at average", "$23.05", "now", "$24.21", "⬆"} {
		if !strings.Contains(lines[1], frag) {
			t.Errorf("holding row %q missing %q", lines[1], frag)
		}
	}

	// Third-party lookups name the owner instead of "you have".
	notifier.lines = nil
	e.processReport(context.Background(), model.ReportRequest{
		Nick: "alice", Requester: "bob", ReplyTo: "#chan",
	})
	lines = notifier.all()
	if len(lines) != 1 || !strings.Contains(lines[0], "bob: alice has cash:") {
		t.Errorf("lines = %q, want third-party summary only", lines)
	}
}

func TestExecutor_SnapshotIdempotence(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	store.SetBalance(ctx, "alice", 100000)

	reports := &stubReports{reports: map[string]report.Report{
		"alice": {Nick: "alice", Cash: decimal.RequireFromString("1000")},
	}}
	e := New(testConfig(), &recordingTrades{}, reports, store, &captureNotifier{}, nil)

	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return day }

	e.snapshotBalances(ctx)
	e.snapshotBalances(ctx)

	snap, ok, err := store.LatestSnapshot(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("LatestSnapshot = (%v, %v, %v)", snap, ok, err)
	}
	if snap.Day != "2024-03-01" || snap.Cents != 100000 {
		t.Errorf("snapshot = %+v, want day 2024-03-01 cents 100000", snap)
	}

	// Once recorded, the account no longer shows up as a candidate.
	nicks, err := store.AccountsWithoutSnapshot(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("AccountsWithoutSnapshot: %v", err)
	}
	for _, nick := range nicks {
		if nick == "alice" {
			t.Error("alice still listed after snapshot")
		}
	}
}

func TestExecutor_MidnightOffsetShiftsDay(t *testing.T) {
	cfg := testConfig()
	cfg.MidnightOffset = 5 * time.Hour
	e := New(cfg, &recordingTrades{}, &stubReports{}, ledger.NewMemoryStore(), &captureNotifier{}, nil)

	e.now = func() time.Time { return time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC) }
	if got := e.day(); got != "2024-03-02" {
		t.Errorf("day() = %q, want 2024-03-02", got)
	}
}

func TestExecutor_StartStop(t *testing.T) {
	e := New(testConfig(), &recordingTrades{}, &stubReports{}, ledger.NewMemoryStore(), &captureNotifier{}, nil)

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	req := model.TradeRequest{Nick: "alice", Side: model.Buy, Symbol: "AMD", Count: 1, ReplyTo: "#chan"}
	if err := e.SubmitTrade(req); !errors.Is(err, ErrStopped) {
		t.Errorf("SubmitTrade after Stop err = %v, want %v", err, ErrStopped)
	}
}
