package refresher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quotelab/stockplay/internal/model"
)

// SymbolSource reports which held symbol most needs a fresh quote.
type SymbolSource interface {
	StalestHeldSymbol(ctx context.Context) (string, bool, error)
}

// SymbolSourceFunc is a function adapter for SymbolSource.
type SymbolSourceFunc func(ctx context.Context) (string, bool, error)

func (f SymbolSourceFunc) StalestHeldSymbol(ctx context.Context) (string, bool, error) {
	return f(ctx)
}

// QuoteSource supplies freshness-bounded quotes. A zero maxAge forces an
// upstream fetch.
type QuoteSource interface {
	Get(ctx context.Context, symbol string, maxAge time.Duration) (model.Quote, error)
}

// Config holds refresher configuration.
type Config struct {
	Interval time.Duration // Sweep interval (default: 5m)
	Timeout  time.Duration // Per-sweep timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

// Refresher periodically re-fetches the stalest held symbol's quote.
type Refresher struct {
	cfg     Config
	symbols SymbolSource
	quotes  QuoteSource
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Refresher.
func New(cfg Config, symbols SymbolSource, quotes QuoteSource, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		cfg:     cfg,
		symbols: symbols,
		quotes:  quotes,
		logger:  logger,
	}
}

// Start begins the sweep loop.
func (r *Refresher) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run()

	r.logger.Info("quote refresher started", "interval", r.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the refresher.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("quote refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main sweep loop.
func (r *Refresher) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep refreshes the single stalest held symbol, if any.
func (r *Refresher) sweep() {
	ctx, cancel := context.WithTimeout(r.ctx, r.cfg.Timeout)
	defer cancel()

	symbol, ok, err := r.symbols.StalestHeldSymbol(ctx)
	if err != nil {
		r.logger.Error("stalest symbol lookup failed", "error", err)
		return
	}
	if !ok {
		r.logger.Debug("no held symbols to refresh")
		return
	}

	start := time.Now()
	if _, err := r.quotes.Get(ctx, symbol, 0); err != nil {
		r.logger.Warn("quote refresh failed",
			"symbol", symbol,
			"error", err,
		)
		return
	}

	r.logger.Debug("quote refreshed",
		"symbol", symbol,
		"duration", time.Since(start),
	)
}
