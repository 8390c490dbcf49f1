package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotelab/stockplay/internal/model"
)

// Store is the ledger slice the report builder reads.
type Store interface {
	BasisStore
	Balance(ctx context.Context, nick string) (int64, bool, error)
	HoldingsFor(ctx context.Context, nick string) ([]model.Holding, error)
	LatestSnapshot(ctx context.Context, nick string) (model.DailySnapshot, bool, error)
}

// QuoteSource supplies freshness-bounded quotes.
type QuoteSource interface {
	Get(ctx context.Context, symbol string, maxAge time.Duration) (model.Quote, error)
}

// Config holds report builder settings.
type Config struct {
	// ReportFreshness is the max quote age tolerated by reports. It is far
	// looser than the trade threshold: refreshing every held symbol on
	// demand would exceed the provider's rate limit, so reports live off
	// whatever the background sweep has collected.
	ReportFreshness time.Duration
}

// HoldingLine is one row of a portfolio report.
type HoldingLine struct {
	Symbol  string
	Count   int64
	Price   decimal.Decimal // Current unit price
	AvgBuy  decimal.Decimal // Average dollar price paid for the held lot
	GainPct decimal.Decimal // (Price - AvgBuy) / AvgBuy, 0 when AvgBuy is 0
	Value   decimal.Decimal // Price * Count
}

// Report is a portfolio snapshot for one account.
type Report struct {
	Nick         string
	Cash         decimal.Decimal
	Holdings     []HoldingLine // Sorted by symbol, ascending
	HoldingValue decimal.Decimal
	DayGain      decimal.Decimal // Total value change vs the latest snapshot
	DayGainPct   decimal.Decimal // Zero when no snapshot exists yet
}

// Total returns cash plus holding value.
func (r Report) Total() decimal.Decimal {
	return r.Cash.Add(r.HoldingValue)
}

// Builder assembles portfolio reports from the ledger and the quote cache.
type Builder struct {
	cfg    Config
	store  Store
	quotes QuoteSource
	logger *slog.Logger
}

// NewBuilder creates a report builder.
func NewBuilder(cfg Config, store Store, quotes QuoteSource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		cfg:    cfg,
		store:  store,
		quotes: quotes,
		logger: logger,
	}
}

// Build assembles nick's portfolio snapshot. An account that has never
// traded reports zero cash and no holdings.
func (b *Builder) Build(ctx context.Context, nick string) (Report, error) {
	rep := Report{Nick: nick}

	cents, _, err := b.store.Balance(ctx, nick)
	if err != nil {
		return Report{}, fmt.Errorf("balance: %w", err)
	}
	rep.Cash = decimal.NewFromInt(cents).Shift(-2)

	holdings, err := b.store.HoldingsFor(ctx, nick)
	if err != nil {
		return Report{}, fmt.Errorf("holdings: %w", err)
	}

	for _, h := range holdings {
		q, err := b.quotes.Get(ctx, h.Symbol, b.cfg.ReportFreshness)
		if err != nil {
			return Report{}, fmt.Errorf("quote %s: %w", h.Symbol, err)
		}

		avgBuy, err := AverageBuyPrice(ctx, b.store, nick, h.Symbol)
		if err != nil {
			return Report{}, fmt.Errorf("cost basis %s: %w", h.Symbol, err)
		}

		line := HoldingLine{
			Symbol: h.Symbol,
			Count:  h.Count,
			Price:  q.Price,
			AvgBuy: avgBuy,
			Value:  q.Price.Mul(decimal.NewFromInt(h.Count)),
		}
		line.GainPct = calcGain(avgBuy, q.Price)
		rep.Holdings = append(rep.Holdings, line)
		rep.HoldingValue = rep.HoldingValue.Add(line.Value)
	}

	sort.Slice(rep.Holdings, func(i, j int) bool {
		return rep.Holdings[i].Symbol < rep.Holdings[j].Symbol
	})

	snap, ok, err := b.store.LatestSnapshot(ctx, nick)
	if err != nil {
		return Report{}, fmt.Errorf("latest snapshot: %w", err)
	}
	if ok {
		start := decimal.NewFromInt(snap.Cents).Shift(-2)
		rep.DayGain = rep.Total().Sub(start)
		rep.DayGainPct = calcGain(start, rep.Total())
	}

	return rep, nil
}

// calcGain returns (end - start) / start, or zero for a zero start.
func calcGain(start, end decimal.Decimal) decimal.Decimal {
	if start.IsZero() {
		return decimal.Zero
	}
	return end.Sub(start).Div(start)
}
