package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotelab/stockplay/internal/model"
)

// Validation failures. These are user-facing outcomes, not internal errors:
// the ledger is untouched and nothing is retried.
var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// Config holds trade engine settings.
type Config struct {
	StartBalanceCents int64         // Granted when an account first trades
	TradeFreshness    time.Duration // Max acceptable quote age for a trade
}

// Store is the ledger slice the engine mutates. The engine must only ever be
// called from the serial task executor; it assumes exclusive access to these
// rows for the duration of Execute.
type Store interface {
	Balance(ctx context.Context, nick string) (int64, bool, error)
	SetBalance(ctx context.Context, nick string, cents int64) error
	Holding(ctx context.Context, nick, symbol string) (int64, error)
	SetHolding(ctx context.Context, nick, symbol string, count int64) error
	AppendTrade(ctx context.Context, rec model.TradeRecord) error
}

// QuoteSource supplies freshness-bounded quotes.
type QuoteSource interface {
	Get(ctx context.Context, symbol string, maxAge time.Duration) (model.Quote, error)
}

// Receipt describes a committed trade. On a validation failure PriceCents is
// still populated so the caller can tell the user what the trade would have
// cost.
type Receipt struct {
	Nick       string
	Side       model.Side
	Symbol     string
	Count      int64
	PriceCents int64 // Total consideration, rounded up to whole cents
	CashCents  int64 // Resulting cash balance
	Dust       int64 // Hundredths of a cent credited to the dust account
}

// Engine validates and commits trades against the ledger.
type Engine struct {
	cfg    Config
	store  Store
	quotes QuoteSource
	logger *slog.Logger

	now func() time.Time // test seam
}

// New creates a trade engine.
func New(cfg Config, store Store, quotes QuoteSource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		store:  store,
		quotes: quotes,
		logger: logger,
		now:    time.Now,
	}
}

// Execute prices, validates and commits one trade. Either every ledger row
// (balance, holding, trade log, dust) is updated, or none is. The
// consideration is rounded up to whole cents in the house's favor on both
// sides; the fraction rounded away is credited to the dust account.
func (e *Engine) Execute(ctx context.Context, req model.TradeRequest) (Receipt, error) {
	rcpt := Receipt{Nick: req.Nick, Side: req.Side, Symbol: req.Symbol, Count: req.Count}

	if req.Count <= 0 {
		return rcpt, ErrInvalidQuantity
	}

	q, err := e.quotes.Get(ctx, req.Symbol, e.cfg.TradeFreshness)
	if err != nil {
		return rcpt, err
	}

	// consideration in cents, exact; ceil to whole cents, in the house's favor
	exact := q.Price.Mul(decimal.NewFromInt(req.Count)).Shift(2)
	priceCents := exact.Ceil().IntPart()
	dust := exact.Ceil().Sub(exact).Shift(2).IntPart() // hundredths of a cent
	rcpt.PriceCents = priceCents
	rcpt.Dust = dust

	cash, ok, err := e.store.Balance(ctx, req.Nick)
	if err != nil {
		return rcpt, err
	}
	if !ok {
		// Account bootstrap: first trade grants the starting balance.
		cash = e.cfg.StartBalanceCents
		if err := e.store.SetBalance(ctx, req.Nick, cash); err != nil {
			return rcpt, err
		}
		e.logger.Info("account created", "nick", req.Nick, "cents", cash)
	}

	count, err := e.store.Holding(ctx, req.Nick, req.Symbol)
	if err != nil {
		return rcpt, err
	}

	switch req.Side {
	case model.Buy:
		if cash < priceCents {
			return rcpt, ErrInsufficientFunds
		}
		cash -= priceCents
		count += req.Count
	case model.Sell:
		if req.Count > count {
			return rcpt, ErrInsufficientShares
		}
		cash += priceCents
		count -= req.Count
	default:
		return rcpt, fmt.Errorf("unknown trade side %q", req.Side)
	}

	if err := e.store.SetBalance(ctx, req.Nick, cash); err != nil {
		return rcpt, err
	}
	if err := e.store.SetHolding(ctx, req.Nick, req.Symbol, count); err != nil {
		return rcpt, err
	}

	dustBal, _, err := e.store.Balance(ctx, model.DustAccount)
	if err != nil {
		return rcpt, err
	}
	if err := e.store.SetBalance(ctx, model.DustAccount, dustBal+dust); err != nil {
		return rcpt, err
	}

	rec := model.TradeRecord{
		Nick:   req.Nick,
		Time:   e.now().UnixMicro(),
		Side:   req.Side,
		Symbol: req.Symbol,
		Count:  req.Count,
		Price:  priceCents,
	}
	if err := e.store.AppendTrade(ctx, rec); err != nil {
		return rcpt, err
	}

	rcpt.CashCents = cash
	e.logger.Info("trade committed",
		"nick", req.Nick,
		"side", req.Side,
		"symbol", req.Symbol,
		"count", req.Count,
		"cents", priceCents,
		"dust", dust,
	)
	return rcpt, nil
}
