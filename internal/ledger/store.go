package ledger

import (
	"context"
	"time"

	"github.com/quotelab/stockplay/internal/model"
)

// Store is the full data-access surface over the ledger tables. It carries no
// business rules: validation, rounding and serialization of writers happen in
// the engine and executor layers.
//
// Consumers should depend on the narrow subset they use, not on Store itself.
type Store interface {
	// Balances
	Balance(ctx context.Context, nick string) (cents int64, ok bool, err error)
	SetBalance(ctx context.Context, nick string, cents int64) error

	// Holdings
	Holding(ctx context.Context, nick, symbol string) (int64, error)
	SetHolding(ctx context.Context, nick, symbol string, count int64) error
	HoldingsFor(ctx context.Context, nick string) ([]model.Holding, error)

	// Trade log (append-only)
	AppendTrade(ctx context.Context, rec model.TradeRecord) error
	TradesDesc(ctx context.Context, nick, symbol string) ([]model.TradeRecord, error)

	// Quote cache rows
	QuoteRow(ctx context.Context, symbol string) (data []byte, at time.Time, ok bool, err error)
	PutQuoteRow(ctx context.Context, symbol string, at time.Time, data []byte) error
	StalestHeldSymbol(ctx context.Context) (string, bool, error)

	// Daily snapshots
	LatestSnapshot(ctx context.Context, nick string) (model.DailySnapshot, bool, error)
	InsertSnapshot(ctx context.Context, nick, day string, cents int64) error
	AccountsWithoutSnapshot(ctx context.Context, day string) ([]string, error)
}
