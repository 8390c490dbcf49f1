package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quotelab/stockplay/internal/model"
)

// BasisStore is the ledger slice needed to reconstruct cost basis.
type BasisStore interface {
	Holding(ctx context.Context, nick, symbol string) (int64, error)
	TradesDesc(ctx context.Context, nick, symbol string) ([]model.TradeRecord, error)
}

// AverageBuyPrice derives the average dollar price paid for the shares of
// symbol the account currently holds, by walking the trade log newest to
// oldest. Buys add to the running count and spend, sells subtract; the walk
// stops at the first point where the running count equals the present
// position, which is the boundary of the currently-held lot. A closed
// position (zero at termination) has no meaningful basis and yields zero.
//
// Recomputing on every report instead of maintaining a running average keeps
// the trade log the single source of truth and sidesteps the question of how
// a partial sell should adjust recorded cost.
func AverageBuyPrice(ctx context.Context, store BasisStore, nick, symbol string) (decimal.Decimal, error) {
	target, err := store.Holding(ctx, nick, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("current holding: %w", err)
	}

	trades, err := store.TradesDesc(ctx, nick, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("trade history: %w", err)
	}

	var count, spent int64
	for _, rec := range trades {
		sign := int64(1)
		if rec.Side == model.Sell {
			sign = -1
		}
		count += sign * rec.Count
		spent += sign * rec.Price
		if count == target {
			// At this point in history the position was empty.
			break
		}
	}

	if count == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(spent).Shift(-2).Div(decimal.NewFromInt(count)), nil
}
