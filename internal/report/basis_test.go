package report

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quotelab/stockplay/internal/ledger"
	"github.com/quotelab/stockplay/internal/model"
)

// seedTrades appends records with strictly increasing timestamps and keeps
// the holding row consistent with the log.
func seedTrades(t *testing.T, store *ledger.MemoryStore, nick, symbol string, trades []model.TradeRecord) {
	t.Helper()
	ctx := context.Background()
	var count int64
	for i, rec := range trades {
		rec.Nick = nick
		rec.Symbol = symbol
		rec.Time = int64(1000 + i)
		if err := store.AppendTrade(ctx, rec); err != nil {
			t.Fatalf("AppendTrade: %v", err)
		}
		if rec.Side == model.Buy {
			count += rec.Count
		} else {
			count -= rec.Count
		}
	}
	if err := store.SetHolding(ctx, nick, symbol, count); err != nil {
		t.Fatalf("SetHolding: %v", err)
	}
}

func avg(t *testing.T, store *ledger.MemoryStore, nick, symbol string) decimal.Decimal {
	t.Helper()
	got, err := AverageBuyPrice(context.Background(), store, nick, symbol)
	if err != nil {
		t.Fatalf("AverageBuyPrice: %v", err)
	}
	return got
}

func TestAverageBuyPrice_SingleLot(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedTrades(t, store, "alice", "SYM", []model.TradeRecord{
		{Side: model.Buy, Count: 10, Price: 10000}, // 10 @ $10.00
	})

	if got := avg(t, store, "alice", "SYM"); !got.Equal(decimal.RequireFromString("10")) {
		t.Errorf("avg = %s, want 10", got)
	}
}

func TestAverageBuyPrice_BlendedLots(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedTrades(t, store, "alice", "SYM", []model.TradeRecord{
		{Side: model.Buy, Count: 10, Price: 10000}, // 10 @ $10.00
		{Side: model.Buy, Count: 10, Price: 20000}, // 10 @ $20.00
	})

	// (100 + 200) / 20 = $15.00
	if got := avg(t, store, "alice", "SYM"); !got.Equal(decimal.RequireFromString("15")) {
		t.Errorf("avg = %s, want 15", got)
	}
}

func TestAverageBuyPrice_Idempotent(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedTrades(t, store, "alice", "SYM", []model.TradeRecord{
		{Side: model.Buy, Count: 14, Price: 32270},
		{Side: model.Sell, Count: 4, Price: 9684},
		{Side: model.Buy, Count: 7, Price: 17000},
	})

	first := avg(t, store, "alice", "SYM")
	second := avg(t, store, "alice", "SYM")
	if !first.Equal(second) {
		t.Errorf("basis not idempotent: %s then %s", first, second)
	}
}

func TestAverageBuyPrice_PartialSellKeepsBasis(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedTrades(t, store, "alice", "SYM", []model.TradeRecord{
		{Side: model.Buy, Count: 10, Price: 10000},
	})
	before := avg(t, store, "alice", "SYM")

	// Sell part of the lot. The walk nets sale proceeds against purchase
	// cost, so the basis of the remaining shares is preserved when the
	// sale is priced at basis.
	store.AppendTrade(context.Background(), model.TradeRecord{
		Nick: "alice", Symbol: "SYM", Time: 2000, Side: model.Sell, Count: 4, Price: 4000,
	})
	store.SetHolding(context.Background(), "alice", "SYM", 6)

	after := avg(t, store, "alice", "SYM")
	if !after.Equal(before) {
		t.Errorf("basis changed on partial sell: %s -> %s", before, after)
	}
}

func TestAverageBuyPrice_FullCloseIsZero(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedTrades(t, store, "alice", "SYM", []model.TradeRecord{
		{Side: model.Buy, Count: 10, Price: 10000},
		{Side: model.Sell, Count: 10, Price: 11000},
	})

	if got := avg(t, store, "alice", "SYM"); !got.IsZero() {
		t.Errorf("avg after full close = %s, want 0", got)
	}
}

func TestAverageBuyPrice_RebuyAfterCloseUsesNewLot(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedTrades(t, store, "alice", "SYM", []model.TradeRecord{
		{Side: model.Buy, Count: 10, Price: 10000},  // old lot @ $10
		{Side: model.Sell, Count: 10, Price: 11000}, // closed
		{Side: model.Buy, Count: 5, Price: 10000},   // new lot @ $20
	})

	// The walk stops at the close boundary: only the new lot counts.
	if got := avg(t, store, "alice", "SYM"); !got.Equal(decimal.RequireFromString("20")) {
		t.Errorf("avg = %s, want 20 (old lot excluded)", got)
	}
}

func TestAverageBuyPrice_NoTrades(t *testing.T) {
	store := ledger.NewMemoryStore()
	if got := avg(t, store, "alice", "SYM"); !got.IsZero() {
		t.Errorf("avg with no history = %s, want 0", got)
	}
}
