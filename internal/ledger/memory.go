package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quotelab/stockplay/internal/model"
)

// MemoryStore is an in-memory Store used by tests and for database-less
// local play. Behavior mirrors PostgresStore row for row.
type MemoryStore struct {
	mu        sync.Mutex
	balances  map[string]int64
	holdings  map[string]map[string]int64 // nick -> symbol -> count
	trades    []model.TradeRecord
	quotes    map[string]quoteRow
	snapshots map[string]map[string]int64 // nick -> day -> cents
}

type quoteRow struct {
	at   time.Time
	data []byte
}

// NewMemoryStore creates an empty store with the dust account seeded,
// matching what EnsureSchema does for the Postgres store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances:  map[string]int64{model.DustAccount: 0},
		holdings:  make(map[string]map[string]int64),
		quotes:    make(map[string]quoteRow),
		snapshots: make(map[string]map[string]int64),
	}
}

func (s *MemoryStore) Balance(_ context.Context, nick string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cents, ok := s.balances[nick]
	return cents, ok, nil
}

func (s *MemoryStore) SetBalance(_ context.Context, nick string, cents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[nick] = cents
	return nil
}

func (s *MemoryStore) Holding(_ context.Context, nick, symbol string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holdings[nick][symbol], nil
}

func (s *MemoryStore) SetHolding(_ context.Context, nick, symbol string, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holdings[nick] == nil {
		s.holdings[nick] = make(map[string]int64)
	}
	s.holdings[nick][symbol] = count
	return nil
}

func (s *MemoryStore) HoldingsFor(_ context.Context, nick string) ([]model.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Holding
	for symbol, count := range s.holdings[nick] {
		if count > 0 {
			out = append(out, model.Holding{Nick: nick, Symbol: symbol, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

func (s *MemoryStore) AppendTrade(_ context.Context, rec model.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, rec)
	return nil
}

func (s *MemoryStore) TradesDesc(_ context.Context, nick, symbol string) ([]model.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TradeRecord
	for _, rec := range s.trades {
		if rec.Nick == nick && rec.Symbol == symbol {
			out = append(out, rec)
		}
	}
	// Append order is chronological; newest first for the basis walk.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time > out[j].Time })
	return out, nil
}

func (s *MemoryStore) QuoteRow(_ context.Context, symbol string) ([]byte, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.quotes[symbol]
	if !ok {
		return nil, time.Time{}, false, nil
	}
	return row.data, row.at, true, nil
}

func (s *MemoryStore) PutQuoteRow(_ context.Context, symbol string, at time.Time, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[symbol] = quoteRow{at: at, data: data}
	return nil
}

func (s *MemoryStore) StalestHeldSymbol(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := make(map[string]bool)
	for _, bySymbol := range s.holdings {
		for symbol, count := range bySymbol {
			if count > 0 {
				held[symbol] = true
			}
		}
	}

	var (
		stalest string
		at      time.Time
		found   bool
	)
	symbols := make([]string, 0, len(held))
	for symbol := range held {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols) // deterministic tie-break
	for _, symbol := range symbols {
		row, cached := s.quotes[symbol]
		if !cached {
			return symbol, true, nil // never cached sorts first
		}
		if !found || row.at.Before(at) {
			stalest, at, found = symbol, row.at, true
		}
	}
	return stalest, found, nil
}

func (s *MemoryStore) LatestSnapshot(_ context.Context, nick string) (model.DailySnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := s.snapshots[nick]
	if len(byDay) == 0 {
		return model.DailySnapshot{}, false, nil
	}
	var latest string
	for day := range byDay {
		if day > latest {
			latest = day
		}
	}
	return model.DailySnapshot{Nick: nick, Day: latest, Cents: byDay[latest]}, true, nil
}

func (s *MemoryStore) InsertSnapshot(_ context.Context, nick, day string, cents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshots[nick] == nil {
		s.snapshots[nick] = make(map[string]int64)
	}
	if _, exists := s.snapshots[nick][day]; exists {
		return nil // same day re-run is a no-op
	}
	s.snapshots[nick][day] = cents
	return nil
}

func (s *MemoryStore) AccountsWithoutSnapshot(_ context.Context, day string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for nick := range s.balances {
		if _, have := s.snapshots[nick][day]; !have {
			out = append(out, nick)
		}
	}
	sort.Strings(out)
	return out, nil
}
