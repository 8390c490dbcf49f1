package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quotelab/stockplay/internal/model"
)

// RowStore is the quote-cache slice of the ledger store.
type RowStore interface {
	QuoteRow(ctx context.Context, symbol string) (data []byte, at time.Time, ok bool, err error)
	PutQuoteRow(ctx context.Context, symbol string, at time.Time, data []byte) error
}

// Fetcher fetches a quote from the upstream provider.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// FetcherFunc is a function adapter for Fetcher.
type FetcherFunc func(ctx context.Context, symbol string) (model.Quote, error)

func (f FetcherFunc) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	return f(ctx, symbol)
}

// Cache is a freshness-bounded cache of quotes keyed by symbol, persisted in
// the ledger store's quote table. The acceptable age is supplied per read:
// trades demand a near-real-time quote while portfolio reports accept
// day-old data, which keeps total upstream volume inside the provider's
// rate limit.
type Cache struct {
	store   RowStore
	fetcher Fetcher
	logger  *slog.Logger

	now func() time.Time // test seam
}

// NewCache creates a cache over the given store and upstream fetcher.
func NewCache(store RowStore, fetcher Fetcher, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the quote for symbol, no older than maxAge. A cached entry
// within maxAge is returned without touching the upstream. Otherwise the
// upstream is fetched and the cache row replaced (last-write-wins). A fetch
// failure propagates; there is no stale fallback. maxAge <= 0 always forces
// a fetch.
func (c *Cache) Get(ctx context.Context, symbol string, maxAge time.Duration) (model.Quote, error) {
	if maxAge > 0 {
		data, at, ok, err := c.store.QuoteRow(ctx, symbol)
		if err != nil {
			return model.Quote{}, fmt.Errorf("load cached quote: %w", err)
		}
		if ok && c.now().Sub(at) <= maxAge {
			var q model.Quote
			if err := json.Unmarshal(data, &q); err != nil {
				return model.Quote{}, fmt.Errorf("decode cached quote: %w", err)
			}
			return q, nil
		}
	}

	q, err := c.fetcher.FetchQuote(ctx, symbol)
	if err != nil {
		return model.Quote{}, err
	}

	data, err := json.Marshal(q)
	if err != nil {
		return model.Quote{}, fmt.Errorf("encode quote: %w", err)
	}
	if err := c.store.PutQuoteRow(ctx, symbol, c.now(), data); err != nil {
		// The quote itself is good; a failed cache write costs a future
		// upstream call, nothing more.
		c.logger.Warn("failed to cache quote", "symbol", symbol, "err", err)
	}

	return q, nil
}
