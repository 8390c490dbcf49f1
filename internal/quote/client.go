package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/quotelab/stockplay/internal/model"
)

// ErrUnknownSymbol is returned when the provider has no data for a symbol.
// It is a quote outcome, not a transport failure: callers must treat the two
// differently (an unknown symbol aborts a trade with a user-visible message,
// a transport failure may succeed later).
var ErrUnknownSymbol = errors.New("unknown symbol")

// APIError represents an error response from the quote provider.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quote api error %d: %s", e.StatusCode, e.Message)
}

// Client fetches quotes from an Alpha Vantage style GLOBAL_QUOTE endpoint.
//
// The provider enforces a hard rate limit (free tier: about 5 requests per
// minute), so every call waits on a shared limiter before going out. There is
// no retry: a failed fetch is reported and the caller (or the background
// refresher on its next sweep) decides what to do.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new quote client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/5), 1),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit sets the request rate limit in requests per minute.
func WithRateLimit(perMinute int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// globalQuoteResponse is the raw provider payload:
//
//	{"Global Quote": {
//	  "01. symbol": "MSFT",
//	  "02. open": "104.3900",
//	  ...
//	  "10. change percent": "0.3800%"}}
//
// An unknown symbol comes back as an empty "Global Quote" object, not an
// error status.
type globalQuoteResponse struct {
	GlobalQuote globalQuote `json:"Global Quote"`
}

type globalQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

// FetchQuote requests a quote for symbol and normalizes the verbose payload
// into a model.Quote with parsed decimal fields. Returns ErrUnknownSymbol if
// the provider has no data for the symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.Quote{}, fmt.Errorf("rate limit wait: %w", err)
	}

	c.logger.Info("fetching quote", "symbol", symbol)

	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", symbol)
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return model.Quote{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Quote{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return model.Quote{}, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	var raw globalQuoteResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Quote{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if raw.GlobalQuote.Symbol == "" {
		return model.Quote{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	return normalize(raw.GlobalQuote)
}

// normalize parses the provider's string fields into typed values.
func normalize(gq globalQuote) (model.Quote, error) {
	q := model.Quote{
		Symbol:           gq.Symbol,
		LatestTradingDay: gq.LatestTradingDay,
		ChangePercent:    gq.ChangePercent,
	}

	fields := []struct {
		name string
		src  string
		dst  *decimal.Decimal
	}{
		{"open", gq.Open, &q.Open},
		{"high", gq.High, &q.High},
		{"low", gq.Low, &q.Low},
		{"price", gq.Price, &q.Price},
		{"previous close", gq.PreviousClose, &q.PreviousClose},
		{"change", gq.Change, &q.Change},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return model.Quote{}, fmt.Errorf("parse %s %q: %w", f.name, f.src, err)
		}
		*f.dst = d
	}

	volume, err := strconv.ParseInt(gq.Volume, 10, 64)
	if err != nil {
		return model.Quote{}, fmt.Errorf("parse volume %q: %w", gq.Volume, err)
	}
	q.Volume = volume

	return q, nil
}
