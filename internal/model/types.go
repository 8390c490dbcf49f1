package model

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DustAccount is the pseudo-account that collects fractional cents rounded
// out of trades. It has a balance row like any account but never trades.
const DustAccount = "#dust"

// symbolRe matches an upcased stock symbol.
var symbolRe = regexp.MustCompile(`^[A-Z\-]{1,12}$`)

// ErrBadSymbol indicates a string that does not look like a stock symbol.
var ErrBadSymbol = errors.New("malformed stock symbol")

// CleanSymbol upcases and validates a stock symbol.
func CleanSymbol(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !symbolRe.MatchString(s) {
		return "", ErrBadSymbol
	}
	return s, nil
}

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Account holds a player's cash balance.
type Account struct {
	Nick  string // Primary key, case-sensitive
	Cents int64  // Cash balance in cents, never persisted negative
}

// Holding is the number of shares of one symbol held by one account.
// The row persists once created, even when the count returns to zero.
type Holding struct {
	Nick   string
	Symbol string
	Count  int64 // Always >= 0
}

// TradeRecord is an immutable append-only entry in the trade log. It is the
// sole source of truth for cost-basis reconstruction.
type TradeRecord struct {
	Nick   string
	Time   int64 // Execution time (µs since epoch)
	Side   Side
	Symbol string
	Count  int64 // Shares traded, > 0
	Price  int64 // Total consideration in cents (not unit price)
}

// DailySnapshot records an account's total value (cash + holdings) at a
// daily boundary. One row per (nick, day).
type DailySnapshot struct {
	Nick  string
	Day   string // "2006-01-02"
	Cents int64
}

// Quote is the normalized form of an upstream quote payload.
type Quote struct {
	Symbol           string          `json:"symbol"`
	Open             decimal.Decimal `json:"open"`
	High             decimal.Decimal `json:"high"`
	Low              decimal.Decimal `json:"low"`
	Price            decimal.Decimal `json:"price"`
	Volume           int64           `json:"volume,string"`
	LatestTradingDay string          `json:"latest trading day"`
	PreviousClose    decimal.Decimal `json:"previous close"`
	Change           decimal.Decimal `json:"change"`
	ChangePercent    string          `json:"change percent"`
}

// TradeRequest is a submitted trade intent from the command layer.
type TradeRequest struct {
	Nick    string // Actor
	Side    Side
	Symbol  string // Upcased, validated
	Count   int64  // Shares, > 0
	ReplyTo string // Destination for confirmation/error text
}

// ReportRequest is a submitted portfolio-report intent.
type ReportRequest struct {
	Nick      string // Account being reported on
	Requester string // Who asked
	ReplyTo   string // Destination for the summary line
	Full      bool   // Include the per-holding table
}
