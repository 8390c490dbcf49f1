package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCleanSymbol(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"simple", "AMD", "AMD", false},
		{"lowercase upcased", "aapl", "AAPL", false},
		{"surrounding space", " msft ", "MSFT", false},
		{"hyphenated", "BRK-B", "BRK-B", false},
		{"empty", "", "", true},
		{"too long", "ABCDEFGHIJKLM", "", true},
		{"digits rejected", "C3PO", "", true},
		{"punctuation rejected", "A.B", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanSymbol(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CleanSymbol(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CleanSymbol(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuoteJSONRoundTrip(t *testing.T) {
	q := Quote{
		Symbol:           "AMD",
		Open:             decimal.RequireFromString("22.3300"),
		High:             decimal.RequireFromString("23.2750"),
		Low:              decimal.RequireFromString("22.2700"),
		Price:            decimal.RequireFromString("23.0500"),
		Volume:           78129280,
		LatestTradingDay: "2019-02-08",
		PreviousClose:    decimal.RequireFromString("22.6700"),
		Change:           decimal.RequireFromString("0.3800"),
		ChangePercent:    "1.6762%",
	}

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Quote
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Symbol != q.Symbol {
		t.Errorf("Symbol = %q, want %q", got.Symbol, q.Symbol)
	}
	if !got.Price.Equal(q.Price) {
		t.Errorf("Price = %s, want %s", got.Price, q.Price)
	}
	if got.Volume != q.Volume {
		t.Errorf("Volume = %d, want %d", got.Volume, q.Volume)
	}
	if got.ChangePercent != q.ChangePercent {
		t.Errorf("ChangePercent = %q, want %q", got.ChangePercent, q.ChangePercent)
	}
}
