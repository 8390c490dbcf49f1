package report

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{-500, "$0.00"},
		{1, "$0.01"},
		{12345, "$123.45"},
		{100000000, "$1,000,000.00"},
		{123456789, "$1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1234.5", "$1,234.50"},
		{"999", "$999.00"},
		{"1000", "$1,000.00"},
		{"-1234.56", "$-1,234.56"},
		{"23.049", "$23.05"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := FormatDecimal(d); got != tt.want {
			t.Errorf("FormatDecimal(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatGainLoss(t *testing.T) {
	tests := []struct {
		diff string
		pct  string
		want string
	}{
		{"1.16", "0.0503", "+1.16 (5.03%)⬆"},
		{"-20.01", "-0.0107", "-20.01 (-1.07%)⬇"},
		{"0", "0", "+0.00 (0.00%)⬆"},
		{"1250", "0.125", "+1,250.00 (12.50%)⬆"},
	}
	for _, tt := range tests {
		got := FormatGainLoss(decimal.RequireFromString(tt.diff), decimal.RequireFromString(tt.pct))
		if got != tt.want {
			t.Errorf("FormatGainLoss(%s, %s) = %q, want %q", tt.diff, tt.pct, got, tt.want)
		}
	}
}

func TestTabulate(t *testing.T) {
	rows := [][]string{
		{"AAPL", "1", "$174.33"},
		{"AMD", "14", "$338.94"},
	}
	got := Tabulate(rows, []bool{true})
	want := []string{
		"AAPL  1 $174.33",
		"AMD  14 $338.94",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tabulate = %q, want %q", got, want)
	}
}

func TestTabulate_RuneWidths(t *testing.T) {
	// Arrows are multi-byte single runes; widths must count runes.
	rows := [][]string{
		{"(5.03%)⬆", "x"},
		{"(12.50%)⬆", "y"},
	}
	got := Tabulate(rows, nil)
	want := []string{
		" (5.03%)⬆ x",
		"(12.50%)⬆ y",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tabulate = %q, want %q", got, want)
	}
}

func TestTabulate_Empty(t *testing.T) {
	if got := Tabulate(nil, nil); got != nil {
		t.Errorf("Tabulate(nil) = %v, want nil", got)
	}
}
