package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCents renders a cent amount as a dollar string ("$1,234.56").
// Negative amounts clamp to $0.00 so transient numbers never render "-0.00".
func FormatCents(cents int64) string {
	if cents <= 0 {
		return FormatDecimal(decimal.Zero)
	}
	return FormatDecimal(decimal.NewFromInt(cents).Shift(-2))
}

// FormatDecimal renders a decimal as a dollar value with thousands
// separators.
func FormatDecimal(d decimal.Decimal) string {
	return formatDecimal(d, "$", false)
}

func formatDecimal(d decimal.Decimal, prefix string, plus bool) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	} else if plus {
		sign = "+"
	}

	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var groups []string
	for len(whole) > 3 {
		groups = append([]string{whole[len(whole)-3:]}, groups...)
		whole = whole[:len(whole)-3]
	}
	groups = append([]string{whole}, groups...)

	return prefix + sign + strings.Join(groups, ",") + "." + frac
}

// FormatGainLoss renders a value change and percent change as
// "+1.16 (5.03%)⬆".
func FormatGainLoss(diff, pct decimal.Decimal) string {
	d, p := FormatGainLossParts(diff, pct)
	return d + " " + p
}

// FormatGainLossParts returns the diff and percent pieces separately so the
// tabulator can align them as two columns.
func FormatGainLossParts(diff, pct decimal.Decimal) (string, string) {
	arrow := "⬆"
	if diff.IsNegative() {
		arrow = "⬇"
	}
	return formatDecimal(diff, "", true),
		fmt.Sprintf("(%s%%)%s", pct.Shift(2).StringFixed(2), arrow)
}

// Tabulate renders rows as space-aligned columns. Columns listed in justify
// are left-justified; all others are right-justified, which lines up the
// numeric columns. All rows must have the same number of columns.
func Tabulate(rows [][]string, justify []bool) []string {
	if len(rows) == 0 {
		return nil
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for col, value := range row {
			if len([]rune(value)) > widths[col] {
				widths[col] = len([]rune(value))
			}
		}
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for col, value := range row {
			pad := strings.Repeat(" ", widths[col]-len([]rune(value)))
			if col < len(justify) && justify[col] {
				cells[col] = value + pad
			} else {
				cells[col] = pad + value
			}
		}
		out = append(out, strings.TrimRight(strings.Join(cells, " "), " "))
	}
	return out
}
