// Package words spells rupee amounts in English using the Indian numbering
// system (crore, lakh, thousand, hundred).
package words

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrAmountOverflow is returned for amounts of one hundred crore or more.
var ErrAmountOverflow = errors.New("amount too large to spell")

var limit = decimal.NewFromInt(1_000_000_000)

var ones = [...]string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = [...]string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

var groups = []struct {
	size int64
	name string
}{
	{10_000_000, "Crore"},
	{100_000, "Lakh"},
	{1_000, "Thousand"},
	{100, "Hundred"},
}

// Rupees spells amount as "Rupees <words> [and <paise> Paise] Only". The
// amount is rounded to whole paise first. Negative amounts are spelled with
// a leading "Minus".
func Rupees(amount decimal.Decimal) (string, error) {
	negative := amount.IsNegative()
	amount = amount.Abs().Round(2)

	rupees := amount.Truncate(0)
	if rupees.GreaterThanOrEqual(limit) {
		return "", fmt.Errorf("%w: %s", ErrAmountOverflow, amount.StringFixed(2))
	}
	paise := amount.Sub(rupees).Shift(2).IntPart()

	var b strings.Builder
	b.WriteString("Rupees ")
	if negative && !amount.IsZero() {
		b.WriteString("Minus ")
	}
	b.WriteString(Integer(rupees.IntPart()))
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(belowHundred(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String(), nil
}

// Integer spells a non-negative whole number. Zero is "Zero".
func Integer(n int64) string {
	if n <= 0 {
		return "Zero"
	}
	return spell(n)
}

func spell(n int64) string {
	var parts []string
	for _, g := range groups {
		q := n / g.size
		if q == 0 {
			continue
		}
		if q < 100 {
			parts = append(parts, belowHundred(q), g.name)
		} else {
			// only crore can carry more than two digits
			parts = append(parts, spell(q), g.name)
		}
		n %= g.size
	}
	if n > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and")
		}
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + "-" + ones[n%10]
}
