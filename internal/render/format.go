package render

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pharmabill/m/internal/tax"
)

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// money formats a currency cell at two decimals.
func money(f float64) string {
	if !finite(f) {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return tax.Amount(f).StringFixed(2)
}

// number formats quantities, rates and percentages without padding.
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optionalNumber(f *float64) string {
	if f == nil {
		return ""
	}
	return number(*f)
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(2)
	}
	return "+" + d.StringFixed(2)
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// displayDate prints ISO dates as DD/MM/YYYY and anything else verbatim.
func displayDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}
