// Package tax aggregates GST amounts of invoice line items.
package tax

import (
	"math"

	"github.com/shopspring/decimal"

	"pharmabill/m/domain"
)

var hundred = decimal.NewFromInt(100)

// Row is the HSN summary line for one HSN/SAC code.
type Row struct {
	HSN     string
	Taxable decimal.Decimal
	SGST    decimal.Decimal
	CGST    decimal.Decimal
	IGST    decimal.Decimal
}

// Tax is the combined GST of the row.
func (r Row) Tax() decimal.Decimal {
	return r.SGST.Add(r.CGST).Add(r.IGST)
}

// Totals are invoice-level sums over all line items.
type Totals struct {
	Taxable decimal.Decimal
	SGST    decimal.Decimal
	CGST    decimal.Decimal
	IGST    decimal.Decimal
	Grand   decimal.Decimal
}

// Tax is the combined GST of the invoice.
func (t Totals) Tax() decimal.Decimal {
	return t.SGST.Add(t.CGST).Add(t.IGST)
}

// Interstate reports whether the invoice carries IGST instead of SGST/CGST.
func (t Totals) Interstate() bool {
	return t.IGST.IsPositive()
}

// Summary bundles the HSN rows with the invoice totals.
type Summary struct {
	Rows   []Row
	Totals Totals
}

// Summarize computes both the HSN rows and the invoice totals.
func Summarize(items []domain.LineItem) Summary {
	return Summary{Rows: SummarizeByHSN(items), Totals: Sum(items)}
}

// SummarizeByHSN groups items by exact HSN string in first-seen order.
func SummarizeByHSN(items []domain.LineItem) []Row {
	index := make(map[string]int)
	var rows []Row
	for _, it := range items {
		i, ok := index[it.HSN]
		if !ok {
			i = len(rows)
			index[it.HSN] = i
			rows = append(rows, Row{HSN: it.HSN})
		}
		r := &rows[i]
		r.Taxable = r.Taxable.Add(Amount(it.TaxableValue))
		r.SGST = r.SGST.Add(Amount(it.SGSTAmount))
		r.CGST = r.CGST.Add(Amount(it.CGSTAmount))
		r.IGST = r.IGST.Add(Amount(it.IGSTAmount))
	}
	return rows
}

// Sum adds up taxable value, each tax head and the line totals. Stored
// invoice aggregates are never consulted.
func Sum(items []domain.LineItem) Totals {
	var t Totals
	for _, it := range items {
		t.Taxable = t.Taxable.Add(Amount(it.TaxableValue))
		t.SGST = t.SGST.Add(Amount(it.SGSTAmount))
		t.CGST = t.CGST.Add(Amount(it.CGSTAmount))
		t.IGST = t.IGST.Add(Amount(it.IGSTAmount))
		t.Grand = t.Grand.Add(Amount(it.TotalAmount))
	}
	return t
}

// Amount converts a stored float to a decimal. NaN and infinities count as
// zero so that malformed rows cannot poison the sums.
func Amount(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// Price fills the derived amounts of a line item from its rate, quantity,
// discount and GST rate:
//
//	taxable = rate * quantity * (1 - discount/100)
//
// Free units are never charged. Intrastate GST is split evenly into SGST and
// CGST with any odd paisa going to CGST; interstate GST is booked as IGST.
func Price(it *domain.LineItem, interstate bool) {
	gross := Amount(it.SaleRate).Mul(Amount(it.Quantity))
	keep := hundred.Sub(Amount(it.DiscountPercent)).Div(hundred)
	taxable := gross.Mul(keep).Round(2)
	gst := taxable.Mul(Amount(it.GSTRate)).Div(hundred).Round(2)

	it.TaxableValue = taxable.InexactFloat64()
	it.SGSTAmount, it.CGSTAmount, it.IGSTAmount = 0, 0, 0
	if interstate {
		it.IGSTAmount = gst.InexactFloat64()
	} else {
		half := gst.Div(decimal.NewFromInt(2)).RoundDown(2)
		it.SGSTAmount = half.InexactFloat64()
		it.CGSTAmount = gst.Sub(half).InexactFloat64()
	}
	it.TotalAmount = taxable.Add(gst).InexactFloat64()
}

// Apply writes the computed totals onto the invoice aggregate fields.
func Apply(inv *domain.Invoice) {
	t := Sum(inv.Items)
	inv.TotalTaxable = t.Taxable.Round(2).InexactFloat64()
	inv.TotalSGST = t.SGST.Round(2).InexactFloat64()
	inv.TotalCGST = t.CGST.Round(2).InexactFloat64()
	inv.TotalIGST = t.IGST.Round(2).InexactFloat64()
	inv.GrandTotal = t.Grand.Round(2).InexactFloat64()
}
