package tax

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"pharmabill/m/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarizeByHSN(t *testing.T) {
	items := []domain.LineItem{
		{HSN: "3004", TaxableValue: 100, SGSTAmount: 9, CGSTAmount: 9},
		{HSN: "3004", TaxableValue: 50, SGSTAmount: 4.5, CGSTAmount: 4.5},
		{HSN: "3005", TaxableValue: 20, SGSTAmount: 1.8, CGSTAmount: 1.8},
	}
	rows := SummarizeByHSN(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := []struct {
		hsn                 string
		taxable, sgst, cgst string
	}{
		{"3004", "150", "13.5", "13.5"},
		{"3005", "20", "1.8", "1.8"},
	}
	for i, w := range want {
		r := rows[i]
		if r.HSN != w.hsn {
			t.Fatalf("row %d: hsn %q, want %q", i, r.HSN, w.hsn)
		}
		if !r.Taxable.Equal(dec(w.taxable)) || !r.SGST.Equal(dec(w.sgst)) || !r.CGST.Equal(dec(w.cgst)) {
			t.Fatalf("row %d: got taxable=%s sgst=%s cgst=%s", i, r.Taxable, r.SGST, r.CGST)
		}
	}
}

func TestSummarizeByHSNKeepsFirstSeenOrder(t *testing.T) {
	items := []domain.LineItem{
		{HSN: "3006"}, {HSN: "3004"}, {HSN: "3006"}, {HSN: "30049099"}, {HSN: "3004"},
	}
	rows := SummarizeByHSN(items)
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.HSN
	}
	want := []string{"3006", "3004", "30049099"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSummarizeByHSNIsCaseSensitive(t *testing.T) {
	rows := SummarizeByHSN([]domain.LineItem{{HSN: "ab12"}, {HSN: "AB12"}})
	if len(rows) != 2 {
		t.Fatalf("expected distinct rows for differently cased codes, got %d", len(rows))
	}
}

func TestSumIgnoresStoredAggregates(t *testing.T) {
	inv := domain.Invoice{
		TotalTaxable: 999, GrandTotal: 999,
		Items: []domain.LineItem{
			{TaxableValue: 100, SGSTAmount: 6, CGSTAmount: 6, TotalAmount: 112},
			{TaxableValue: 10.10, SGSTAmount: 0.61, CGSTAmount: 0.61, TotalAmount: 11.32},
		},
	}
	got := Sum(inv.Items)
	if !got.Taxable.Equal(dec("110.1")) || !got.Grand.Equal(dec("123.32")) {
		t.Fatalf("got taxable=%s grand=%s", got.Taxable, got.Grand)
	}
	if !got.Tax().Equal(dec("13.22")) {
		t.Fatalf("tax = %s", got.Tax())
	}
	if got.Interstate() {
		t.Fatalf("intrastate invoice reported as interstate")
	}
}

func TestSumInterstate(t *testing.T) {
	got := Sum([]domain.LineItem{{TaxableValue: 100, IGSTAmount: 12, TotalAmount: 112}})
	if !got.Interstate() {
		t.Fatalf("expected interstate")
	}
}

func TestSumEmpty(t *testing.T) {
	got := Summarize(nil)
	if len(got.Rows) != 0 || !got.Totals.Grand.IsZero() {
		t.Fatalf("unexpected summary for no items: %+v", got)
	}
}

func TestAmountNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if !Amount(f).IsZero() {
			t.Fatalf("Amount(%v) should be zero", f)
		}
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name       string
		item       domain.LineItem
		interstate bool
		taxable    float64
		sgst, cgst float64
		igst       float64
		total      float64
	}{
		{
			name:    "plain intrastate",
			item:    domain.LineItem{SaleRate: 50, Quantity: 2, GSTRate: 12},
			taxable: 100, sgst: 6, cgst: 6, total: 112,
		},
		{
			name:    "discount before tax",
			item:    domain.LineItem{SaleRate: 80, Quantity: 10, DiscountPercent: 10, GSTRate: 5},
			taxable: 720, sgst: 18, cgst: 18, total: 756,
		},
		{
			name:    "free units not charged",
			item:    domain.LineItem{SaleRate: 10, Quantity: 10, FreeQuantity: 2, GSTRate: 12},
			taxable: 100, sgst: 6, cgst: 6, total: 112,
		},
		{
			name:    "odd paisa goes to cgst",
			item:    domain.LineItem{SaleRate: 0.25, Quantity: 1, GSTRate: 12},
			taxable: 0.25, sgst: 0.01, cgst: 0.02, total: 0.28,
		},
		{
			name:       "interstate",
			item:       domain.LineItem{SaleRate: 100, Quantity: 3, GSTRate: 18},
			interstate: true,
			taxable:    300, igst: 54, total: 354,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := tt.item
			Price(&it, tt.interstate)
			if it.TaxableValue != tt.taxable || it.SGSTAmount != tt.sgst || it.CGSTAmount != tt.cgst ||
				it.IGSTAmount != tt.igst || it.TotalAmount != tt.total {
				t.Fatalf("got taxable=%v sgst=%v cgst=%v igst=%v total=%v", it.TaxableValue, it.SGSTAmount, it.CGSTAmount, it.IGSTAmount, it.TotalAmount)
			}
		})
	}
}

func TestApply(t *testing.T) {
	inv := domain.Invoice{Items: []domain.LineItem{
		{SaleRate: 50, Quantity: 2, GSTRate: 12},
		{SaleRate: 10, Quantity: 1, GSTRate: 5},
	}}
	for i := range inv.Items {
		Price(&inv.Items[i], false)
	}
	Apply(&inv)
	if inv.TotalTaxable != 110 || inv.TotalSGST != 6.25 || inv.TotalCGST != 6.25 || inv.GrandTotal != 122.5 {
		t.Fatalf("unexpected aggregates: %+v", inv)
	}
}
