package render

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pharmabill/m/domain"
)

// ErrUnknownTemplate is returned for template ids without a layout.
var ErrUnknownTemplate = errors.New("unknown invoice template")

// DefaultTemplate is the layout callers fall back to.
const DefaultTemplate = domain.TemplateAuthentic

type cellFunc func(n int, it domain.LineItem) string

type column struct {
	Column
	cell cellFunc
}

// Layout is the descriptor of one template variant. The engine is the same
// for every variant; only the descriptor differs.
type Layout struct {
	ID     domain.TemplateID
	Width  float64
	Height float64
	Margin float64
	Title  string
	Font   Font

	// Receipt switches header, meta and footer to the narrow stacked form.
	Receipt bool

	TableFont         Font
	Grid              bool
	Columns           []column
	InterstateColumns []column

	// Accent paints the header band and table heading in the theme colour.
	Accent          bool
	RoundGrandTotal bool
	TaxInWords      bool
	TotalsX         float64
}

func (l Layout) columns(interstate bool) []column {
	if interstate && l.InterstateColumns != nil {
		return l.InterstateColumns
	}
	return l.Columns
}

// SelectLayout returns the descriptor for id.
func SelectLayout(id domain.TemplateID) (Layout, error) {
	switch id {
	case domain.TemplateAuthentic:
		return authentic(), nil
	case domain.TemplateStandard:
		return standard(), nil
	case domain.TemplateModern:
		return modern(), nil
	case domain.TemplateThermal:
		return thermal(), nil
	}
	return Layout{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, string(id))
}

// Known reports whether id names a layout.
func Known(id domain.TemplateID) bool {
	_, err := SelectLayout(id)
	return err == nil
}

// Resolve returns the first known id among candidates, or DefaultTemplate.
func Resolve(candidates ...domain.TemplateID) domain.TemplateID {
	for _, id := range candidates {
		if Known(id) {
			return id
		}
	}
	return DefaultTemplate
}

var unsafeName = strings.NewReplacer(
	"/", "-", `\`, "-", ":", "-", "*", "-", "?", "-", `"`, "-", "<", "-", ">", "-", "|", "-",
	" ", "_",
)

// nameTag matches the digest FileName appends to rewritten numbers.
var nameTag = regexp.MustCompile(`_[0-9a-f]{12}$`)

// FileName is the download name of a rendered invoice. The replica and
// receipt families use the bare invoice number. A number that had to be
// rewritten to be a safe file name gets a digest of the original appended,
// so distinct numbers never share a file.
func FileName(id domain.TemplateID, invoiceNo string) string {
	no := unsafeName.Replace(invoiceNo)
	if no == "" {
		no = "invoice"
	}
	if no != invoiceNo || nameTag.MatchString(invoiceNo) {
		sum := sha256.Sum256([]byte(invoiceNo))
		no += "_" + hex.EncodeToString(sum[:6])
	}
	switch id {
	case domain.TemplateStandard, domain.TemplateModern:
		return "Invoice_" + no + ".pdf"
	}
	return no + ".pdf"
}

var accents = map[domain.Theme]Color{
	domain.ThemeBlue:   {R: 37, G: 99, B: 235},
	domain.ThemeGreen:  {R: 5, G: 150, B: 105},
	domain.ThemePurple: {R: 147, G: 51, B: 234},
	domain.ThemeDark:   {R: 30, G: 41, B: 59},
}

func accent(t domain.Theme) Color {
	if c, ok := accents[t]; ok {
		return c
	}
	return accents[domain.ThemeBlue]
}

func col(head string, width float64, a Align, cell cellFunc) column {
	return column{Column: Column{Head: head, Width: width, Align: a}, cell: cell}
}

var (
	cellSerial   = func(n int, _ domain.LineItem) string { return strconv.Itoa(n) }
	cellName     = func(_ int, it domain.LineItem) string { return it.Name }
	cellBatch    = func(_ int, it domain.LineItem) string { return it.Batch }
	cellExpiry   = func(_ int, it domain.LineItem) string { return it.Expiry }
	cellHSN      = func(_ int, it domain.LineItem) string { return it.HSN }
	cellOldMRP   = func(_ int, it domain.LineItem) string { return optionalNumber(it.OldMRP) }
	cellMRP      = func(_ int, it domain.LineItem) string { return number(it.MRP) }
	cellQty      = func(_ int, it domain.LineItem) string { return number(it.Quantity) }
	cellFree     = func(_ int, it domain.LineItem) string { return number(it.FreeQuantity) }
	cellRate     = func(_ int, it domain.LineItem) string { return money(it.SaleRate) }
	cellValue    = func(_ int, it domain.LineItem) string { return money(it.GrossValue()) }
	cellDisc     = func(_ int, it domain.LineItem) string { return number(it.DiscountPercent) }
	cellTaxable  = func(_ int, it domain.LineItem) string { return money(it.TaxableValue) }
	cellHalfRate = func(_ int, it domain.LineItem) string { return number(it.GSTRate / 2) }
	cellSGST     = func(_ int, it domain.LineItem) string { return money(it.SGSTAmount) }
	cellCGST     = func(_ int, it domain.LineItem) string { return money(it.CGSTAmount) }
	cellGSTRate  = func(_ int, it domain.LineItem) string { return number(it.GSTRate) }
	cellIGST     = func(_ int, it domain.LineItem) string { return money(it.IGSTAmount) }
	cellTotal    = func(_ int, it domain.LineItem) string { return money(it.TotalAmount) }
)

// a4Columns builds the full-page item table. The name column absorbs the
// width of whichever optional columns are left out.
func a4Columns(withOldMRP, withFree, interstate bool) []column {
	name := 28.0
	if !withOldMRP {
		name += 10
	}
	if !withFree {
		name += 7
	}
	cols := []column{
		col("S.N", 6, AlignCenter, cellSerial),
		col("ITEM DESCRIPTION", name, AlignLeft, cellName),
		col("Batch", 12, AlignCenter, cellBatch),
		col("Exp", 10, AlignCenter, cellExpiry),
		col("HSN", 11, AlignCenter, cellHSN),
	}
	if withOldMRP {
		cols = append(cols, col("OLD\nMRP", 10, AlignRight, cellOldMRP))
	}
	cols = append(cols,
		col("MRP", 10, AlignRight, cellMRP),
		col("QTY", 8, AlignCenter, cellQty),
	)
	if withFree {
		cols = append(cols, col("Fr.\nQty", 7, AlignCenter, cellFree))
	}
	cols = append(cols,
		col("RATE", 11, AlignRight, cellRate),
		col("Value", 12, AlignRight, cellValue),
		col("Disc\n%", 7, AlignCenter, cellDisc),
		col("Taxable\nAmt.", 13, AlignRight, cellTaxable),
	)
	if interstate {
		cols = append(cols,
			col("IGST\n%", 12, AlignCenter, cellGSTRate),
			col("IGST\nAmt", 20, AlignRight, cellIGST),
		)
	} else {
		cols = append(cols,
			col("SGST\n%", 6, AlignCenter, cellHalfRate),
			col("SGST\nAmt", 10, AlignRight, cellSGST),
			col("CGST\n%", 6, AlignCenter, cellHalfRate),
			col("CGST\nAmt", 10, AlignRight, cellCGST),
		)
	}
	return append(cols, col("TOTAL", 13, AlignRight, cellTotal))
}

func authentic() Layout {
	return Layout{
		ID:                domain.TemplateAuthentic,
		Width:             210,
		Height:            297,
		Margin:            10,
		Title:             "TAX INVOICE",
		Font:              Font{Family: "Helvetica", Size: 9},
		TableFont:         Font{Family: "Helvetica", Size: 6},
		Grid:              true,
		Columns:           a4Columns(true, true, false),
		InterstateColumns: a4Columns(true, true, true),
		RoundGrandTotal:   true,
		TotalsX:           135,
	}
}

func standard() Layout {
	return Layout{
		ID:                domain.TemplateStandard,
		Width:             210,
		Height:            297,
		Margin:            10,
		Title:             "TAX INVOICE",
		Font:              Font{Family: "Helvetica", Size: 9},
		TableFont:         Font{Family: "Helvetica", Size: 7},
		Grid:              true,
		Columns:           a4Columns(false, false, false),
		InterstateColumns: a4Columns(false, false, true),
		TaxInWords:        true,
		TotalsX:           135,
	}
}

func modern() Layout {
	l := standard()
	l.ID = domain.TemplateModern
	l.Accent = true
	return l
}

func thermal() Layout {
	cols := []column{
		col("Item", 32, AlignLeft, cellName),
		col("Qty", 10, AlignRight, cellQty),
		col("Rate", 14, AlignRight, cellRate),
		col("Amount", 16, AlignRight, cellTotal),
	}
	return Layout{
		ID:         domain.TemplateThermal,
		Width:      80,
		Height:     297,
		Margin:     4,
		Title:      "TAX INVOICE",
		Font:       Font{Family: "Courier", Size: 7},
		Receipt:    true,
		TableFont:  Font{Family: "Courier", Size: 6},
		Columns:    cols,
		TotalsX:    4,
	}
}
