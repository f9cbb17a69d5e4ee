// Package export writes invoice data to spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"pharmabill/m/domain"
	"pharmabill/m/internal/tax"
)

// SheetName is the only sheet of an HSN workbook.
const SheetName = "HSN Summary"

var headings = []string{"HSN/SAC", "Taxable Value", "SGST", "CGST", "IGST", "Total Tax"}

// HSNWorkbook builds a workbook with one row per HSN code, in first-seen
// order, followed by a total row. Amounts are stored as numbers rounded to
// two decimals.
func HSNWorkbook(inv domain.Invoice) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, err
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, h := range headings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}

	summary := tax.Summarize(inv.Items)
	rowNo := 2
	for _, r := range summary.Rows {
		if err := writeRow(f, rowNo, r.HSN, r.Taxable, r.SGST, r.CGST, r.IGST, r.Tax()); err != nil {
			f.Close()
			return nil, err
		}
		rowNo++
	}
	t := summary.Totals
	if err := writeRow(f, rowNo, "Total", t.Taxable, t.SGST, t.CGST, t.IGST, t.Tax()); err != nil {
		f.Close()
		return nil, err
	}

	last, _ := excelize.CoordinatesToCellName(len(headings), rowNo)
	if err := f.SetCellStyle(SheetName, "B2", last, amountStyle); err != nil {
		f.Close()
		return nil, err
	}
	end, _ := excelize.CoordinatesToCellName(len(headings), 1)
	if err := f.SetCellStyle(SheetName, "A1", end, boldStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "A", "F", 14); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRow(f *excelize.File, rowNo int, label string, amounts ...decimal.Decimal) error {
	values := make([]interface{}, 0, len(amounts)+1)
	values = append(values, label)
	for _, a := range amounts {
		values = append(values, a.Round(2).InexactFloat64())
	}
	cell := fmt.Sprintf("A%d", rowNo)
	return f.SetSheetRow(SheetName, cell, &values)
}

// WriteHSN streams the HSN workbook of inv to w.
func WriteHSN(w io.Writer, inv domain.Invoice) error {
	f, err := HSNWorkbook(inv)
	if err != nil {
		return fmt.Errorf("build hsn workbook for %s: %w", inv.InvoiceNo, err)
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write hsn workbook for %s: %w", inv.InvoiceNo, err)
	}
	return nil
}
