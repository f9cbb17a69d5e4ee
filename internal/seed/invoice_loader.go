package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pharmabill/m/domain"
	"pharmabill/m/internal/store"
	"pharmabill/m/internal/tax"
)

// Columns understood by LoadInvoices, in the order WriteHeader emits them.
// Only invoice_no and name are required; the rest default to empty or zero.
var Columns = []string{
	"invoice_no", "date", "party_name", "party_address", "party_gstin",
	"gr_no", "vehicle_no", "transport", "interstate",
	"name", "hsn", "batch", "expiry", "old_mrp", "mrp",
	"quantity", "free_quantity", "sale_rate", "discount_percent", "gst_rate",
}

// LoadInvoices imports invoices from a CSV file with one line item per row.
// Rows sharing an invoice_no form one invoice; header fields are taken from
// the first row. Invoices already present are left untouched. Malformed rows
// are logged and skipped. It returns the number of invoices created.
func LoadInvoices(ctx context.Context, invoices *store.Invoices, csvPath string, logger *zap.Logger) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open invoice csv %s: %w", csvPath, err)
	}
	defer file.Close()

	parsed, err := ReadInvoices(file, logger)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, inv := range parsed {
		ok, err := invoices.Create(ctx, inv)
		if err != nil {
			return created, err
		}
		if !ok {
			logger.Debug("invoice already present", zap.String("invoice_no", inv.InvoiceNo))
			continue
		}
		created++
	}
	logger.Info("seeded invoices", zap.Int("created", created), zap.Int("read", len(parsed)))
	return created, nil
}

// ReadInvoices parses the invoice CSV format and prices every line item.
// Invoices are returned in order of first appearance.
func ReadInvoices(r io.Reader, logger *zap.Logger) ([]*domain.Invoice, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read invoice header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"invoice_no", "name"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("invoice csv is missing column %q", required)
		}
	}

	var (
		order      []*domain.Invoice
		byNo       = make(map[string]*domain.Invoice)
		interstate = make(map[string]bool)
		line       = 1
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("unable to read invoice row", zap.Int("line", line), zap.Error(err))
			continue
		}
		row := csvRow{index: index, record: record}

		no := row.text("invoice_no")
		name := row.text("name")
		if no == "" || name == "" {
			continue
		}
		item, err := row.item()
		if err != nil {
			logger.Warn("skipping invoice row", zap.Int("line", line), zap.String("invoice_no", no), zap.Error(err))
			continue
		}

		inv, ok := byNo[no]
		if !ok {
			inv = &domain.Invoice{
				InvoiceNo:    no,
				Date:         row.text("date"),
				PartyName:    row.text("party_name"),
				PartyAddress: row.text("party_address"),
				PartyGSTIN:   row.text("party_gstin"),
				GRNo:         row.text("gr_no"),
				VehicleNo:    row.text("vehicle_no"),
				Transport:    row.text("transport"),
			}
			interstate[no], _ = strconv.ParseBool(row.text("interstate"))
			byNo[no] = inv
			order = append(order, inv)
		}
		tax.Price(&item, interstate[no])
		item.Position = len(inv.Items)
		inv.Items = append(inv.Items, item)
	}

	for _, inv := range order {
		tax.Apply(inv)
	}
	return order, nil
}

// WriteHeader writes a CSV header row naming every known column.
func WriteHeader(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

type csvRow struct {
	index  map[string]int
	record []string
}

func (r csvRow) text(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) number(column string) (float64, error) {
	s := r.text(column)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", column, err)
	}
	return f, nil
}

func (r csvRow) item() (domain.LineItem, error) {
	it := domain.LineItem{
		Name:   r.text("name"),
		HSN:    r.text("hsn"),
		Batch:  r.text("batch"),
		Expiry: r.text("expiry"),
	}
	fields := []struct {
		column string
		dest   *float64
	}{
		{"mrp", &it.MRP},
		{"quantity", &it.Quantity},
		{"free_quantity", &it.FreeQuantity},
		{"sale_rate", &it.SaleRate},
		{"discount_percent", &it.DiscountPercent},
		{"gst_rate", &it.GSTRate},
	}
	for _, f := range fields {
		v, err := r.number(f.column)
		if err != nil {
			return it, err
		}
		*f.dest = v
	}
	if r.text("old_mrp") != "" {
		v, err := r.number("old_mrp")
		if err != nil {
			return it, err
		}
		it.OldMRP = &v
	}
	return it, nil
}
