package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pharmabill/m/domain"
)

// Invoices reads and writes invoices together with their line items.
type Invoices struct {
	db *sqlx.DB
}

// NewInvoices returns an invoice store backed by db.
func NewInvoices(db *sqlx.DB) *Invoices {
	return &Invoices{db: db}
}

const invoiceColumns = `id, invoice_no, date, party_name, party_address, party_gstin,
        gr_no, vehicle_no, transport, total_taxable, total_sgst, total_cgst,
        total_igst, grand_total, created_at`

const itemColumns = `id, invoice_id, position, name, hsn, batch, expiry, old_mrp, mrp,
        quantity, free_quantity, sale_rate, discount_percent, gst_rate, taxable_value,
        sgst_amount, cgst_amount, igst_amount, total_amount`

// Create inserts inv and its items in one transaction. It reports false
// without error when an invoice with the same number already exists.
func (s *Invoices) Create(ctx context.Context, inv *domain.Invoice) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin invoice %s: %w", inv.InvoiceNo, err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowxContext(ctx, `INSERT INTO invoices (invoice_no, date, party_name, party_address, party_gstin,
        gr_no, vehicle_no, transport, total_taxable, total_sgst, total_cgst, total_igst, grand_total)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (invoice_no) DO NOTHING RETURNING id`,
		inv.InvoiceNo, inv.Date, inv.PartyName, inv.PartyAddress, inv.PartyGSTIN,
		inv.GRNo, inv.VehicleNo, inv.Transport, inv.TotalTaxable, inv.TotalSGST,
		inv.TotalCGST, inv.TotalIGST, inv.GrandTotal).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert invoice %s: %w", inv.InvoiceNo, err)
	}

	for i := range inv.Items {
		item := inv.Items[i]
		item.InvoiceID = id
		item.Position = i
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO invoice_items (invoice_id, position, name, hsn, batch, expiry,
            old_mrp, mrp, quantity, free_quantity, sale_rate, discount_percent, gst_rate, taxable_value,
            sgst_amount, cgst_amount, igst_amount, total_amount)
            VALUES (:invoice_id, :position, :name, :hsn, :batch, :expiry, :old_mrp, :mrp, :quantity,
            :free_quantity, :sale_rate, :discount_percent, :gst_rate, :taxable_value, :sgst_amount,
            :cgst_amount, :igst_amount, :total_amount)`, item); err != nil {
			return false, fmt.Errorf("insert item %d of invoice %s: %w", i, inv.InvoiceNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit invoice %s: %w", inv.InvoiceNo, err)
	}
	inv.ID = id
	return true, nil
}

// Get loads one invoice with its items in entry order.
func (s *Invoices) Get(ctx context.Context, invoiceNo string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := s.db.GetContext(ctx, &inv, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_no = $1`, invoiceNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice %s: %w", invoiceNo, err)
	}
	if err := s.db.SelectContext(ctx, &inv.Items, `SELECT `+itemColumns+` FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, inv.ID); err != nil {
		return nil, fmt.Errorf("load items of invoice %s: %w", invoiceNo, err)
	}
	return &inv, nil
}

// List returns invoice headers, newest first. Items are not loaded.
func (s *Invoices) List(ctx context.Context, limit, offset int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	invoices := []domain.Invoice{}
	if err := s.db.SelectContext(ctx, &invoices, `SELECT `+invoiceColumns+` FROM invoices ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// GetMany loads the named invoices with items, in the requested order.
// Unknown numbers are skipped; callers compare lengths to detect them.
func (s *Invoices) GetMany(ctx context.Context, invoiceNos []string) ([]domain.Invoice, error) {
	if len(invoiceNos) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_no IN (?)`, invoiceNos)
	if err != nil {
		return nil, fmt.Errorf("prepare invoices query: %w", err)
	}
	var found []domain.Invoice
	if err := s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(found))
	for i, inv := range found {
		ids[i] = inv.ID
	}
	query, args, err = sqlx.In(`SELECT `+itemColumns+` FROM invoice_items WHERE invoice_id IN (?) ORDER BY invoice_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare items query: %w", err)
	}
	var items []domain.LineItem
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	itemsByInvoice := make(map[int64][]domain.LineItem)
	for _, item := range items {
		itemsByInvoice[item.InvoiceID] = append(itemsByInvoice[item.InvoiceID], item)
	}

	byNo := make(map[string]domain.Invoice, len(found))
	for _, inv := range found {
		inv.Items = itemsByInvoice[inv.ID]
		byNo[inv.InvoiceNo] = inv
	}
	out := make([]domain.Invoice, 0, len(found))
	seen := make(map[string]bool, len(invoiceNos))
	for _, no := range invoiceNos {
		inv, ok := byNo[no]
		if !ok || seen[no] {
			continue
		}
		seen[no] = true
		out = append(out, inv)
	}
	return out, nil
}
