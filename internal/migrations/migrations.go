package migrations

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Run creates the billing schema: the company profile, invoices and their
// line items. Statements are idempotent.
func Run(db *sqlx.DB) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	num := "REAL"
	stamp := "DATETIME DEFAULT CURRENT_TIMESTAMP"
	if db.DriverName() == "postgres" {
		id = "SERIAL PRIMARY KEY"
		num = "DOUBLE PRECISION"
		stamp = "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS settings (
            id INTEGER PRIMARY KEY,
            company_name TEXT NOT NULL DEFAULT '',
            address_line1 TEXT NOT NULL DEFAULT '',
            address_line2 TEXT NOT NULL DEFAULT '',
            gstin TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            dl_no1 TEXT NOT NULL DEFAULT '',
            dl_no2 TEXT NOT NULL DEFAULT '',
            dl_no3 TEXT NOT NULL DEFAULT '',
            dl_no4 TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            terms TEXT NOT NULL DEFAULT '',
            theme TEXT NOT NULL DEFAULT 'blue',
            invoice_template TEXT NOT NULL DEFAULT 'authentic'
        );`,
		`CREATE TABLE IF NOT EXISTS invoices (
            id {{id}},
            invoice_no TEXT NOT NULL UNIQUE,
            date TEXT NOT NULL DEFAULT '',
            party_name TEXT NOT NULL DEFAULT '',
            party_address TEXT NOT NULL DEFAULT '',
            party_gstin TEXT NOT NULL DEFAULT '',
            gr_no TEXT NOT NULL DEFAULT '',
            vehicle_no TEXT NOT NULL DEFAULT '',
            transport TEXT NOT NULL DEFAULT '',
            total_taxable {{real}} NOT NULL DEFAULT 0,
            total_sgst {{real}} NOT NULL DEFAULT 0,
            total_cgst {{real}} NOT NULL DEFAULT 0,
            total_igst {{real}} NOT NULL DEFAULT 0,
            grand_total {{real}} NOT NULL DEFAULT 0,
            created_at {{stamp}}
        );`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
            id {{id}},
            invoice_id INTEGER NOT NULL,
            position INTEGER NOT NULL,
            name TEXT NOT NULL,
            hsn TEXT NOT NULL DEFAULT '',
            batch TEXT NOT NULL DEFAULT '',
            expiry TEXT NOT NULL DEFAULT '',
            old_mrp {{real}},
            mrp {{real}} NOT NULL DEFAULT 0,
            quantity {{real}} NOT NULL DEFAULT 0,
            free_quantity {{real}} NOT NULL DEFAULT 0,
            sale_rate {{real}} NOT NULL DEFAULT 0,
            discount_percent {{real}} NOT NULL DEFAULT 0,
            gst_rate {{real}} NOT NULL DEFAULT 0,
            taxable_value {{real}} NOT NULL DEFAULT 0,
            sgst_amount {{real}} NOT NULL DEFAULT 0,
            cgst_amount {{real}} NOT NULL DEFAULT 0,
            igst_amount {{real}} NOT NULL DEFAULT 0,
            total_amount {{real}} NOT NULL DEFAULT 0,
            FOREIGN KEY(invoice_id) REFERENCES invoices(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id, position);`,
	}

	r := strings.NewReplacer("{{id}}", id, "{{real}}", num, "{{stamp}}", stamp)
	for _, stmt := range schema {
		if _, err := db.Exec(r.Replace(stmt)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
