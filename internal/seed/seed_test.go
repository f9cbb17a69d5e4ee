package seed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"pharmabill/m/domain"
	"pharmabill/m/internal/database"
	"pharmabill/m/internal/migrations"
	"pharmabill/m/internal/store"
)

func newStores(t *testing.T) (*store.Profiles, *store.Invoices) {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return store.NewProfiles(db), store.NewInvoices(db)
}

func TestEnsureProfile(t *testing.T) {
	ctx := context.Background()
	profiles, _ := newStores(t)

	wrote, err := EnsureProfile(ctx, profiles, zap.NewNop())
	if err != nil || !wrote {
		t.Fatalf("first EnsureProfile = %v, %v", wrote, err)
	}

	custom := DefaultProfile()
	custom.CompanyName = "CHANGED"
	if err := profiles.Save(ctx, custom); err != nil {
		t.Fatalf("Save: %v", err)
	}
	wrote, err = EnsureProfile(ctx, profiles, zap.NewNop())
	if err != nil || wrote {
		t.Fatalf("second EnsureProfile = %v, %v; want false, nil", wrote, err)
	}
	got, err := profiles.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CompanyName != "CHANGED" {
		t.Fatalf("existing profile overwritten: %q", got.CompanyName)
	}
	if got.InvoiceTemplate != domain.TemplateAuthentic {
		t.Fatalf("template = %q", got.InvoiceTemplate)
	}
}

const sampleCSV = `invoice_no,date,party_name,interstate,name,hsn,quantity,free_quantity,sale_rate,discount_percent,gst_rate,old_mrp
GD/1,2024-03-05,Shree Medical,false,Paracetamol,3004,2,1,50,10,12,
GD/1,2024-03-05,Shree Medical,false,Cough Syrup,3003,1,0,21,0,5,25
GD/2,2024-03-06,Out Of State,true,Bandage,3005,3,0,10,0,12,
GD/2,2024-03-06,Out Of State,true,Broken,3005,abc,0,10,0,12,
,,,,orphan,3004,1,0,1,0,0,
`

func TestReadInvoices(t *testing.T) {
	invoices, err := ReadInvoices(strings.NewReader(sampleCSV), zap.NewNop())
	if err != nil {
		t.Fatalf("ReadInvoices error: %v", err)
	}
	if len(invoices) != 2 {
		t.Fatalf("got %d invoices, want 2", len(invoices))
	}

	first := invoices[0]
	if first.InvoiceNo != "GD/1" || len(first.Items) != 2 {
		t.Fatalf("unexpected first invoice %+v", first)
	}
	para := first.Items[0]
	// 50 * 2 * 0.9 = 90 taxable, 10.80 GST split 5.40 / 5.40.
	if para.TaxableValue != 90 || para.SGSTAmount != 5.4 || para.CGSTAmount != 5.4 || para.TotalAmount != 100.8 {
		t.Fatalf("unexpected pricing %+v", para)
	}
	if para.FreeQuantity != 1 || para.OldMRP != nil {
		t.Fatalf("free/old MRP not parsed: %+v", para)
	}
	syrup := first.Items[1]
	if syrup.Position != 1 || syrup.OldMRP == nil || *syrup.OldMRP != 25 {
		t.Fatalf("unexpected second item %+v", syrup)
	}
	// 21 taxable, 1.05 GST: SGST 0.52, CGST 0.53.
	if syrup.SGSTAmount != 0.52 || syrup.CGSTAmount != 0.53 {
		t.Fatalf("odd paisa split = %v / %v", syrup.SGSTAmount, syrup.CGSTAmount)
	}
	if first.TotalTaxable != 111 || first.GrandTotal != 122.85 {
		t.Fatalf("aggregates = %v / %v", first.TotalTaxable, first.GrandTotal)
	}

	second := invoices[1]
	if len(second.Items) != 1 {
		t.Fatalf("malformed row should be skipped, got %d items", len(second.Items))
	}
	if second.TotalIGST != 3.6 || second.TotalSGST != 0 {
		t.Fatalf("interstate totals = IGST %v SGST %v", second.TotalIGST, second.TotalSGST)
	}
}

func TestReadInvoicesRequiresColumns(t *testing.T) {
	if _, err := ReadInvoices(strings.NewReader("party_name,hsn\nx,1\n"), zap.NewNop()); err == nil {
		t.Fatalf("expected error for missing invoice_no column")
	}
}

func TestLoadInvoices(t *testing.T) {
	ctx := context.Background()
	_, invoices := newStores(t)

	path := filepath.Join(t.TempDir(), "invoices.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	n, err := LoadInvoices(ctx, invoices, path, zap.NewNop())
	if err != nil || n != 2 {
		t.Fatalf("LoadInvoices = %d, %v", n, err)
	}
	n, err = LoadInvoices(ctx, invoices, path, zap.NewNop())
	if err != nil || n != 0 {
		t.Fatalf("second LoadInvoices = %d, %v; want 0", n, err)
	}

	got, err := invoices.Get(ctx, "GD/1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Items) != 2 || got.GrandTotal != 122.85 {
		t.Fatalf("stored invoice %+v", got)
	}

	if _, err := LoadInvoices(ctx, invoices, filepath.Join(t.TempDir(), "missing.csv"), zap.NewNop()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHeader(&buf); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	invoices, err := ReadInvoices(&buf, zap.NewNop())
	if err != nil || len(invoices) != 0 {
		t.Fatalf("header-only csv = %v, %v", invoices, err)
	}
}
