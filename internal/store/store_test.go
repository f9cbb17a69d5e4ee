package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"pharmabill/m/domain"
	"pharmabill/m/internal/database"
	"pharmabill/m/internal/migrations"
)

func newDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func TestProfilesRoundTrip(t *testing.T) {
	ctx := context.Background()
	profiles := NewProfiles(newDB(t))

	if _, err := profiles.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty settings = %v, want ErrNotFound", err)
	}

	in := domain.CompanyProfile{
		ID:              42,
		CompanyName:     "GOPI DISTRIBUTOR",
		GSTIN:           "24AADPO7411Q1ZE",
		DLNo2:           "GJ-ADC-AA/1953",
		Theme:           domain.ThemeGreen,
		InvoiceTemplate: domain.TemplateModern,
	}
	if err := profiles.Save(ctx, in); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	in.CompanyName = "GOPI DISTRIBUTORS"
	if err := profiles.Save(ctx, in); err != nil {
		t.Fatalf("second Save error: %v", err)
	}

	got, err := profiles.Get(ctx)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ID != domain.ProfileID {
		t.Fatalf("ID = %d, want %d", got.ID, domain.ProfileID)
	}
	if got.CompanyName != "GOPI DISTRIBUTORS" || got.Theme != domain.ThemeGreen || got.InvoiceTemplate != domain.TemplateModern {
		t.Fatalf("unexpected profile %+v", got)
	}
	if dl := got.DrugLicences(); len(dl) != 1 || dl[0] != "GJ-ADC-AA/1953" {
		t.Fatalf("DrugLicences = %v", dl)
	}
}

func sampleInvoice(no string) *domain.Invoice {
	old := 120.0
	return &domain.Invoice{
		InvoiceNo:  no,
		Date:       "2024-03-05",
		PartyName:  "Shree Medical",
		GrandTotal: 116.6,
		Items: []domain.LineItem{
			{Name: "Paracetamol", HSN: "3004", OldMRP: &old, MRP: 110, Quantity: 2, SaleRate: 40, GSTRate: 12},
			{Name: "Cough Syrup", HSN: "3003", MRP: 35, Quantity: 1, SaleRate: 30, GSTRate: 5},
		},
	}
}

func TestInvoicesCreateAndGet(t *testing.T) {
	ctx := context.Background()
	invoices := NewInvoices(newDB(t))

	inv := sampleInvoice("GD/24/001")
	created, err := invoices.Create(ctx, inv)
	if err != nil || !created {
		t.Fatalf("Create = %v, %v", created, err)
	}
	if inv.ID == 0 {
		t.Fatalf("Create should set the invoice ID")
	}

	created, err = invoices.Create(ctx, sampleInvoice("GD/24/001"))
	if err != nil || created {
		t.Fatalf("duplicate Create = %v, %v; want false, nil", created, err)
	}

	got, err := invoices.Get(ctx, "GD/24/001")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.PartyName != "Shree Medical" || got.GrandTotal != 116.6 {
		t.Fatalf("unexpected header %+v", got)
	}
	if len(got.Items) != 2 || got.Items[0].Name != "Paracetamol" || got.Items[1].Name != "Cough Syrup" {
		t.Fatalf("items out of order: %+v", got.Items)
	}
	if got.Items[0].OldMRP == nil || *got.Items[0].OldMRP != 120 {
		t.Fatalf("OldMRP = %v, want 120", got.Items[0].OldMRP)
	}
	if got.Items[1].OldMRP != nil {
		t.Fatalf("OldMRP should stay nil, got %v", *got.Items[1].OldMRP)
	}

	if _, err := invoices.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestInvoicesListAndGetMany(t *testing.T) {
	ctx := context.Background()
	invoices := NewInvoices(newDB(t))
	for _, no := range []string{"A1", "A2", "A3"} {
		if _, err := invoices.Create(ctx, sampleInvoice(no)); err != nil {
			t.Fatalf("Create %s: %v", no, err)
		}
	}

	list, err := invoices.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].InvoiceNo != "A3" || list[1].InvoiceNo != "A2" {
		t.Fatalf("List = %+v", list)
	}
	if list[0].Items != nil {
		t.Fatalf("List should not load items")
	}

	many, err := invoices.GetMany(ctx, []string{"A3", "nope", "A1", "A3"})
	if err != nil {
		t.Fatalf("GetMany error: %v", err)
	}
	if len(many) != 2 || many[0].InvoiceNo != "A3" || many[1].InvoiceNo != "A1" {
		t.Fatalf("GetMany order = %+v", many)
	}
	for _, inv := range many {
		if len(inv.Items) != 2 {
			t.Fatalf("invoice %s has %d items", inv.InvoiceNo, len(inv.Items))
		}
	}

	empty, err := invoices.GetMany(ctx, nil)
	if err != nil || empty != nil {
		t.Fatalf("GetMany(nil) = %v, %v", empty, err)
	}
}
