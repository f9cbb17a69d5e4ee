// Package store persists the company profile and finalized invoices.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pharmabill/m/domain"
)

// ErrNotFound is returned when a profile or invoice does not exist.
var ErrNotFound = errors.New("not found")

// Profiles reads and writes the single company profile row.
type Profiles struct {
	db *sqlx.DB
}

// NewProfiles returns a profile store backed by db.
func NewProfiles(db *sqlx.DB) *Profiles {
	return &Profiles{db: db}
}

const profileColumns = `id, company_name, address_line1, address_line2, gstin, phone,
        dl_no1, dl_no2, dl_no3, dl_no4, email, terms, theme, invoice_template`

// Get returns the profile or ErrNotFound when settings have never been saved.
func (p *Profiles) Get(ctx context.Context) (*domain.CompanyProfile, error) {
	var profile domain.CompanyProfile
	err := p.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM settings WHERE id = $1`, domain.ProfileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

// Save upserts the profile. The id is always forced to domain.ProfileID.
func (p *Profiles) Save(ctx context.Context, profile domain.CompanyProfile) error {
	profile.ID = domain.ProfileID
	_, err := p.db.NamedExecContext(ctx, `INSERT INTO settings (`+profileColumns+`)
        VALUES (:id, :company_name, :address_line1, :address_line2, :gstin, :phone,
        :dl_no1, :dl_no2, :dl_no3, :dl_no4, :email, :terms, :theme, :invoice_template)
        ON CONFLICT (id) DO UPDATE SET
            company_name = excluded.company_name,
            address_line1 = excluded.address_line1,
            address_line2 = excluded.address_line2,
            gstin = excluded.gstin,
            phone = excluded.phone,
            dl_no1 = excluded.dl_no1,
            dl_no2 = excluded.dl_no2,
            dl_no3 = excluded.dl_no3,
            dl_no4 = excluded.dl_no4,
            email = excluded.email,
            terms = excluded.terms,
            theme = excluded.theme,
            invoice_template = excluded.invoice_template`, profile)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
