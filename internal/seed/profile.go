package seed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pharmabill/m/domain"
	"pharmabill/m/internal/store"
)

// DefaultProfile is the company profile written on first run.
func DefaultProfile() domain.CompanyProfile {
	return domain.CompanyProfile{
		ID:              domain.ProfileID,
		CompanyName:     "GOPI DISTRIBUTOR",
		AddressLine1:    "74/20/4, Navyug Colony",
		AddressLine2:    "Bhulabhai Park Crossroad, Ahmedabad-22 Ahmedabad",
		GSTIN:           "24AADPO7411Q1ZE",
		DLNo1:           "GJ-ADC-AA/1946, GJ-ADC-AA/4967",
		DLNo2:           "GJ-ADC-AA/1953, GJ-ADC-AA/4856",
		Phone:           "07925383834, 8460143984, 9426005928",
		Email:           "info@gopidistributor.com",
		Terms:           "Bill No. is must while returning EXP. Products\nE.&.O.E.",
		Theme:           domain.ThemeBlue,
		InvoiceTemplate: domain.TemplateAuthentic,
	}
}

// EnsureProfile saves DefaultProfile when no profile exists yet. It reports
// whether a row was written.
func EnsureProfile(ctx context.Context, profiles *store.Profiles, logger *zap.Logger) (bool, error) {
	_, err := profiles.Get(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if err := profiles.Save(ctx, DefaultProfile()); err != nil {
		return false, err
	}
	logger.Info("seeded default company profile")
	return true, nil
}
