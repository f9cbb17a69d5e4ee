package domain

// Theme is the accent palette chosen in the settings screen.
type Theme string

const (
	ThemeBlue   Theme = "blue"
	ThemeGreen  Theme = "green"
	ThemePurple Theme = "purple"
	ThemeDark   Theme = "dark"
)

// TemplateID names an invoice layout.
type TemplateID string

const (
	TemplateStandard  TemplateID = "standard"
	TemplateModern    TemplateID = "modern"
	TemplateThermal   TemplateID = "thermal"
	TemplateAuthentic TemplateID = "authentic"
)

// ProfileID is the fixed key of the company profile row.
const ProfileID int64 = 1

// CompanyProfile is the tenant identity printed on every invoice.
type CompanyProfile struct {
	ID              int64      `db:"id" json:"id"`
	CompanyName     string     `db:"company_name" json:"companyName"`
	AddressLine1    string     `db:"address_line1" json:"addressLine1"`
	AddressLine2    string     `db:"address_line2" json:"addressLine2"`
	GSTIN           string     `db:"gstin" json:"gstin"`
	Phone           string     `db:"phone" json:"phone"`
	DLNo1           string     `db:"dl_no1" json:"dlNo1,omitempty"`
	DLNo2           string     `db:"dl_no2" json:"dlNo2,omitempty"`
	DLNo3           string     `db:"dl_no3" json:"dlNo3,omitempty"`
	DLNo4           string     `db:"dl_no4" json:"dlNo4,omitempty"`
	Email           string     `db:"email" json:"email"`
	Terms           string     `db:"terms" json:"terms"`
	Theme           Theme      `db:"theme" json:"theme"`
	InvoiceTemplate TemplateID `db:"invoice_template" json:"invoiceTemplate"`
}

// DrugLicences returns the non-empty drug licence numbers in order.
func (p CompanyProfile) DrugLicences() []string {
	var out []string
	for _, dl := range []string{p.DLNo1, p.DLNo2, p.DLNo3, p.DLNo4} {
		if dl != "" {
			out = append(out, dl)
		}
	}
	return out
}
