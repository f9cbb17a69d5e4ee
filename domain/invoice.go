package domain

// Invoice is a finalized tax invoice as persisted by the invoicing screens.
type Invoice struct {
	ID           int64      `db:"id" json:"id,omitempty"`
	InvoiceNo    string     `db:"invoice_no" json:"invoiceNo"`
	Date         string     `db:"date" json:"date"`
	PartyName    string     `db:"party_name" json:"partyName"`
	PartyAddress string     `db:"party_address" json:"partyAddress"`
	PartyGSTIN   string     `db:"party_gstin" json:"partyGstin"`
	GRNo         string     `db:"gr_no" json:"grNo"`
	VehicleNo    string     `db:"vehicle_no" json:"vehicleNo"`
	Transport    string     `db:"transport" json:"transport"`
	Items        []LineItem `db:"-" json:"items"`
	TotalTaxable float64    `db:"total_taxable" json:"totalTaxable"`
	TotalSGST    float64    `db:"total_sgst" json:"totalSGST"`
	TotalCGST    float64    `db:"total_cgst" json:"totalCGST"`
	TotalIGST    float64    `db:"total_igst" json:"totalIGST"`
	GrandTotal   float64    `db:"grand_total" json:"grandTotal"`
	CreatedAt    string     `db:"created_at" json:"createdAt,omitempty"`
}

// LineItem is one billed product row. OldMRP is nil when the product had no
// earlier printed price.
type LineItem struct {
	ID              int64    `db:"id" json:"-"`
	InvoiceID       int64    `db:"invoice_id" json:"-"`
	Position        int      `db:"position" json:"-"`
	Name            string   `db:"name" json:"name"`
	HSN             string   `db:"hsn" json:"hsn"`
	Batch           string   `db:"batch" json:"batch"`
	Expiry          string   `db:"expiry" json:"expiry"`
	OldMRP          *float64 `db:"old_mrp" json:"oldMrp,omitempty"`
	MRP             float64  `db:"mrp" json:"mrp"`
	Quantity        float64  `db:"quantity" json:"quantity"`
	FreeQuantity    float64  `db:"free_quantity" json:"freeQuantity"`
	SaleRate        float64  `db:"sale_rate" json:"saleRate"`
	DiscountPercent float64  `db:"discount_percent" json:"discountPercent"`
	GSTRate         float64  `db:"gst_rate" json:"gstRate"`
	TaxableValue    float64  `db:"taxable_value" json:"taxableValue"`
	SGSTAmount      float64  `db:"sgst_amount" json:"sgstAmount"`
	CGSTAmount      float64  `db:"cgst_amount" json:"cgstAmount"`
	IGSTAmount      float64  `db:"igst_amount" json:"igstAmount"`
	TotalAmount     float64  `db:"total_amount" json:"totalAmount"`
}

// GrossValue is the undiscounted value of the charged quantity.
func (li LineItem) GrossValue() float64 {
	return li.SaleRate * li.Quantity
}
