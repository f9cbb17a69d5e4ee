// Package render lays out tax invoices and writes them as PDF documents.
//
// One engine serves every template. A Layout descriptor selects page size,
// fonts, item columns and optional sections; the GST summary and the amount
// in words come from the tax and words packages for every variant.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmabill/m/domain"
	"pharmabill/m/internal/tax"
	"pharmabill/m/internal/words"
)

var (
	// ErrMissingProfile is returned when no company profile is supplied.
	ErrMissingProfile = errors.New("company profile missing")
	// ErrTooManyItems is returned when an invoice exceeds the line item limit.
	ErrTooManyItems = errors.New("too many line items")
)

// DefaultCopyLabel is printed in the top right corner of the header.
const DefaultCopyLabel = "Duplicate Copy"

// Options tune the engine. Timestamp is stored in the PDF metadata.
type Options struct {
	CopyLabel    string
	MaxLineItems int
	Timestamp    time.Time
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		CopyLabel:    DefaultCopyLabel,
		MaxLineItems: 1000,
		Timestamp:    time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Engine renders invoices. It holds no per-render state and is safe for
// concurrent use.
type Engine struct {
	logger *zap.Logger
	opts   Options
}

// NewEngine builds an engine; zero option fields take their defaults.
func NewEngine(logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.CopyLabel == "" {
		opts.CopyLabel = def.CopyLabel
	}
	if opts.MaxLineItems <= 0 {
		opts.MaxLineItems = def.MaxLineItems
	}
	if opts.Timestamp.IsZero() {
		opts.Timestamp = def.Timestamp
	}
	return &Engine{logger: logger, opts: opts}
}

// WithCopyLabel returns an engine printing label as the copy designator.
func (e *Engine) WithCopyLabel(label string) *Engine {
	c := *e
	if label != "" {
		c.opts.CopyLabel = label
	}
	return &c
}

// Render lays out inv with profile in template id and returns the PDF bytes.
func (e *Engine) Render(inv domain.Invoice, profile *domain.CompanyProfile, id domain.TemplateID) ([]byte, error) {
	l, err := SelectLayout(id)
	if err != nil {
		return nil, err
	}
	d, err := e.prepare(l, inv, profile)
	if err != nil {
		return nil, err
	}

	s := NewPDFSurface(l.Width, l.Height, l.Margin, e.opts.Timestamp)
	s.SetInfo(l.Title+" "+inv.InvoiceNo, d.profile.CompanyName)
	paint(s, l, d)

	var buf bytes.Buffer
	if err := s.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf for invoice %s: %w", inv.InvoiceNo, err)
	}
	e.logger.Debug("invoice rendered",
		zap.String("invoice_no", inv.InvoiceNo),
		zap.String("template", string(id)),
		zap.Int("items", len(inv.Items)),
		zap.Int("pages", s.PageCount()),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// Record lays out inv onto a Recorder and returns the instruction list.
func (e *Engine) Record(inv domain.Invoice, profile *domain.CompanyProfile, id domain.TemplateID) (*Recorder, error) {
	l, err := SelectLayout(id)
	if err != nil {
		return nil, err
	}
	d, err := e.prepare(l, inv, profile)
	if err != nil {
		return nil, err
	}
	r := NewRecorder(l.Width, l.Height, l.Margin)
	paint(r, l, d)
	return r, nil
}

// sheet is everything a layout prints, computed before drawing starts.
type sheet struct {
	inv      domain.Invoice
	profile  domain.CompanyProfile
	summary  tax.Summary
	grand    decimal.Decimal
	roundOff decimal.Decimal
	words    string
	taxWords string
	copy     string
}

func (e *Engine) prepare(l Layout, inv domain.Invoice, profile *domain.CompanyProfile) (sheet, error) {
	if profile == nil {
		return sheet{}, ErrMissingProfile
	}
	if n := len(inv.Items); n > e.opts.MaxLineItems {
		return sheet{}, fmt.Errorf("%w: invoice %s has %d (limit %d)", ErrTooManyItems, inv.InvoiceNo, n, e.opts.MaxLineItems)
	}

	d := sheet{
		inv:     inv,
		profile: *profile,
		summary: tax.Summarize(inv.Items),
		copy:    e.opts.CopyLabel,
	}
	exact := d.summary.Totals.Grand.Round(2)
	d.grand = exact
	if l.RoundGrandTotal {
		d.grand = d.summary.Totals.Grand.Round(0)
		d.roundOff = d.grand.Sub(exact)
	}

	var err error
	if d.words, err = words.Rupees(d.grand); err != nil {
		return sheet{}, fmt.Errorf("invoice %s grand total: %w", inv.InvoiceNo, err)
	}
	if l.TaxInWords {
		if d.taxWords, err = words.Rupees(d.summary.Totals.Tax()); err != nil {
			return sheet{}, fmt.Errorf("invoice %s tax total: %w", inv.InvoiceNo, err)
		}
	}
	return d, nil
}
