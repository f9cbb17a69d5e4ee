// Package reprint re-renders stored invoices in bulk and archives the
// resulting documents.
package reprint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pharmabill/m/domain"
	"pharmabill/m/internal/archive"
	"pharmabill/m/internal/render"
	"pharmabill/m/internal/store"
)

// InvoiceSource loads invoices with their items.
type InvoiceSource interface {
	GetMany(ctx context.Context, invoiceNos []string) ([]domain.Invoice, error)
}

// ProfileSource loads the company profile.
type ProfileSource interface {
	Get(ctx context.Context) (*domain.CompanyProfile, error)
}

// Request names the invoices to reprint. An empty or unknown Template falls
// back to the profile's template and then to the default.
type Request struct {
	InvoiceNos []string
	Template   domain.TemplateID
	CopyLabel  string
}

// Document is one archived output.
type Document struct {
	InvoiceNo string `json:"invoiceNo"`
	Name      string `json:"name"`
	Location  string `json:"location"`
}

// Result describes a finished batch. Documents follow the request order.
type Result struct {
	JobID     string            `json:"jobId"`
	Template  domain.TemplateID `json:"template"`
	Documents []Document        `json:"documents"`
}

// Reprinter renders batches with a bounded number of concurrent workers.
type Reprinter struct {
	invoices InvoiceSource
	profiles ProfileSource
	engine   *render.Engine
	sink     archive.Sink
	workers  int
	logger   *zap.Logger
}

// New returns a Reprinter running at most workers renders at once. A
// workers value below one means one.
func New(invoices InvoiceSource, profiles ProfileSource, engine *render.Engine, sink archive.Sink, workers int, logger *zap.Logger) *Reprinter {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reprinter{
		invoices: invoices,
		profiles: profiles,
		engine:   engine,
		sink:     sink,
		workers:  workers,
		logger:   logger,
	}
}

// Run renders and stores every requested invoice. Unknown invoice numbers
// fail the batch before anything is rendered. The first render or storage
// failure cancels the remaining work and is returned with its invoice
// number.
func (r *Reprinter) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{JobID: uuid.NewString()}
	log := r.logger.With(zap.String("job_id", res.JobID))

	profile, err := r.profiles.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, render.ErrMissingProfile
	}
	if err != nil {
		return nil, err
	}
	res.Template = render.Resolve(req.Template, profile.InvoiceTemplate)
	if req.Template != "" && req.Template != res.Template {
		log.Warn("unknown template, falling back",
			zap.String("requested", string(req.Template)),
			zap.String("template", string(res.Template)))
	}

	invoices, err := r.invoices.GetMany(ctx, req.InvoiceNos)
	if err != nil {
		return nil, err
	}
	if missing := missingNumbers(req.InvoiceNos, invoices); len(missing) > 0 {
		return nil, fmt.Errorf("invoices %s: %w", strings.Join(missing, ", "), store.ErrNotFound)
	}

	engine := r.engine.WithCopyLabel(req.CopyLabel)
	res.Documents = make([]Document, len(invoices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range invoices {
		i, inv := i, invoices[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := *profile
			body, err := engine.Render(inv, &p, res.Template)
			if err != nil {
				return fmt.Errorf("invoice %s: %w", inv.InvoiceNo, err)
			}
			name := render.FileName(res.Template, inv.InvoiceNo)
			loc, err := r.sink.Put(gctx, name, body)
			if err != nil {
				return fmt.Errorf("invoice %s: %w", inv.InvoiceNo, err)
			}
			res.Documents[i] = Document{InvoiceNo: inv.InvoiceNo, Name: name, Location: loc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("reprint aborted", zap.Error(err))
		return nil, err
	}

	log.Info("reprint finished",
		zap.Int("documents", len(res.Documents)),
		zap.String("template", string(res.Template)))
	return res, nil
}

func missingNumbers(requested []string, found []domain.Invoice) []string {
	have := make(map[string]bool, len(found))
	for _, inv := range found {
		have[inv.InvoiceNo] = true
	}
	var missing []string
	for _, no := range requested {
		if !have[no] {
			have[no] = true
			missing = append(missing, no)
		}
	}
	return missing
}
