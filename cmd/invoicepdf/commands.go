package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"pharmabill/m/domain"
	"pharmabill/m/internal/archive"
	"pharmabill/m/internal/export"
	"pharmabill/m/internal/render"
	"pharmabill/m/internal/reprint"
	"pharmabill/m/internal/seed"
	"pharmabill/m/internal/store"
)

// action wraps a command body with environment setup and teardown.
func action(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := newEnv(c)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(c, e)
	}
}

// output opens --out, or stdout when it is "-". A directory gets name
// appended.
func output(c *cli.Context, name string) (io.WriteCloser, string, error) {
	out := c.String("out")
	if out == "-" {
		return nopCloser{os.Stdout}, "stdout", nil
	}
	if out == "" {
		out = "."
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		out = filepath.Join(out, name)
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, "", err
	}
	return f, out, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func outFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: usage}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "render one invoice to PDF",
		Flags: append(sourceFlags(), outFlag("output file or directory, - for stdout")),
		Action: action(func(c *cli.Context, e *env) error {
			inv, err := e.loadInvoice(c)
			if err != nil {
				return err
			}
			profile, err := e.loadProfile(c)
			if err != nil {
				return err
			}
			id := e.template(c, profile)
			body, err := e.engine.WithCopyLabel(c.String("copy")).Render(*inv, profile, id)
			if err != nil {
				return err
			}

			w, dest, err := output(c, render.FileName(id, inv.InvoiceNo))
			if err != nil {
				return err
			}
			if _, err := w.Write(body); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			e.log.Info("invoice written", zap.String("invoice_no", inv.InvoiceNo), zap.String("template", string(id)), zap.String("path", dest))
			return nil
		}),
	}
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "print the drawing instructions of an invoice as JSON",
		Flags: append(sourceFlags(), outFlag("output file, default stdout")),
		Action: action(func(c *cli.Context, e *env) error {
			inv, err := e.loadInvoice(c)
			if err != nil {
				return err
			}
			profile, err := e.loadProfile(c)
			if err != nil {
				return err
			}
			id := e.template(c, profile)
			rec, err := e.engine.WithCopyLabel(c.String("copy")).Record(*inv, profile, id)
			if err != nil {
				return err
			}

			if c.String("out") == "" {
				_ = c.Set("out", "-")
			}
			w, _, err := output(c, strings.TrimSuffix(render.FileName(id, inv.InvoiceNo), ".pdf")+".json")
			if err != nil {
				return err
			}
			defer w.Close()
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Template domain.TemplateID `json:"template"`
				Pages    int               `json:"pages"`
				Ops      []render.Op       `json:"ops"`
			}{id, rec.Pages(), rec.Ops})
		}),
	}
}

func reprintCommand() *cli.Command {
	return &cli.Command{
		Name:      "reprint",
		Usage:     "render stored invoices and archive them",
		ArgsUsage: "INVOICE_NO...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "template for every invoice"},
			&cli.StringFlag{Name: "copy", Usage: "copy designator printed in the header"},
			&cli.StringFlag{Name: "dir", Usage: "archive directory, overrides ARCHIVE_DIR and S3"},
			&cli.IntFlag{Name: "workers", Usage: "concurrent renders, overrides RENDER_WORKERS"},
		},
		Action: action(func(c *cli.Context, e *env) error {
			nos := c.Args().Slice()
			if len(nos) == 0 {
				return errors.New("at least one invoice number is required")
			}
			db, err := e.database()
			if err != nil {
				return err
			}

			cfg := e.cfg.Archive
			if dir := c.String("dir"); dir != "" {
				cfg.Dir, cfg.S3Bucket = dir, ""
			}
			sink, err := archive.New(cfg)
			if err != nil {
				return err
			}
			workers := e.cfg.Render.Workers
			if n := c.Int("workers"); n > 0 {
				workers = n
			}

			r := reprint.New(store.NewInvoices(db), store.NewProfiles(db), e.engine, sink, workers, e.log.Named("reprint"))
			res, err := r.Run(c.Context, reprint.Request{
				InvoiceNos: nos,
				Template:   domain.TemplateID(c.String("template")),
				CopyLabel:  c.String("copy"),
			})
			if err != nil {
				return err
			}
			for _, doc := range res.Documents {
				fmt.Fprintf(c.App.Writer, "%s\t%s\n", doc.InvoiceNo, doc.Location)
			}
			return nil
		}),
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "write the default company profile and import invoices",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "csv", Usage: "CSV of line items to import"},
			&cli.BoolFlag{Name: "header", Usage: "print the CSV header and exit"},
		},
		Action: action(func(c *cli.Context, e *env) error {
			if c.Bool("header") {
				return seed.WriteHeader(c.App.Writer)
			}
			db, err := e.database()
			if err != nil {
				return err
			}
			if _, err := seed.EnsureProfile(c.Context, store.NewProfiles(db), e.log); err != nil {
				return err
			}
			if path := c.String("csv"); path != "" {
				n, err := seed.LoadInvoices(c.Context, store.NewInvoices(db), path, e.log)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "imported %d invoices\n", n)
			}
			return nil
		}),
	}
}

func hsnCommand() *cli.Command {
	return &cli.Command{
		Name:  "hsn",
		Usage: "export the HSN tax summary of an invoice as a spreadsheet",
		Flags: append(sourceFlags()[:5], outFlag("output file or directory, - for stdout")),
		Action: action(func(c *cli.Context, e *env) error {
			inv, err := e.loadInvoice(c)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(render.FileName(render.DefaultTemplate, inv.InvoiceNo), ".pdf") + "_HSN.xlsx"
			w, dest, err := output(c, name)
			if err != nil {
				return err
			}
			if err := export.WriteHSN(w, *inv); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			e.log.Info("hsn summary written", zap.String("invoice_no", inv.InvoiceNo), zap.String("path", dest))
			return nil
		}),
	}
}
