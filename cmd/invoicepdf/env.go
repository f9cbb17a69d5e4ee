package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"pharmabill/m/domain"
	"pharmabill/m/internal/config"
	"pharmabill/m/internal/database"
	"pharmabill/m/internal/logger"
	"pharmabill/m/internal/migrations"
	"pharmabill/m/internal/render"
	"pharmabill/m/internal/store"
	"pharmabill/m/internal/tax"
)

// env holds what a command needs. The database is opened on first use.
type env struct {
	cfg    config.Config
	log    *zap.Logger
	db     *sqlx.DB
	engine *render.Engine
}

func newEnv(c *cli.Context) (*env, error) {
	cfg := config.Load()
	if v := c.String("db-driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := c.String("dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if c.Bool("verbose") {
		cfg.Logger.Level = "debug"
	}
	cfg.Logger.Encoding = "console"

	log, err := logger.New(cfg.Logger, false)
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		log.Warn("config", zap.String("warning", w))
	}

	engine := render.NewEngine(log.Named("render"), render.Options{
		CopyLabel:    cfg.Render.CopyLabel,
		MaxLineItems: cfg.Render.MaxLineItems,
	})
	return &env{cfg: cfg, log: log, engine: engine}, nil
}

func (e *env) database() (*sqlx.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := database.Connect(e.cfg.Database.Driver, e.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
	_ = e.log.Sync()
}

// Flags shared by commands that render a single invoice.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "invoice", Aliases: []string{"i"}, Usage: "invoice number to load from the database"},
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "invoice JSON file instead of the database"},
		&cli.StringFlag{Name: "profile", Usage: "company profile JSON file instead of the database"},
		&cli.BoolFlag{Name: "reprice", Usage: "recompute line amounts from rate, quantity, discount and GST"},
		&cli.BoolFlag{Name: "interstate", Usage: "with --reprice, book GST as IGST"},
		&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "standard, modern, thermal or authentic"},
		&cli.StringFlag{Name: "copy", Usage: "copy designator printed in the header"},
	}
}

// loadInvoice reads the invoice named by --invoice or --file.
func (e *env) loadInvoice(c *cli.Context) (*domain.Invoice, error) {
	var inv *domain.Invoice
	switch {
	case c.String("file") != "":
		inv = &domain.Invoice{}
		if err := readJSON(c.String("file"), inv); err != nil {
			return nil, err
		}
	case c.String("invoice") != "":
		db, err := e.database()
		if err != nil {
			return nil, err
		}
		if inv, err = store.NewInvoices(db).Get(c.Context, c.String("invoice")); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("one of --invoice or --file is required")
	}

	if c.Bool("reprice") {
		for i := range inv.Items {
			tax.Price(&inv.Items[i], c.Bool("interstate"))
		}
		tax.Apply(inv)
	}
	return inv, nil
}

// loadProfile reads --profile or the stored profile.
func (e *env) loadProfile(c *cli.Context) (*domain.CompanyProfile, error) {
	if path := c.String("profile"); path != "" {
		var p domain.CompanyProfile
		if err := readJSON(path, &p); err != nil {
			return nil, err
		}
		return &p, nil
	}
	db, err := e.database()
	if err != nil {
		return nil, err
	}
	p, err := store.NewProfiles(db).Get(c.Context)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: run `invoicepdf seed` or pass --profile", render.ErrMissingProfile)
	}
	return p, err
}

// template resolves --template against the profile default.
func (e *env) template(c *cli.Context, profile *domain.CompanyProfile) domain.TemplateID {
	requested := domain.TemplateID(c.String("template"))
	id := render.Resolve(requested, profile.InvoiceTemplate)
	if requested != "" && id != requested {
		e.log.Warn("unknown template, falling back", zap.String("requested", string(requested)), zap.String("template", string(id)))
	}
	return id
}

func readJSON(path string, dest interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
