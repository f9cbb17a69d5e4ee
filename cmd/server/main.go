package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pharmabill/m/internal/api"
	"pharmabill/m/internal/archive"
	"pharmabill/m/internal/config"
	"pharmabill/m/internal/database"
	"pharmabill/m/internal/logger"
	"pharmabill/m/internal/migrations"
	"pharmabill/m/internal/render"
	"pharmabill/m/internal/reprint"
	"pharmabill/m/internal/seed"
	"pharmabill/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	zlog, err := logger.New(cfg.Logger, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()
	for _, w := range cfg.Warnings() {
		zlog.Warn("config", zap.String("warning", w))
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		zlog.Fatal("migrations", zap.Error(err))
	}
	profiles, invoices := store.NewProfiles(db), store.NewInvoices(db)
	if _, err := seed.EnsureProfile(context.Background(), profiles, zlog); err != nil {
		zlog.Fatal("seed profile", zap.Error(err))
	}

	sink, err := archive.New(cfg.Archive)
	if err != nil {
		zlog.Fatal("archive", zap.Error(err))
	}
	engine := render.NewEngine(zlog.Named("render"), render.Options{
		CopyLabel:    cfg.Render.CopyLabel,
		MaxLineItems: cfg.Render.MaxLineItems,
	})
	reprinter := reprint.New(invoices, profiles, engine, sink, cfg.Render.Workers, zlog.Named("reprint"))
	handler := api.New(db, engine, reprinter, zlog.Named("api"), cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("billing server starting", zap.String("addr", srv.Addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}
