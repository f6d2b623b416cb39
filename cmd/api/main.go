package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payslip-engine/internal/config"
	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	appHTTP "github.com/cmlabs-hris/payslip-engine/internal/handler/http"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/statutory"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/storage"
	"github.com/cmlabs-hris/payslip-engine/internal/repository/memory"
	"github.com/cmlabs-hris/payslip-engine/internal/repository/postgresql"
	payslipService "github.com/cmlabs-hris/payslip-engine/internal/service/payslip"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App.Name, cfg.App.Version, cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules := statutory.Default()
	if cfg.Payroll.RulesFile != "" {
		rules, err = statutory.Load(cfg.Payroll.RulesFile)
		if err != nil {
			return fmt.Errorf("loading statutory rules: %w", err)
		}
	}
	logger.Info("Statutory rules loaded", "version", rules.Version, "file", cfg.Payroll.RulesFile)

	var payslipRepo payslip.PayslipRepository
	switch cfg.Database.Driver {
	case config.DatabaseDriverMemory:
		logger.Warn("Using in-memory payslip store; data is lost on restart")
		payslipRepo = memory.NewPayslipRepository()
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			return err
		}
		payslipRepo = postgresql.NewPayslipRepository(db)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	tmpl := payslip.DefaultTemplate()
	tmpl.CompanyName = cfg.Payroll.CompanyName
	tmpl.CompanyAddress = cfg.Payroll.CompanyAddress
	tmpl.FooterNote = cfg.Payroll.FooterNote

	calculator := payslipService.NewCalculator(rules, logger, payslipService.WithBulkWorkers(cfg.Payroll.BulkWorkers))
	service := payslipService.NewPayslipService(calculator, payslipRepo, fileStorage, tmpl, logger)

	router := appHTTP.NewRouter(
		logger,
		cfg.App.AllowedOrigins,
		appHTTP.NewPayslipHandler(service),
		appHTTP.NewStatutoryHandler(calculator.Rules()),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
