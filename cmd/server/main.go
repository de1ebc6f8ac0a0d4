// @title Deal Sheet API
// @version 1.0
// @description Converts sponsorship deal letter PDFs into YuktaOne CRM import workbooks.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"dealsheet/internal/config"
	"dealsheet/internal/handler"
	"dealsheet/internal/logging"
	"dealsheet/internal/metrics"
	"dealsheet/internal/parser"
	"dealsheet/internal/parser/providers"
	"dealsheet/internal/pdftext"
	"dealsheet/internal/router"
	"dealsheet/internal/service"
	"dealsheet/internal/sheet"
	"dealsheet/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.Log)

	for _, dir := range []string{cfg.Upload.WorkDir, cfg.Upload.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	// Initialize the extraction chain
	providers.Register()
	completer, err := parser.NewChain(&cfg.Parser, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}
	dealParser := parser.NewExtractor(completer, logger)
	textExtractor := pdftext.NewExtractor(logger)
	renderer := sheet.NewRenderer(cfg.Upload.OutputDir, logger)

	// Initialize storage
	archive, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
	}

	conversionSvc := service.NewConversionService(textExtractor, dealParser, renderer, archive, m, &cfg.Upload, logger)

	// Initialize handlers
	dealH := handler.NewDealLetterHandler(conversionSvc, cfg.Upload.MaxBytes(), logger)
	healthH := handler.NewHealthHandler(cfg.Upload.OutputDir, true)

	r := router.Setup(cfg, dealH, healthH, m, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
			"providers":   len(cfg.Parser.Chain()),
			"archiving":   storage.Archiving(cfg),
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
