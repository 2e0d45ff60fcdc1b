package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"reviewd/internal/backend/httpapi"
	"reviewd/internal/config"
	"reviewd/internal/handler"
	"reviewd/internal/poll"
	"reviewd/internal/repository/postgres"
	"reviewd/internal/review"
	"reviewd/internal/router"
	"reviewd/internal/service"
	s3storage "reviewd/internal/storage/s3"
	"reviewd/internal/urlcanon"
)

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

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	jobRepo := postgres.NewReviewJobRepo(db)
	synonymRepo := postgres.NewStatusSynonymRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Upstream backend client
	backend := httpapi.NewClient(&cfg.Backend)

	// Synonym table: compiled-in defaults overlaid with operator-managed rows.
	// A load failure is not fatal; the defaults cover the known vocabularies.
	synonyms := review.DefaultSynonyms()
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 5*time.Second)
	rows, err := synonymRepo.ListAll(loadCtx)
	loadCancel()
	if err != nil {
		log.Printf("config: status synonym load failed, using defaults: %v", err)
	} else {
		overlay := make(review.SynonymTable, len(rows))
		for _, row := range rows {
			overlay[row.Raw] = row.Status
		}
		synonyms.Merge(overlay)
	}

	canon := urlcanon.New(&cfg.Canon)
	normalizer := review.NewNormalizer(canon, synonyms)

	// Initialize services
	reviewSvc := service.NewReviewService(jobRepo, backend, normalizer, poll.Config{
		Interval:        cfg.Poll.Interval(),
		EmptyRetryDelay: cfg.Poll.EmptyRetryDelay(),
		MaxEmptyRetries: cfg.Poll.MaxEmptyRetries,
	})
	reportSvc := service.NewReportService(backend, s3Client, &cfg.S3)

	// Initialize handlers
	reviewH := handler.NewReviewHandler(reviewSvc)
	reportH := handler.NewReportHandler(reviewSvc, reportSvc)
	healthH := handler.NewHealthHandler(db, reviewSvc)

	// Setup router
	r := router.Setup(cfg, reviewH, reportH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Print("Shutting down")
	reviewSvc.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
