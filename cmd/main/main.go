package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-matcher/internal/config"
	recSvc "catalog-matcher/internal/reconcile/service"
	serverhttp "catalog-matcher/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	vocab, err := cfg.Vocabulary()
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.VocabularyFile).Msg("vocabulary")
	}
	matcher := recSvc.NewMatcher(vocab)

	r := serverhttp.NewRouter(cfg, matcher, logger)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().
		Str("addr", cfg.Addr()).
		Str("vocabulary", cfg.VocabularyFile).
		Int("workers", cfg.Workers).
		Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
