package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/celerix-dev/cadastro/internal/api"
	"github.com/celerix-dev/cadastro/internal/config"
	"github.com/celerix-dev/cadastro/internal/engine"
	"github.com/celerix-dev/cadastro/internal/logger"
	"github.com/celerix-dev/cadastro/internal/metrics"
	"github.com/celerix-dev/cadastro/internal/server"
	"github.com/celerix-dev/cadastro/internal/validator"
	"github.com/celerix-dev/cadastro/pkg/schema"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info().Msg("Starting cadastro daemon...")

	// 1. Persistence (optional)
	var persister *engine.Persistence
	var initialData map[string]schema.Batch
	if cfg.Server.Persist {
		persister, err = engine.NewPersistence(cfg.Server.DataDir, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize persistence")
		}
		initialData, err = persister.LoadAll()
		if err != nil {
			log.Warn().Err(err).Msg("could not load existing batches")
		}
	}

	// 2. Store and metrics
	store := engine.NewMemStore(initialData, persister, log)
	log.Info().Int("batches", len(initialData)).Msg("store started")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 3. HTTP API
	gin.SetMode(gin.ReleaseMode)
	h := &api.Handler{
		Store:      store,
		Validator:  validator.New(cfg.Validator.Options()),
		Metrics:    m,
		Log:        log,
		Workers:    cfg.Validator.Workers,
		Comma:      cfg.Input.Comma(),
		SkipHeader: cfg.Input.SkipHeader,
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(h, log, server.Options{MaxBodyBytes: cfg.Server.MaxBodyBytes, Gatherer: reg}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// 4. Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutdown signal received, finalizing disk writes")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown")
	}
	store.Wait()
	log.Info().Msg("persistence complete, exiting")
}
