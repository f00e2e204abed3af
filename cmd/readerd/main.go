package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/docreader/internal/api"
	"github.com/csheth/docreader/internal/config"
	"github.com/csheth/docreader/internal/docapi"
	"github.com/csheth/docreader/internal/logging"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	addr := flag.String("addr", "", "listen address (overrides READERD_ADDR)")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load env file:", err)
		os.Exit(1)
	}
	cfg := config.Load("readerd")
	if *addr != "" {
		cfg.Addr = *addr
	}

	log, err := logging.New(logging.Options{File: cfg.LogFile, Console: true, Debug: cfg.Debug})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var docs api.DocumentFetcher
	client, err := docapi.New(docapi.Config{
		BaseURL:  cfg.APIURL,
		Token:    cfg.Token,
		CacheDir: cfg.CacheDir,
		Logger:   log,
	})
	if err != nil {
		log.Warn("document routes disabled", zap.Error(err))
	} else {
		docs = api.Upstream{Client: client}
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewServer(docs, cfg.OutlineTTL, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("starting readerd",
		zap.String("addr", cfg.Addr),
		zap.String("api", cfg.APIURL),
		zap.Duration("outline_ttl", cfg.OutlineTTL),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
