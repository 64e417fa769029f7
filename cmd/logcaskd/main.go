package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/logcask/logcask/core"
	"github.com/logcask/logcask/internal"
	"github.com/logcask/logcask/internal/metrics"
	"github.com/logcask/logcask/internal/server"
	"github.com/logcask/logcask/internal/utils"
)

func main() {
	opts := utils.HandleCLIInputs()

	cfg, err := internal.LoadConfig(opts.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.DataFile != "" {
		cfg.DataFile = opts.DataFile
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	storeMetrics := metrics.NewStoreMetrics()

	store := &core.Store{
		DataFilePath: cfg.DataFile,
		MaxKeySize:   cfg.MaxKeySize,
		MaxValueSize: cfg.MaxValueSize,
		Metrics:      storeMetrics,
	}
	store.WithLogger(logger)

	if err := store.Start(); err != nil {
		logger.Fatal("failed to start store", zap.Error(err))
	}
	defer func() {
		if err := store.Stop(); err != nil {
			logger.Error("failed to stop store", zap.Error(err))
		}
	}()

	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(storeMetrics.PrometheusCollectors()...)

		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	if opts.Stdio {
		// Serve exactly one session on stdin/stdout; logs go to stderr so
		// the protocol stream stays clean.
		if err := store.ServeSession(os.Stdin, os.Stdout); err != nil {
			logger.Fatal("session failed", zap.Error(err))
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := server.Start(ctx, logger, cfg.Host, cfg.Port, func(conn net.Conn) {
			defer conn.Close()
			if err := store.ServeSession(conn, conn); err != nil {
				logger.Debug("session ended", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("server stopped abruptly", zap.Error(err))
		}
	}()

	utils.ListenForProcessInterruptOrKill()
	logger.Info("shutting down")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
