// Package main provides the stats server binary: the JSON comparison API and
// an optional gRPC service over the same comparator.
package main

import (
	"context"
	"flag"
	"log"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/api"
	"github.com/cory-johannsen/hoopstats/internal/app"
	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/config"
	"github.com/cory-johannsen/hoopstats/internal/observability"
	"github.com/cory-johannsen/hoopstats/internal/rpc"
	"github.com/cory-johannsen/hoopstats/internal/server"
	"github.com/cory-johannsen/hoopstats/internal/source"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	warmIDs := flag.String("warm", "", "comma-separated player ids to fetch into the faster tiers at startup")
	warmConcurrency := flag.Int("warm-concurrency", 2, "parallel fetches while warming")
	healthInterval := flag.Duration("health-interval", 30*time.Second, "backend health probe interval")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "statserver")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting stats server",
		zap.String("http_addr", cfg.HTTP.Addr()),
		zap.Bool("grpc", cfg.GRPC.Enabled),
	)

	backends, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building record sources", zap.Error(err))
	}
	logger.Info("record sources ready", zap.Strings("tiers", backends.Records.Tiers()))

	if *warmIDs != "" {
		ids, err := parseIDs(*warmIDs)
		if err != nil {
			logger.Fatal("parsing -warm", zap.Error(err))
		}
		warmStart := time.Now()
		n, err := source.Warm(ctx, backends.Records, ids, *warmConcurrency, logger)
		logger.Info("warm complete",
			zap.Int("requested", len(ids)),
			zap.Int("warmed", n),
			zap.NamedError("failures", err),
			zap.Duration("elapsed", time.Since(warmStart)),
		)
	}

	comparator := compare.NewComparator(backends.Records, logger)

	checks := make([]api.HealthCheck, 0, len(backends.Probes))
	for _, p := range backends.Probes {
		checks = append(checks, api.HealthCheck{Name: p.Name, Check: p.Check})
	}
	handler := api.NewHandler(comparator, backends.Records, backends.Searcher, logger, checks...)

	lifecycle := server.NewLifecycle(logger)
	// Backends are registered first so they close after the listeners drain.
	for _, p := range backends.Probes {
		lifecycle.Add(p.Name, server.HealthLoop(p.Name, *healthInterval, p.Check, p.Close, logger))
	}
	lifecycle.Add("http", server.HTTPService(cfg.HTTP.Addr(), api.NewRouter(handler, cfg.HTTP, logger), logger))

	if cfg.GRPC.Enabled {
		grpcServer := rpc.NewGRPCServer(rpc.NewServer(comparator, backends.Records, logger), logger)
		lifecycle.Add("grpc", server.GRPCService(cfg.GRPC.Addr(), grpcServer, logger))
	}

	logger.Info("stats server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
