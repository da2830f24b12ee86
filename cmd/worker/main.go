package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/price-tracker/app/bootstrap"
	"github.com/price-tracker/app/config"
)

// The worker periodically recomputes derived price fields so trends keep
// moving as prices age out of the 30-day window even when nobody writes.
func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	once := flag.Bool("once", false, "run a single pass and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Cannot load config: ", err)
	}
	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		log.Fatal("Cannot initialize logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer app.Close()

	logger.Info("Starting Price Tracker Worker", zap.Duration("interval", cfg.Worker.Interval))

	runPass(ctx, app, logger)
	if *once {
		return
	}

	ticker := time.NewTicker(cfg.Worker.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker exited")
			return
		case <-ticker.C:
			runPass(ctx, app, logger)
		}
	}
}

func runPass(ctx context.Context, app *bootstrap.App, logger *zap.Logger) {
	start := time.Now()
	n, err := app.Products.RecomputeAll(ctx)
	if err != nil {
		logger.Error("Recompute pass failed", zap.Error(err))
		return
	}
	logger.Info("Recompute pass finished",
		zap.Int("updated", n),
		zap.Duration("took", time.Since(start)))
}
