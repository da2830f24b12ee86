package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/price-tracker/app/bootstrap"
	"github.com/price-tracker/app/config"
	"github.com/price-tracker/app/controllers"
	"github.com/price-tracker/routes"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Cannot load config: ", err)
	}

	// 2. Logger
	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		log.Fatal("Cannot initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting Price Tracker Service",
		zap.String("env", cfg.App.Env),
		zap.String("store", cfg.Store.Driver))

	// 3. Store, index and services
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	app, err := bootstrap.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer app.Close()

	// 4. Controllers and routes
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, routes.Controllers{
		Products:  controllers.NewProductController(app.Products, app.Confirmations, logger),
		Merchants: controllers.NewMerchantController(app.Merchants, logger),
		Users:     controllers.NewUserController(app.Confirmations, app.Preferences, logger),
		Health:    controllers.NewHealthController(app.Store, cfg.Store.Driver, logger),
	}, logger)

	// 5. Serve until SIGINT/SIGTERM
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Price Tracker Service listening", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
