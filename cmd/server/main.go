package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"taskfollowup/internal/auth"
	"taskfollowup/internal/config"
	"taskfollowup/internal/database"
	"taskfollowup/internal/handlers"
	"taskfollowup/internal/logger"
	"taskfollowup/internal/repository"
	"taskfollowup/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	history := repository.NewHistoryRepository(db)
	directory := repository.NewDirectoryRepository(db)

	store, err := services.NewObjectStore(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}

	dispatcher := services.NewDispatcher(services.NewEmailService(cfg.Mail, cfg.Export), cfg.Mail, log.WithField("component", "mail"))
	dispatcher.Start()

	calculator := services.NewProgressCalculator(history, directory)
	exporter := services.NewExportService(history, directory, store, dispatcher, afero.NewOsFs(), cfg.Export, log.WithField("component", "export"))
	transfer := services.NewTransferService(history, directory, calculator, log.WithField("component", "transfer"))

	worker := services.NewProgressWorker(history, calculator, log.WithField("component", "progress"), cfg.CronSpecProgressRun)
	if err := worker.Start(); err != nil {
		log.Fatalf("Failed to start progress worker: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger(log))

	// Configure trusted proxies
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		log.Fatalf("Failed to set trusted proxies: %v", err)
	}

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", handlers.HealthHandler)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware(cfg.JWTSecret))
	handlers.NewHistoryHandler(history, exporter, transfer, log.WithField("component", "http")).RegisterRoutes(protected)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP shutdown: %v", err)
	}
	worker.Stop()
	exporter.Wait()
	if err := dispatcher.Stop(ctx); err != nil {
		log.Errorf("Mail dispatcher shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
}
