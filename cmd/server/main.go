package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"baggage-checkin-service/internal/domain/repository"
	"baggage-checkin-service/internal/infrastructure/config"
	"baggage-checkin-service/internal/infrastructure/persistence"
	"baggage-checkin-service/internal/interface/httpapi"
	gormRepo "baggage-checkin-service/internal/interface/repository"
	"baggage-checkin-service/internal/usecase"
	"baggage-checkin-service/pkg/logger"
	"baggage-checkin-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Baggage Check-in Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply schema migrations
	if cfg.RunMigrations {
		version, err := persistence.Migrate(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("Failed to apply migrations", "error", err)
		}
		log.Info("Migrations applied", "version", version)
	}

	// Set up PostgreSQL connection
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(ctx, cfg.PostgresDSN, persistence.PostgresOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up the audit journal; the service runs without it when no DSN is configured
	var (
		mongoClient *mongo.Client
		auditRepo   repository.AuditRepository
	)
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		mongoClient, err = persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		auditRepo, err = gormRepo.NewMongoAuditRepository(ctx, persistence.GetDatabase(mongoClient, cfg.MongoDB))
		if err != nil {
			log.Fatal("Failed to prepare audit journal", "error", err)
		}
	} else {
		log.Warn("MONGODB_DSN not set, audit journal disabled")
	}

	// Set up repositories
	baggageRepo := gormRepo.NewGormBaggageRepository(gormDB)
	reservationRepo := gormRepo.NewGormReservationRepository(gormDB)
	checkInRepo := gormRepo.NewGormCheckInRepository(gormDB)

	// Set up use cases
	m := metrics.NewMetrics(cfg.MetricsNamespace)
	baggageManager := usecase.NewBaggageManager(baggageRepo, auditRepo, cfg.Fares, m, log, cfg.RequestTimeout)
	gate := usecase.NewReadinessGate(baggageManager)
	checkInFlow := usecase.NewCheckInFlow(reservationRepo, checkInRepo, auditRepo, gate, m, log, cfg.RequestTimeout)

	// Set up HTTP server
	handler := httpapi.NewHandler(baggageManager, checkInFlow, log)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.NewRouter(handler, m, log, promhttp.Handler()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("PostgreSQL close error", "error", err)
		}
	}

	// Disconnect from MongoDB
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Baggage Check-in Service stopped")
}
