package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/cardiosense-ai/platform/pkg/common/config"
	"github.com/cardiosense-ai/platform/pkg/common/database"
	"github.com/cardiosense-ai/platform/pkg/common/kafka"
	"github.com/cardiosense-ai/platform/pkg/common/logger"
	"github.com/cardiosense-ai/platform/pkg/observability/metrics"
	"github.com/cardiosense-ai/platform/pkg/patient"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Log.WithError(err).Error("failed to close postgres")
		}
	}()

	repo := patient.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate patient tables")
	}

	bounds, err := patient.LoadBounds(cfg.BoundsConfigPath)
	if err != nil {
		logger.Log.WithError(err).Warn("falling back to default validation bounds")
	}
	validator := patient.NewValidator(bounds)

	var cache *patient.LatestCache
	if cfg.LatestCacheEnabled {
		redisClient := database.NewRedis(cfg)
		defer redisClient.Close()
		cache = patient.NewLatestCache(redisClient, cfg.LatestCacheTTL)
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	service := patient.NewService(repo, validator, cache, producer)
	handler := patient.NewHandler(service)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	handler.Register(router)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      http.MaxBytesHandler(router, cfg.MaxRequestBody),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("patient service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start patient service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down patient service...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("patient service forced to shutdown")
	}
	logger.Log.Info("patient service stopped")
}
