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

	"crime-dashboard/internal/auth"
	"crime-dashboard/internal/config"
	"crime-dashboard/internal/db"
	httphandler "crime-dashboard/internal/http"
	"crime-dashboard/internal/http/middleware"
	"crime-dashboard/internal/logger"
	"crime-dashboard/internal/metrics"
	"crime-dashboard/internal/repository"
	"crime-dashboard/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment, logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	collector := metrics.NewCollector("crime_dashboard")
	tables := db.TablesFor(cfg.DataScope)

	incidentRepo := repository.NewIncidentRepository(database, tables.Incidents)
	dailyRepo := repository.NewDailyCountRepository(database, tables.DailyCounts)
	targetRepo := repository.NewTargetRepository(database, tables.Targets)
	historyRepo := repository.NewHistoryRepository(database, tables.History)

	targetService := service.NewTargetService(targetRepo, service.NewUndoBuffer(cfg.Targets.UndoTTL), appLogger)
	importService := service.NewImportService(incidentRepo, dailyRepo, collector, appLogger)
	aggregateService := service.NewAggregateService(incidentRepo, targetService)
	historyService := service.NewHistoryService(incidentRepo, historyRepo, collector, appLogger)
	timeseriesService := service.NewTimeseriesService(dailyRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(importService, aggregateService, targetService, historyService, timeseriesService, appLogger)
	router := httphandler.NewRouter(
		handler,
		middleware.Auth(tokenParser),
		middleware.Admin(tokenParser, cfg.Auth.AdminKey),
		collector,
		cfg.Environment,
	)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", addr).Str("scope", string(cfg.DataScope)).Msg("starting crime dashboard")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("forced shutdown")
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
