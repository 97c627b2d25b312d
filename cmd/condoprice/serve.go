package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/randytsao24/condoprice/internal/api"
	"github.com/randytsao24/condoprice/internal/api/handlers"
	"github.com/randytsao24/condoprice/internal/cache"
	"github.com/randytsao24/condoprice/internal/config"
	"github.com/randytsao24/condoprice/internal/estimate"
	"github.com/randytsao24/condoprice/internal/features"
	"github.com/randytsao24/condoprice/internal/location"
	"github.com/randytsao24/condoprice/internal/model"
	"github.com/randytsao24/condoprice/internal/models"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the estimator web form and JSON API",
		Long: `Start the HTTP server. The model artifact is loaded and checked against
the feature schema before the listener opens; any problem aborts startup.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()
	if path, _ := cmd.Flags().GetString(modelFlag); path != "" {
		cfg.ModelPath = path
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	pipeline, err := model.Load(cfg.ModelPath, features.V4())
	if err != nil {
		return err
	}
	logger.Info("model loaded",
		"name", pipeline.Name(),
		"version", pipeline.Version(),
		"schema_version", pipeline.SchemaVersion(),
		"path", cfg.ModelPath,
	)

	est, err := estimate.NewService(pipeline, logger)
	if err != nil {
		return err
	}

	var (
		stations     handlers.StationFinder
		districts    handlers.DistrictLocator
		stationCache *cache.Cache[[]models.StationWithDistance]
	)
	if cfg.HasStations() {
		svc := location.NewStationService()
		if err := svc.Load(cfg.StationsPath); err != nil {
			return fmt.Errorf("loading stations: %w", err)
		}
		stations = svc
		stationCache = cache.New[[]models.StationWithDistance](cfg.CacheTTL)
		defer stationCache.Close()
		logger.Info("stations loaded", "stops", svc.Count(), "stations", svc.ParentStationCount())
	}
	if cfg.HasDistricts() {
		svc := location.NewDistrictService()
		if err := svc.Load(cfg.DistrictsPath); err != nil {
			return fmt.Errorf("loading districts: %w", err)
		}
		for _, name := range features.KnownDistricts() {
			if _, ok := svc.Get(name); !ok {
				logger.Warn("district has no centroid", "district", name)
			}
		}
		districts = svc
		logger.Info("districts loaded", "districts", svc.Count())
	}

	router, err := api.NewRouter(cfg, est, stations, districts, stationCache, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "🏙  condoprice server starting on port %s\n", cfg.Port)
		fmt.Fprintf(out, "📍 Environment: %s\n", cfg.Env)
		fmt.Fprintf(out, "🔗 http://localhost:%s\n", cfg.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
