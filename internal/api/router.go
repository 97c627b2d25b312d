package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/randytsao24/condoprice/internal/api/handlers"
	"github.com/randytsao24/condoprice/internal/cache"
	"github.com/randytsao24/condoprice/internal/config"
	"github.com/randytsao24/condoprice/internal/features"
	"github.com/randytsao24/condoprice/internal/models"
	"github.com/randytsao24/condoprice/web"
)

// NewRouter creates and configures the HTTP router with all routes and middleware.
// stations, districts and stationCache may be nil when their data is not configured.
func NewRouter(
	cfg *config.Config,
	est handlers.Estimator,
	stations handlers.StationFinder,
	districts handlers.DistrictLocator,
	stationCache *cache.Cache[[]models.StationWithDistance],
	logger *slog.Logger,
) (http.Handler, error) {
	mux := http.NewServeMux()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(est.ModelVersion())
	rootHandler := handlers.NewRootHandler()
	schemaHandler := handlers.NewSchemaHandler(features.V4())
	estimateHandler := handlers.NewEstimateHandler(est, logger)
	exportHandler := handlers.NewExportHandler(est, logger)
	stationHandler := handlers.NewStationHandler(stations, districts, stationCache)
	formHandler, err := handlers.NewFormHandler(est, logger)
	if err != nil {
		return nil, fmt.Errorf("form handler: %w", err)
	}

	// Estimator page
	mux.HandleFunc("GET /{$}", formHandler.Index)
	mux.HandleFunc("POST /estimate", formHandler.Submit)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	// Core routes
	mux.HandleFunc("GET /api", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Schema routes
	mux.HandleFunc("GET /api/schema", schemaHandler.Schema)
	mux.HandleFunc("GET /api/districts", schemaHandler.Districts)

	// Estimate routes
	mux.HandleFunc("POST /api/estimate", estimateHandler.Estimate)
	mux.HandleFunc("POST /api/record.xlsx", exportHandler.RecordXLSX)

	// Station routes
	mux.HandleFunc("GET /api/stations/nearest", stationHandler.Nearest)
	mux.HandleFunc("GET /api/districts/{district}/stations", stationHandler.NearDistrict)

	mux.HandleFunc("/", rootHandler.NotFound)

	// Apply middleware stack
	handler := Chain(mux,
		RequestID,
		Recovery,
		Logging,
		CORS,
		Timeout(cfg.HTTPTimeout),
	)

	return handler, nil
}
