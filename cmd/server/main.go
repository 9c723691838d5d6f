package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stratus-efb/chartvault/internal/api"
	"stratus-efb/chartvault/internal/auth"
	"stratus-efb/chartvault/internal/cache"
	"stratus-efb/chartvault/internal/db"
	"stratus-efb/chartvault/internal/logging"
	"stratus-efb/chartvault/internal/providers"
	"stratus-efb/chartvault/internal/routes"
	"stratus-efb/chartvault/internal/workers"

	metricspkg "stratus-efb/chartvault/internal/metrics"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	dataDir := os.Getenv("CHARTVAULT_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	catalogURL := os.Getenv("CHARTVAULT_CATALOG_URL")
	if catalogURL == "" {
		log.Fatal("CHARTVAULT_CATALOG_URL is required")
	}
	apiKey := os.Getenv("CHARTVAULT_API_KEY")
	authURL := os.Getenv("CHARTVAULT_AUTH_URL")

	logging.Info("chartvault starting up",
		"environment", appEnv,
		"data_dir", dataDir,
		"catalog_url", catalogURL,
	)

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logging.Fatal("Failed to create data directory", "error", err.Error())
	}

	// Metadata store (GORM writer + sqlx diagnostics handle)
	dbPath := filepath.Join(dataDir, "chartvault.db")
	orm, err := db.InitSQLiteORM(dbPath)
	if err != nil {
		logging.Fatal("Failed to open metadata store", "error", err.Error())
	}
	sqlxDB, err := db.InitSQLiteX(dbPath)
	if err != nil {
		logging.Fatal("Failed to open diagnostics handle", "error", err.Error())
	}
	logging.Info("Metadata store ready", "path", dbPath)

	// Content cache
	blobs, err := cache.NewBlobCache(filepath.Join(dataDir, "cache"))
	if err != nil {
		logging.Fatal("Failed to initialize content cache", "error", err.Error())
	}

	// Catalog client. With an auth endpoint configured the bearer token
	// is a refreshed JWT; otherwise the API key is sent as-is.
	var tokens auth.TokenSource
	if authURL != "" {
		tokens = auth.NewBearerTokenSource(auth.NewHTTPTokenRefresher(authURL, apiKey))
	} else {
		tokens = auth.NewStaticTokenSource(apiKey)
	}
	catalog := providers.NewCatalogProvider(catalogURL, tokens)

	metricsReg := metricspkg.NewMetricsRegistry()
	deps := api.InitDependencies(orm, sqlxDB, blobs, catalog, metricsReg)

	// Periodic version check
	checkInterval := 6 * time.Hour
	if v := os.Getenv("CHARTVAULT_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			checkInterval = d
		}
	}
	go workers.StartSyncScheduler(context.Background(), deps.Services.Sync, checkInterval)

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, upSince)

	// Metrics endpoint lives outside the Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	port := os.Getenv("CHARTVAULT_PORT")
	if port == "" {
		port = "8320"
	}

	logging.Info("Server starting", "port", port, "environment", appEnv)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}
