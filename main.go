package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meatStreakAPI/handlers"
	"meatStreakAPI/internal/eventlog"
	"meatStreakAPI/internal/store"
	"meatStreakAPI/middleware"
	"meatStreakAPI/services"
)

// defaultStartDate is the day tracking began for the original dataset.
// Override with TRACKER_START_DATE.
const defaultStartDate = "2025-02-10"

var (
	dbPool         *pgxpool.Pool
	trackerService *services.TrackerService
	storageBackend string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	startDate, err := time.ParseInLocation(eventlog.ISODate, envOr("TRACKER_START_DATE", defaultStartDate), time.Local)
	if err != nil {
		log.Fatal("Invalid TRACKER_START_DATE, expected YYYY-MM-DD:", err)
	}

	trackerStore, err := buildStore()
	if err != nil {
		log.Fatal("Failed to initialize storage backend:", err)
	}

	trackerService = services.NewTrackerService(trackerStore, startDate)
	middleware.InitPrometheus()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// buildStore selects the persistence backend: a local CSV directory by
// default, a Google Drive folder of the same CSVs, or Postgres.
func buildStore() (store.Store, error) {
	storageBackend = envOr("STORAGE_BACKEND", "file")

	switch storageBackend {
	case "file":
		return store.NewFileStore(envOr("DATA_DIR", "./data"))

	case "drive":
		credentials := os.Getenv("DRIVE_CREDENTIALS_FILE")
		folderID := os.Getenv("DRIVE_FOLDER_ID")
		if credentials == "" || folderID == "" {
			return nil, fmt.Errorf("DRIVE_CREDENTIALS_FILE and DRIVE_FOLDER_ID must be set for the drive backend")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return store.NewDriveStore(ctx, credentials, folderID)

	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set for the postgres backend")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}

		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		pgStore := store.NewPostgresStore(dbPool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		log.Println("Successfully connected to Postgres")
		return pgStore, nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (expected file, drive or postgres)", storageBackend)
	}
}

func main() {
	defer func() {
		if dbPool != nil {
			log.Println("Closing database connection pool...")
			dbPool.Close()
		}
	}()

	trackerHandler := handlers.NewTrackerHandler(trackerService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if dbPool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := dbPool.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "meatStreak-api", "backend": "%s"}`, storageBackend)
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/dashboard-webpage", trackerHandler.DashboardPage).Methods("GET")

	// -------------------------------------------------------------------------
	// TRACKER ROUTES (REQUIRE X-Username HEADER)
	// -------------------------------------------------------------------------
	tracker := api.PathPrefix("/tracker").Subrouter()
	tracker.Use(middleware.UsernameMiddleware)

	tracker.HandleFunc("/log", trackerHandler.LogDay).Methods("POST")
	tracker.HandleFunc("/log", trackerHandler.RemoveDay).Methods("DELETE")
	tracker.HandleFunc("/bulk", trackerHandler.BulkUpdate).Methods("POST")
	tracker.HandleFunc("/reset", trackerHandler.Reset).Methods("POST")
	tracker.HandleFunc("/dashboard", trackerHandler.GetDashboard).Methods("GET")
	tracker.HandleFunc("/stats", trackerHandler.GetStats).Methods("GET")
	tracker.HandleFunc("/calendar", trackerHandler.GetCalendar).Methods("GET")
	tracker.HandleFunc("/export", trackerHandler.ExportCSV).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "X-Username"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
