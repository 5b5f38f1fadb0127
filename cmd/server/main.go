package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"platefinder/classifier"
	"platefinder/config"
	"platefinder/database"
	"platefinder/handlers"
	"platefinder/logging"
	"platefinder/metrics"
	"platefinder/worker"
)

// main initializes the server, database connection, and background workers.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}
	store := database.NewStore(db)

	if cfg.Geocoding.APIKey != "" {
		worker.New(store, worker.NewGeocoder(cfg.Geocoding.URL, cfg.Geocoding.APIKey)).Start(ctx)
	} else {
		log.Warn("GOOGLE_MAPS_API_KEY not set, skipping geocoding")
	}

	metrics.Register()

	mux := http.NewServeMux()
	handlers.Register(mux, store, classifier.NewClient(cfg.Classifier.URL))
	mux.Handle("GET /metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: c.Handler(mux)}
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	log.Infof("server starting on port %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server failed")
	}
}
