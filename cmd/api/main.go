//	@title			Melodia API
//	@version		1.0
//	@description	Song publishing backend: upload an audio file and a cover image, get a song.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/melodia/service/internal/config"
	"github.com/melodia/service/internal/db"
	"github.com/melodia/service/internal/metrics"
	appMiddleware "github.com/melodia/service/internal/middleware"
	"github.com/melodia/service/internal/song"
	"github.com/melodia/service/internal/storage"

	_ "github.com/melodia/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	songStore, closeStore, err := openSongStore(ctx, cfg)
	if err != nil {
		log.Fatalf("song store init failed: %v", err)
	}
	defer closeStore()

	objects, err := openObjectStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	promMetrics := metrics.NewProm("melodia")

	// Wire dependencies: repository → service → handler
	songSvc := song.NewService(songStore, objects,
		song.WithMetrics(promMetrics),
		song.WithStepTimeout(cfg.Publish.StepTimeout),
	)
	songHandler := song.NewHandler(songSvc, song.Limits{
		MaxAudioBytes: cfg.Publish.MaxAudioBytes,
		MaxImageBytes: cfg.Publish.MaxImageBytes,
	})

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promMetrics.Handler())

	// Swagger UI, available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	requireAuth := appMiddleware.RequireAuth(cfg.JWTSecret)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/songs", func(r chi.Router) {
			r.Get("/", songHandler.ListRecent)
			r.Get("/{id}", songHandler.Get)
			r.With(requireAuth).Post("/", songHandler.Publish)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/songs", songHandler.ListMine)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  2 * time.Minute, // uploads carry up to MAX_AUDIO_MB + MAX_IMAGE_MB
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, storage=%s)", cfg.Port, cfg.AppEnv, cfg.Storage.Driver)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	// In-flight publishes finish their sequence (including compensation) before exit.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

// openSongStore returns the Postgres repository, or an in-memory store when no
// DATABASE_URL is configured.
func openSongStore(ctx context.Context, cfg *config.Config) (song.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			return nil, nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		log.Println("song store: using in-memory store (DATABASE_URL missing)")
		return song.NewMemoryStore(), func() {}, nil
	}

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		return nil, nil, fmt.Errorf("database migration failed: %w", err)
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	return song.NewRepository(pool), pool.Close, nil
}

func openObjectStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	buckets := storage.Buckets{
		storage.NamespaceAudio: cfg.AudioBucket,
		storage.NamespaceImage: cfg.ImageBucket,
	}

	switch cfg.Driver {
	case config.DriverMinio:
		return storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:   cfg.Endpoint,
			AccessKey:  cfg.AccessKey,
			SecretKey:  cfg.SecretKey,
			UseSSL:     cfg.UseSSL,
			Buckets:    buckets,
			PublicBase: cfg.PublicBase,
		})
	case config.DriverS3:
		endpoint := cfg.Endpoint
		if endpoint != "" && !strings.Contains(endpoint, "://") {
			scheme := "http://"
			if cfg.UseSSL {
				scheme = "https://"
			}
			endpoint = scheme + endpoint
		}
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:         cfg.Region,
			Endpoint:       endpoint,
			AccessKey:      cfg.AccessKey,
			SecretKey:      cfg.SecretKey,
			ForcePathStyle: cfg.ForcePathStyle,
			Buckets:        buckets,
			PublicBase:     cfg.PublicBase,
		})
	case config.DriverMemory:
		log.Println("object storage: using in-memory store")
		return storage.NewMemoryStorage(buckets), nil
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Driver)
}
