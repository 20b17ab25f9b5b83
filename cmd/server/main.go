package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tastylog/backend/config"
	httpDelivery "github.com/tastylog/backend/internal/delivery/http"
	"github.com/tastylog/backend/internal/infrastructure/appwrite"
	"github.com/tastylog/backend/internal/infrastructure/cache"
	"github.com/tastylog/backend/internal/usecase"
	"github.com/tastylog/backend/internal/worker"
)

const version = "1.0.0"

func run(ctx context.Context, cmd *cli.Command) error {
	// Load configuration
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting TastyLog Backend v%s", version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	store := appwrite.NewClient(appwrite.Config{
		Endpoint:          cfg.Appwrite.Endpoint,
		ProjectID:         cfg.Appwrite.ProjectID,
		APIKey:            cfg.Appwrite.APIKey,
		DatabaseID:        cfg.Appwrite.DatabaseID,
		Timeout:           cfg.Appwrite.Timeout,
		RequestsPerSecond: cfg.Appwrite.RequestsPerSecond,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		store.SetDebug(true)
		log.Printf("Appwrite client debug mode enabled")
	}
	if cfg.Appwrite.APIKey == "" {
		log.Printf("Appwrite API key not set: requests act only under user sessions")
	}
	log.Printf("Appwrite project %s at %s (database %s)", cfg.Appwrite.ProjectID, cfg.Appwrite.Endpoint, cfg.Appwrite.DatabaseID)

	recordCache := cache.NewMemoryCache(cfg.Cache.TTL)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	executor := worker.NewExecutor(cfg.Executor.QueueSize)
	defer executor.Stop()

	// Initialize usecase layer
	auth := usecase.NewAuthService(store, cfg.Appwrite.UsersCollectionID)
	media := usecase.NewMediaService(store, auth, cfg.Appwrite.BucketID)
	foods := usecase.NewFoodRepository(store, recordCache, executor, cfg.Appwrite.FoodCollectionID)
	placer := usecase.NewPlacer(usecase.GeoPoint{Lat: cfg.Map.DefaultLat, Lng: cfg.Map.DefaultLng}, cfg.Map.APIKey)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(auth, media, foods, placer)
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// Expire idle cache entries
	g.Go(func() error {
		recordCache.Run(gCtx, cfg.Cache.CleanupInterval)
		return nil
	})

	// Start HTTP server
	g.Go(func() error {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			log.Printf("Received %s, shutting down", sig)
		case <-gCtx.Done():
			log.Printf("Context cancelled, shutting down")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		// Stops the cache janitor
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("Server stopped")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "tastylog",
		Usage:   "Food diary backend: records, statistics and map markers on top of Appwrite",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to an optional YAML config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("TASTYLOG_CONFIG_FILE"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
