package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nickprotop/NeighborTools-sub004/internal/adapters/cache"
	"github.com/nickprotop/NeighborTools-sub004/internal/adapters/database"
	"github.com/nickprotop/NeighborTools-sub004/internal/adapters/providers/geocoding"
	"github.com/nickprotop/NeighborTools-sub004/internal/adapters/search"
	"github.com/nickprotop/NeighborTools-sub004/internal/api/handlers"
	"github.com/nickprotop/NeighborTools-sub004/internal/api/routes"
	"github.com/nickprotop/NeighborTools-sub004/internal/application/services"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/providers"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/repositories"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/clients/postgres"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/clients/redis"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/clients/typesense"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/observability"
	"github.com/nickprotop/NeighborTools-sub004/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env, cfg.Server.LogLevel)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	// Initialize adapters
	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	auditAdapter := database.NewSearchAuditAdapter(pgClient)
	itemAdapter := database.NewItemAdapter(pgClient)

	var itemSearchRepo repositories.ItemSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		// Ensure schema exists
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		itemSearchRepo = adapter
	}

	var geocodingProvider providers.GeocodingProvider
	switch cfg.Geocoding.Provider {
	case "nominatim":
		geocodingProvider = geocoding.NewNominatimProvider(
			cfg.Geocoding.BaseURL,
			cfg.Geocoding.UserAgent,
			cacheProvider,
		)
	default:
		log.Printf("Warning: unknown geocoding provider %q; using mock provider", cfg.Geocoding.Provider)
		geocodingProvider = geocoding.NewMockProvider()
	}

	// Initialize services
	securityService := services.NewLocationSecurityService(auditAdapter, cfg.Security, metrics)
	searchService := services.NewProximitySearchService(
		securityService,
		geocodingProvider,
		itemAdapter,
		itemSearchRepo,
		cacheProvider,
		metrics,
	)

	// Periodically purge audit entries past the retention window
	go runRetentionSweep(ctx, securityService)

	// Initialize handlers
	locationHandler := handlers.NewLocationHandler(searchService)
	securityHandler := handlers.NewSecurityHandler(securityService)

	// Set up router
	router := routes.NewRouter(locationHandler, securityHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// runRetentionSweep purges expired audit entries once at startup and
// then every hour until the context is cancelled.
func runRetentionSweep(ctx context.Context, security *services.LocationSecurityService) {
	sweep := func() {
		removed, err := security.PurgeExpiredEntries(ctx)
		if err != nil {
			log.Printf("Warning: audit retention sweep failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("Audit retention sweep removed %d entries", removed)
		}
	}

	sweep()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
