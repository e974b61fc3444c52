package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"refab-api/internal/cache"
	"refab-api/internal/catalog"
	"refab-api/internal/config"
	"refab-api/internal/dispatch"
	"refab-api/internal/handler"
	"refab-api/internal/repository"
	"refab-api/internal/router"
	"refab-api/internal/service"
	"refab-api/internal/session"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Refab API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Load the device/issue catalog
	cat, err := catalog.Load(cfg.Pricing.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Initialize quote repository based on config
	var quoteRepo repository.QuoteRepository
	switch cfg.QuoteDB.Type {
	case "mysql":
		mysqlRepo, err := repository.NewMySQLQuoteRepository(cfg.QuoteDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		quoteRepo = mysqlRepo
		log.Println("MySQL quote repository initialized")
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresQuoteRepository(cfg.QuoteDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		quoteRepo = pgRepo
		log.Println("PostgreSQL quote repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteQuoteRepository(cfg.QuoteDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		quoteRepo = sqliteRepo
		log.Println("SQLite quote repository initialized")
	}
	defer quoteRepo.Close()

	// Initialize cache backend
	var cacheBackend cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		cacheBackend = redisCache
		log.Println("Redis cache initialized")
	} else {
		cacheBackend = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}
	defer cacheBackend.Close()

	// Wizard session store
	sessions := session.NewStore(cacheBackend)

	// Post-persistence dispatch pipeline, in contract order
	runner := dispatch.NewRunner(
		&dispatch.InvoiceDispatcher{OutDir: cfg.Dispatch.InvoiceDir},
		&dispatch.EmailDispatcher{Sender: dispatch.LogEmailSender{}},
		&dispatch.NotifyDispatcher{Sender: dispatch.LogMessageSender{}},
		&dispatch.LabelDispatcher{OutDir: cfg.Dispatch.LabelDir, BaseURL: cfg.App.BaseURL},
	)

	// Initialize services
	quoteService := service.NewQuoteService(cat, quoteRepo, cacheBackend, runner, cfg.Pricing.Tolerance)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(quoteRepo, cacheBackend)
	orderHandler := handler.NewOrderHandler(quoteService)
	catalogHandler := handler.NewCatalogHandler(cat)
	wizardHandler := handler.NewWizardHandler(cat, sessions, quoteService)

	// Create router
	r := router.New(router.Config{
		HealthHandler:  healthHandler,
		OrderHandler:   orderHandler,
		CatalogHandler: catalogHandler,
		WizardHandler:  wizardHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
