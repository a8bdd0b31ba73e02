package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/rental-engine/internal/cache"
	"github.com/segyhp/rental-engine/internal/config"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/handler"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/repository"
	"github.com/segyhp/rental-engine/internal/service"
	"github.com/segyhp/rental-engine/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.Logging.Level, cfg.Logging.Format)

	var (
		db             *sqlx.DB
		redisClient    *redis.Client
		agreementRepo  repository.AgreementRepository
		listingRepo    repository.ListingRepository
		chatRepo       repository.ChatRepository
		agreementCache cache.AgreementCache
	)

	if cfg.UsesMemoryStore() {
		store := seedMemoryStore()
		agreementRepo, listingRepo, chatRepo = store.Agreements(), store.Listings(), store.Chats()
		agreementCache = cache.NewNopAgreementCache()
		logger.Warn("running on the in-memory store; data is lost on exit")
	} else {
		// Initialize database
		db, err = initDB(cfg)
		if err != nil {
			logger.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		// Initialize Redis
		redisClient = initRedis(cfg)
		defer redisClient.Close()

		agreementRepo = repository.NewAgreementRepository(db)
		listingRepo = repository.NewListingRepository(db)
		chatRepo = repository.NewChatRepository(db)
		agreementCache = cache.NewRedisAgreementCache(redisClient, cfg.Redis.CacheTTL)
	}

	rentalService := service.NewRentalService(agreementRepo, listingRepo, chatRepo, agreementCache, cfg)
	rentalHandler := handler.NewRentalHandler(rentalService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	// Setup routes
	router := setupRoutes(rentalHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.LoggingMiddleware(response.CORSMiddleware(router)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := repository.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// seedMemoryStore gives local runs one rentable listing with an open chat.
func seedMemoryStore() *repository.MemoryStore {
	store := repository.NewMemoryStore()
	store.SeedListing(domain.Listing{ID: 1, SellerID: 1, Title: "Sample rental", Type: domain.ListingTypeRent, Status: domain.ListingStatusAvailable})
	store.SeedChat(domain.Chat{ID: 1, ListingID: 1, BuyerID: 2, SellerID: 1, CreatedAt: time.Now().UTC()})
	return store
}

func setupRoutes(rentalHandler *handler.RentalHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(response.JSONMiddleware)
	rentalHandler.RegisterRoutes(api)

	return router
}
