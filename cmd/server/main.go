package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/so-keyldzn/simple-cms-sub000/internal/auth"
	"github.com/so-keyldzn/simple-cms-sub000/internal/cache"
	"github.com/so-keyldzn/simple-cms-sub000/internal/config"
	"github.com/so-keyldzn/simple-cms-sub000/internal/handler"
	"github.com/so-keyldzn/simple-cms-sub000/internal/middleware"
	"github.com/so-keyldzn/simple-cms-sub000/internal/ratelimit"
	"github.com/so-keyldzn/simple-cms-sub000/internal/repository/postgres"
	"github.com/so-keyldzn/simple-cms-sub000/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.MaxLogFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Token verifier
	verifier, err := auth.NewJWKSVerifier(ctx, cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}

	// Database
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	logger.Info("database connected")

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	mediaRepo := postgres.NewMediaRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Query cache and onboarding rate limiter
	queryCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		log.Fatalf("Failed to create query cache: %v", err)
	}

	onboardingLimiter := ratelimit.NewStore(
		rate.Every(cfg.OnboardingInterval),
		cfg.OnboardingBurst,
		cfg.RateLimitTTL,
	)
	onboardingLimiter.StartSweeper(ctx, cfg.RateLimitTTL)

	// Services
	folderService := service.NewFolderService(folderRepo, mediaRepo, txManager, queryCache, logger)
	mediaService := service.NewMediaService(mediaRepo, folderRepo, txManager, queryCache, logger)
	treeService := service.NewTreeService(folderRepo, mediaRepo, queryCache, logger)
	userService := service.NewUserService(userRepo, queryCache, logger)
	onboardingService := service.NewOnboardingService(userRepo, onboardingLimiter, queryCache, logger)

	// Handlers
	folderHandler := handler.NewFolderHandler(folderService, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	mediaHandler := handler.NewMediaHandler(mediaService, handler.UploadConfig{
		Dir:          cfg.UploadDir,
		BaseURL:      cfg.UploadBaseURL,
		MaxSize:      cfg.MaxUploadSize,
		AllowedTypes: handler.DefaultAllowedTypes(),
	}, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	onboardingHandler := handler.NewOnboardingHandler(onboardingService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", treeHandler.HealthCheck)

	// Onboarding routes (unauthenticated, rate limited in the service)
	mux.HandleFunc("GET /api/onboarding/status", onboardingHandler.Status)
	mux.HandleFunc("POST /api/onboarding", onboardingHandler.Setup)

	// Folder routes
	mux.HandleFunc("GET /api/folders/tree", treeHandler.GetTree) // Must come before {id} route
	mux.HandleFunc("GET /api/folders", folderHandler.ListChildren)
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/children", folderHandler.ListChildren)

	// Media routes
	mux.HandleFunc("POST /api/media", mediaHandler.Upload)
	mux.HandleFunc("GET /api/media", mediaHandler.ListMedia)
	mux.HandleFunc("POST /api/media/bulk/move", mediaHandler.BulkMove) // Must come before {id} route
	mux.HandleFunc("POST /api/media/bulk/delete", mediaHandler.BulkDelete)
	mux.HandleFunc("GET /api/media/{id}", mediaHandler.GetMedia)
	mux.HandleFunc("PATCH /api/media/{id}", mediaHandler.UpdateMedia)
	mux.HandleFunc("DELETE /api/media/{id}", mediaHandler.DeleteMedia)

	// User administration routes
	mux.HandleFunc("GET /api/users", userHandler.ListUsers)
	mux.HandleFunc("PUT /api/users/{id}/roles", userHandler.SetRoles)
	mux.HandleFunc("POST /api/users/{id}/ban", userHandler.BanUser)
	mux.HandleFunc("POST /api/users/{id}/unban", userHandler.UnbanUser)

	// Uploaded files
	mux.Handle("GET "+cfg.UploadBaseURL+"/", http.StripPrefix(cfg.UploadBaseURL+"/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	// Build middleware chain; applied in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLog → Auth → Routes
	skipAuth := map[string]bool{
		"/health":                true,
		"/api/onboarding":        true,
		"/api/onboarding/status": true,
	}

	var root http.Handler = mux
	root = middleware.Auth(verifier, skipAuth)(root)
	root = middleware.RequestLog(logger)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
