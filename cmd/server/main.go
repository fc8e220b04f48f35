package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/omnibar-app/omnibar/backend/internal/api/handlers"
	"github.com/omnibar-app/omnibar/backend/internal/config"
	"github.com/omnibar-app/omnibar/backend/internal/database"
	"github.com/omnibar-app/omnibar/backend/internal/deepseek"
	"github.com/omnibar-app/omnibar/backend/internal/health"
	"github.com/omnibar-app/omnibar/backend/internal/middleware"
	"github.com/omnibar-app/omnibar/backend/internal/repository"
	"github.com/omnibar-app/omnibar/backend/internal/services"
	"github.com/omnibar-app/omnibar/backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting omnibar backend...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbManager, err := database.NewManager(cfg.Database.URL, cfg.Redis.URL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	var deepseekClient *deepseek.Client
	if err := cfg.ValidateDeepSeek(); err != nil {
		logger.WithError(err).Warn("DeepSeek disabled, /api/ask will be unavailable")
	} else {
		deepseekClient = deepseek.NewClient(cfg.DeepSeek.BaseURL, cfg.DeepSeek.APIKey, cfg.DeepSeek.Model, logger)
	}

	userModelSvc := services.NewUserModelService(repoManager.QueryHistory, cache, logger)
	historySvc := services.NewHistoryService(repoManager.PageVisit, logger)
	suggestionSvc := services.NewSuggestionService(userModelSvc, historySvc, repoManager.QueryHistory, cache, logger)

	suggestHandler := handlers.NewSuggestHandler(suggestionSvc, cache, logger)
	omniboxHandler := handlers.NewOmniboxHandler(repoManager.SavedLink, logger)
	healthHandler := handlers.NewHealthHandler(health.NewChecker(dbManager, deepseekClient, logger))

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	rateLimiter := middleware.NewRateLimiter(60, time.Minute)

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	api.Use(rateLimiter.Middleware())
	{
		api.POST("/suggestions", suggestHandler.Suggest)
		api.POST("/omnibox", omniboxHandler.Resolve)
		api.GET("/omnibox", omniboxHandler.Redirect)

		if deepseekClient != nil {
			askHandler := handlers.NewAskHandler(deepseekClient, logger)
			api.POST("/ask", askHandler.Ask)
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced server shutdown")
	}

	logger.Info("Server stopped")
}
