package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/trueamperror/rift-otc-api/internal/analysis"
	"github.com/trueamperror/rift-otc-api/internal/auth"
	"github.com/trueamperror/rift-otc-api/internal/config"
	"github.com/trueamperror/rift-otc-api/internal/database"
	"github.com/trueamperror/rift-otc-api/internal/deals"
	"github.com/trueamperror/rift-otc-api/internal/market"
	"github.com/trueamperror/rift-otc-api/pkg/middleware"
)

// main initializes and runs the OTC deal API server with graceful shutdown
// support
func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	configureLogging(cfg)

	// Initialize database
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	// Initialize router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Initialize services and handlers
	authService := auth.NewService(cfg.JWTSecret)
	authHandlers := auth.NewGinHandlers(authService)
	// Register test credentials
	authService.RegisterAPICredentials(auth.TestAPIKey, auth.TestAPISecret)

	marketClient := market.NewClient(cfg.CoinGeckoBaseURL, cfg.MarketCacheTTL)
	marketHandlers := market.NewGinHandlers(marketClient)

	analyzer := analysis.NewHeuristicAnalyzer()
	analysisHandlers := analysis.NewGinHandlers(analyzer, marketClient)

	dealService := deals.NewService(db, marketClient, analyzer)
	dealHandlers := deals.NewGinHandlers(dealService)

	if cfg.SeedDemoDeals {
		go deals.SeedDemoDeals(context.Background(), dealService)
	}

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, cfg, authHandlers, dealHandlers, marketHandlers, analysisHandlers)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// configureLogging sets up zerolog based on environment settings.
// Development mode gets pretty printing with timestamps; DEBUG enables debug
// level logging.
func configureLogging(cfg *config.Config) {
	if !cfg.IsProduction() {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// setupRoutes configures all API endpoints and their handlers.
// Deal mutations sit behind JWT authentication; market data and analysis are
// public, mirroring the read-only nature of those endpoints.
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandlers *auth.GinHandlers,
	dealHandlers *deals.GinHandlers,
	marketHandlers *market.GinHandlers,
	analysisHandlers *analysis.GinHandlers,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/token", authHandlers.GenerateTokenHandler())
		}

		// Deal routes: browsing is public, lifecycle mutations require a token
		dealsGroup := v1.Group("/deals")
		{
			dealsGroup.GET("", dealHandlers.ListDealsHandler())
			dealsGroup.GET("/:deal_id", dealHandlers.GetDealHandler())
		}
		dealMutations := v1.Group("/deals")
		dealMutations.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			dealMutations.POST("", dealHandlers.CreateDealHandler())
			dealMutations.POST("/:deal_id/accept", dealHandlers.AcceptDealHandler())
			dealMutations.POST("/:deal_id/claim", dealHandlers.ClaimDealHandler())
			dealMutations.POST("/:deal_id/cancel", dealHandlers.CancelDealHandler())
		}

		// Token market data routes
		tokens := v1.Group("/tokens")
		{
			tokens.GET("/search", marketHandlers.SearchTokensHandler())
			tokens.GET("/trending", marketHandlers.TrendingTokensHandler())
			tokens.GET("/:token_id", marketHandlers.GetTokenHandler())
			tokens.POST("/:token_id/calculate", marketHandlers.CalculateDealHandler())
			tokens.GET("/:token_id/suggest-discount", marketHandlers.SuggestDiscountHandler())
		}

		// Analysis routes
		v1.POST("/analyze", analysisHandlers.AnalyzeTokenHandler())
	}
}
