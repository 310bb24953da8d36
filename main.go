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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/postpulse/backend/analyzer"
	"github.com/postpulse/backend/config"
	"github.com/postpulse/backend/inference"
	"github.com/postpulse/backend/logging"
	"github.com/postpulse/backend/middleware"
	"github.com/postpulse/backend/stats"
)

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		// If .env.development doesn't exist, try regular .env
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := logging.NewLogger(logging.LoggerConfig{
		Level:    cfg.Logger.Level,
		Mode:     cfg.Logger.Mode,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.HTTPServer.Mode)

	storage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		logger.Fatal("Failed to initialize stats storage", zap.Error(err))
	}
	storage.Cleanup()

	usage := logging.Initialize(cfg.DataDir)

	hfClient := inference.NewHFClient(inference.HFConfig{
		APIKey:      cfg.HuggingFace.APIKey,
		CaptionURL:  cfg.HuggingFace.CaptionURL,
		ClassifyURL: cfg.HuggingFace.ClassifyURL,
		Timeout:     time.Duration(cfg.HuggingFace.Timeout) * time.Second,
	})

	// The Gemini fallback captioner is optional; without an API key the
	// service runs on the primary captioner alone.
	var fallback inference.Captioner
	if cfg.Gemini.APIKey != "" {
		gemini, err := inference.NewGeminiCaptioner(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			logger.Fatal("Failed to initialize Gemini captioner", zap.Error(err))
		}
		defer gemini.Close()
		fallback = gemini
	} else {
		logger.Info("No Gemini API key configured, caption fallback disabled")
	}

	svc := inference.NewService(hfClient, fallback, hfClient, storage)
	svc.SetCacheTTL(time.Duration(cfg.Cache.TTLMinutes) * time.Minute)
	svc.SetMaxCacheSize(cfg.Cache.MaxEntries)

	engine := analyzer.NewEngine()

	h := &apiHandler{
		engine:    engine,
		inference: svc,
		storage:   storage,
		usage:     usage,
		logger:    logger,
		maxSizeMB: cfg.Upload.MaxSizeMB,
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.BucketSize)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(logger))
	r.Use(rateLimiter.RateLimit())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Cache-Control", "X-Requested-With", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(func(c *gin.Context) {
		usage.TrackVisitor(c.ClientIP())
		c.Next()
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.POST("/analyze", h.analyzePost)
		api.GET("/statistics", h.statistics)
		api.GET("/cache", h.cacheStats)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPServer.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := usage.Save(); err != nil {
		logger.Error("Failed to save usage statistics", zap.Error(err))
	}
	if err := storage.Shutdown(); err != nil {
		logger.Error("Failed to flush monthly stats", zap.Error(err))
	}
}
