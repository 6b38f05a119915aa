package main

import (
	"time"

	"github.com/vithika-cyber/calorie-bot/internal/bot"
	"github.com/vithika-cyber/calorie-bot/internal/nlu"
	"github.com/vithika-cyber/calorie-bot/internal/nutrition"
	"github.com/vithika-cyber/calorie-bot/internal/orchestrator"
	"github.com/vithika-cyber/calorie-bot/internal/ratelimit"
	"github.com/vithika-cyber/calorie-bot/internal/router"
	"github.com/vithika-cyber/calorie-bot/internal/storage"
	"github.com/vithika-cyber/calorie-bot/internal/usda"
	"github.com/vithika-cyber/calorie-bot/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage(cfg.History.RetainedTurns)
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}
		store, err = storage.NewPostgresStorage(dbConfig, cfg.History.RetainedTurns)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize external capabilities
	extractor := nlu.NewOpenAIExtractor(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
		logger,
	)

	foodDB := usda.NewClient(
		cfg.USDA.BaseURL,
		cfg.USDA.APIKey,
		cfg.USDA.PageSize,
		time.Duration(cfg.USDA.TimeoutSeconds)*time.Second,
		logger,
	)

	// Pick the cache backing: process-local with TTL, or durable rows
	// with no expiry.
	var cache nutrition.Cache
	if cfg.Nutrition.UseMemoryCache {
		cache = nutrition.NewMemoryCache(time.Duration(cfg.Nutrition.CacheTTLHours) * time.Hour)
	} else {
		cache = storage.NewNutritionCache(store, logger)
	}

	resolver := nutrition.NewResolver(cache, foodDB, extractor, cfg.Nutrition.DefaultServingGrams, logger)

	rtr := router.New(extractor, logger)
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)

	orch := orchestrator.New(limiter, store, extractor, resolver, rtr, cfg.History.RetainedTurns, logger)

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, orch, store, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
