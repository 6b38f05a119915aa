package storage

import (
	"context"
	"time"

	"github.com/vithika-cyber/calorie-bot/internal/models"
	"go.uber.org/zap"
)

// NotFoundError is returned for lookups of rows that do not exist.
type NotFoundError struct{ What string }

func (e *NotFoundError) Error() string { return e.What + " not found" }

type Storage interface {
	// GetOrCreateUser returns the profile for (user, chat), creating an
	// empty, un-onboarded row on first contact.
	GetOrCreateUser(ctx context.Context, userID, chatID int64) (*models.UserProfile, error)
	UpdateUser(ctx context.Context, user *models.UserProfile) error
	// DeleteUser removes the profile and cascades to food logs and
	// conversation turns.
	DeleteUser(ctx context.Context, userID, chatID int64) error

	CreateFoodLog(ctx context.Context, entry *models.FoodLogEntry) error
	// FoodLogsBetween returns logs with start <= logged_at < end, ordered
	// by time.
	FoodLogsBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.FoodLogEntry, error)
	// DeleteLastFoodLog removes the user's most recent entry; false when
	// there was nothing to delete.
	DeleteLastFoodLog(ctx context.Context, userID int64) (bool, error)

	// AppendTurn stores one dialogue turn and prunes the user's history to
	// the retention bound, oldest first.
	AppendTurn(ctx context.Context, turn *models.ConversationTurn) error
	RecentTurns(ctx context.Context, userID int64, limit int) ([]models.ConversationTurn, error)

	GetCachedNutrition(ctx context.Context, key string) (*models.FoodRecord, bool, error)
	PutCachedNutrition(ctx context.Context, key string, rec *models.FoodRecord) error

	Close() error
}

// NutritionCache adapts the durable store to the resolver's cache
// interface. Entries never expire at read time; nutrition facts for a
// fixed food do not drift. Store errors degrade to a cache miss.
type NutritionCache struct {
	store  Storage
	logger *zap.Logger
}

func NewNutritionCache(store Storage, logger *zap.Logger) *NutritionCache {
	return &NutritionCache{store: store, logger: logger}
}

func (c *NutritionCache) Get(ctx context.Context, key string) (*models.FoodRecord, bool) {
	rec, ok, err := c.store.GetCachedNutrition(ctx, key)
	if err != nil {
		c.logger.Warn("nutrition cache read failed", zap.Error(err), zap.String("key", key))
		return nil, false
	}
	return rec, ok
}

func (c *NutritionCache) Put(ctx context.Context, key string, rec *models.FoodRecord) {
	if err := c.store.PutCachedNutrition(ctx, key, rec); err != nil {
		c.logger.Warn("nutrition cache write failed", zap.Error(err), zap.String("key", key))
	}
}
