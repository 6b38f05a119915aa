package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vithika-cyber/calorie-bot/internal/models"
)

func TestGetOrCreateUser(t *testing.T) {
	s := NewMemoryStorage(10)
	ctx := context.Background()

	user, err := s.GetOrCreateUser(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
	assert.Equal(t, int64(100), user.ChatID)
	assert.False(t, user.IsOnboarded())

	user.Age = 25
	require.NoError(t, s.UpdateUser(ctx, user))

	again, err := s.GetOrCreateUser(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, again.Age, "second call returns the stored profile, not a fresh one")
}

func TestUpdateUnknownUser(t *testing.T) {
	s := NewMemoryStorage(10)
	err := s.UpdateUser(context.Background(), &models.UserProfile{UserID: 42, ChatID: 42})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestFoodLogsBetween(t *testing.T) {
	s := NewMemoryStorage(10)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, at := range []time.Time{
		day.Add(8 * time.Hour),
		day.Add(13 * time.Hour),
		day.Add(-2 * time.Hour),     // previous day
		day.Add(24*time.Hour + time.Hour), // next day
	} {
		require.NoError(t, s.CreateFoodLog(ctx, &models.FoodLogEntry{
			UserID:   1,
			LoggedAt: at,
			RawText:  "entry " + strconv.Itoa(i),
		}))
	}
	// Another user's entry in range must not leak in.
	require.NoError(t, s.CreateFoodLog(ctx, &models.FoodLogEntry{
		UserID: 2, LoggedAt: day.Add(9 * time.Hour),
	}))

	logs, err := s.FoodLogsBetween(ctx, 1, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].LoggedAt.Before(logs[1].LoggedAt), "results are time-ordered")
}

func TestDeleteLastFoodLog(t *testing.T) {
	s := NewMemoryStorage(10)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	deleted, err := s.DeleteLastFoodLog(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted, "nothing to undo yet")

	require.NoError(t, s.CreateFoodLog(ctx, &models.FoodLogEntry{UserID: 1, LoggedAt: base, RawText: "breakfast"}))
	require.NoError(t, s.CreateFoodLog(ctx, &models.FoodLogEntry{UserID: 1, LoggedAt: base.Add(4 * time.Hour), RawText: "lunch"}))

	deleted, err = s.DeleteLastFoodLog(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	logs, err := s.FoodLogsBetween(ctx, 1, base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "breakfast", logs[0].RawText, "the most recent entry is the one removed")
}

func TestAppendTurnPrunesToRetentionBound(t *testing.T) {
	s := NewMemoryStorage(4)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.AppendTurn(ctx, &models.ConversationTurn{
			UserID: 1,
			Role:   models.RoleUser,
			Text:   "message " + strconv.Itoa(i),
		}))
	}

	turns, err := s.RecentTurns(ctx, 1, 100)
	require.NoError(t, err)
	require.Len(t, turns, 4, "history is bounded")
	assert.Equal(t, "message 6", turns[0].Text, "oldest turns are the ones dropped")
	assert.Equal(t, "message 9", turns[3].Text)
}

func TestRecentTurnsLimit(t *testing.T) {
	s := NewMemoryStorage(10)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, s.AppendTurn(ctx, &models.ConversationTurn{
			UserID: 1, Role: models.RoleUser, Text: strconv.Itoa(i),
		}))
	}

	turns, err := s.RecentTurns(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "4", turns[0].Text)
	assert.Equal(t, "5", turns[1].Text)
}

func TestDeleteUserCascades(t *testing.T) {
	s := NewMemoryStorage(10)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.GetOrCreateUser(ctx, 1, 100)
	require.NoError(t, err)
	require.NoError(t, s.CreateFoodLog(ctx, &models.FoodLogEntry{UserID: 1, LoggedAt: now}))
	require.NoError(t, s.AppendTurn(ctx, &models.ConversationTurn{UserID: 1, Role: models.RoleUser, Text: "hi"}))

	require.NoError(t, s.DeleteUser(ctx, 1, 100))

	logs, err := s.FoodLogsBetween(ctx, 1, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, logs)

	turns, err := s.RecentTurns(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, turns)

	fresh, err := s.GetOrCreateUser(ctx, 1, 100)
	require.NoError(t, err)
	assert.False(t, fresh.IsOnboarded(), "re-contact starts from a blank profile")
}

func TestNutritionCacheAdapter(t *testing.T) {
	s := NewMemoryStorage(10)
	c := NewNutritionCache(s, zap.NewNop())
	ctx := context.Background()

	_, ok := c.Get(ctx, "search:oats")
	assert.False(t, ok)

	rec := models.FoodRecord{FDCID: 9, Description: "Oats", Per100g: models.Macros{Calories: 389}}
	c.Put(ctx, "search:oats", &rec)

	got, ok := c.Get(ctx, "search:oats")
	require.True(t, ok)
	assert.Equal(t, rec, *got)
}
