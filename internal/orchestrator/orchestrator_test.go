package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vithika-cyber/calorie-bot/internal/models"
	"github.com/vithika-cyber/calorie-bot/internal/nlu"
	"github.com/vithika-cyber/calorie-bot/internal/nutrition"
	"github.com/vithika-cyber/calorie-bot/internal/ratelimit"
	"github.com/vithika-cyber/calorie-bot/internal/router"
	"github.com/vithika-cyber/calorie-bot/internal/storage"
)

type fakeExtractor struct {
	intentLabel string
	meal        *models.ParsedMeal
	mealErr     error
	estimate    *models.Macros
	profile     *nlu.ProfileFields
	profileErr  error
}

func (f *fakeExtractor) ClassifyIntent(ctx context.Context, message string, history []models.ConversationTurn) (string, error) {
	if f.intentLabel == "" {
		return "", errors.New("no label configured")
	}
	return f.intentLabel, nil
}

func (f *fakeExtractor) ExtractFoods(ctx context.Context, message string, history []models.ConversationTurn) (*models.ParsedMeal, error) {
	return f.meal, f.mealErr
}

func (f *fakeExtractor) EstimateNutrition(ctx context.Context, foodPhrase string) (*models.Macros, error) {
	return f.estimate, nil
}

func (f *fakeExtractor) ExtractProfile(ctx context.Context, message string) (*nlu.ProfileFields, error) {
	return f.profile, f.profileErr
}

var _ nlu.Extractor = (*fakeExtractor)(nil)

type staticDatabase struct {
	records map[string][]models.FoodRecord
}

func (s *staticDatabase) Search(ctx context.Context, query string) ([]models.FoodRecord, error) {
	return s.records[query], nil
}

func (s *staticDatabase) GetFood(ctx context.Context, fdcID int64) (*models.FoodRecord, error) {
	for _, recs := range s.records {
		for _, rec := range recs {
			if rec.FDCID == fdcID {
				r := rec
				return &r, nil
			}
		}
	}
	return nil, nil
}

type testEnv struct {
	orch  *Orchestrator
	store *storage.MemoryStorage
}

func newTestEnv(t *testing.T, ext *fakeExtractor, records map[string][]models.FoodRecord) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := storage.NewMemoryStorage(10)
	resolver := nutrition.NewResolver(
		nutrition.NewMemoryCache(0),
		&staticDatabase{records: records},
		ext,
		100,
		logger,
	)
	rtr := router.New(ext, logger)
	limiter := ratelimit.New(100, time.Minute)
	return &testEnv{
		orch:  New(limiter, store, ext, resolver, rtr, 10, logger),
		store: store,
	}
}

func onboardProfile() *nlu.ProfileFields {
	age := 25
	gender := "female"
	weight := 60.0
	height := 165.0
	activity := "moderately_active"
	goal := "lose_weight"
	return &nlu.ProfileFields{
		Age: &age, Gender: &gender, WeightKg: &weight,
		HeightCm: &height, ActivityLevel: &activity, Goal: &goal,
	}
}

func onboardUser(t *testing.T, env *testEnv, userID, chatID int64) {
	t.Helper()
	user, err := env.store.GetOrCreateUser(context.Background(), userID, chatID)
	require.NoError(t, err)
	done := time.Now()
	user.OnboardedAt = &done
	user.DailyCalorieGoal = 2000
	require.NoError(t, env.store.UpdateUser(context.Background(), user))
}

func TestProcessRateLimited(t *testing.T) {
	env := newTestEnv(t, &fakeExtractor{}, nil)
	env.orch.limiter = ratelimit.New(1, time.Minute)
	onboardUser(t, env, 1, 1)

	first := env.orch.Process(context.Background(), 1, 1, "hi")
	assert.NotContains(t, first, "too fast")

	second := env.orch.Process(context.Background(), 1, 1, "hi")
	assert.Contains(t, second, "too fast")

	// Rejected messages leave no trace in history.
	turns, err := env.store.RecentTurns(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, turns, 2, "only the admitted exchange is recorded")
}

func TestProcessLogFood(t *testing.T) {
	ext := &fakeExtractor{
		meal: &models.ParsedMeal{Foods: []models.FoodItem{
			{Name: "apple", Quantity: 1, Unit: "medium", MealType: models.MealSnack},
		}},
	}
	records := map[string][]models.FoodRecord{
		"apple": {{FDCID: 1, Description: "Apple, raw", Per100g: models.Macros{Calories: 52, Carbs: 14}}},
	}
	env := newTestEnv(t, ext, records)
	onboardUser(t, env, 1, 1)

	resp := env.orch.Process(context.Background(), 1, 1, "I ate an apple")

	assert.Contains(t, resp, "Logged Snack")
	assert.Contains(t, resp, "apple")
	assert.Contains(t, resp, "Daily Progress")

	// 1 medium = 130 g, 52 cal/100g.
	now := time.Now()
	logs, err := env.store.FoodLogsBetween(context.Background(), 1, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.InDelta(t, 67.6, logs[0].Totals.Calories, 0.001)
	assert.Equal(t, "I ate an apple", logs[0].RawText)
	require.Len(t, logs[0].Items, 1)
	assert.Equal(t, models.SourceUSDA, logs[0].Items[0].Source)

	turns, err := env.store.RecentTurns(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, "I ate an apple", turns[0].Text)
	assert.Equal(t, models.RoleBot, turns[1].Role)
	assert.Equal(t, resp, turns[1].Text)
}

func TestProcessLogFoodAllUnknownAsksForClarification(t *testing.T) {
	ext := &fakeExtractor{
		meal: &models.ParsedMeal{Foods: []models.FoodItem{
			{Name: "mystery goop", Quantity: 1, Unit: "bowl"},
		}},
		// estimate stays nil: the AI tier also yields nothing.
	}
	env := newTestEnv(t, ext, nil)
	onboardUser(t, env, 1, 1)

	resp := env.orch.Process(context.Background(), 1, 1, "I ate mystery goop")

	assert.Contains(t, resp, "couldn't find nutritional info for mystery goop")

	now := time.Now()
	logs, err := env.store.FoodLogsBetween(context.Background(), 1, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, logs, "an all-unknown meal must not be persisted")
}

func TestProcessLogFoodPartialUnknownStillPersists(t *testing.T) {
	ext := &fakeExtractor{
		meal: &models.ParsedMeal{Foods: []models.FoodItem{
			{Name: "apple", Quantity: 1, Unit: "medium", MealType: models.MealSnack},
			{Name: "mystery goop", Quantity: 1, Unit: "bowl", MealType: models.MealSnack},
		}},
	}
	records := map[string][]models.FoodRecord{
		"apple": {{FDCID: 1, Description: "Apple, raw", Per100g: models.Macros{Calories: 52}}},
	}
	env := newTestEnv(t, ext, records)
	onboardUser(t, env, 1, 1)

	resp := env.orch.Process(context.Background(), 1, 1, "I ate an apple and mystery goop")

	assert.Contains(t, resp, "Logged Snack")
	assert.Contains(t, resp, "couldn't find mystery goop")

	now := time.Now()
	logs, err := env.store.FoodLogsBetween(context.Background(), 1, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Len(t, logs[0].Items, 2, "unknown items are kept on the entry for transparency")
}

func TestProcessLogFoodNothingExtracted(t *testing.T) {
	ext := &fakeExtractor{meal: &models.ParsedMeal{}}
	env := newTestEnv(t, ext, nil)
	onboardUser(t, env, 1, 1)

	resp := env.orch.Process(context.Background(), 1, 1, "I just ate")
	assert.Contains(t, resp, "couldn't identify any food items")
}

func TestProcessQueryToday(t *testing.T) {
	env := newTestEnv(t, &fakeExtractor{}, nil)
	onboardUser(t, env, 1, 1)

	require.NoError(t, env.store.CreateFoodLog(context.Background(), &models.FoodLogEntry{
		UserID:   1,
		ChatID:   1,
		LoggedAt: time.Now(),
		MealType: models.MealLunch,
		Items:    []models.EnrichedFood{{FoodItem: models.FoodItem{Name: "salad"}}},
		Totals:   models.Macros{Calories: 350, Protein: 12},
	}))

	resp := env.orch.Process(context.Background(), 1, 1, "what did I eat today")

	assert.Contains(t, resp, "Daily Summary - Today")
	assert.Contains(t, resp, "350/2000 calories")
	assert.Contains(t, resp, "salad")
}

func TestProcessQueryTodayEmpty(t *testing.T) {
	env := newTestEnv(t, &fakeExtractor{}, nil)
	onboardUser(t, env, 1, 1)

	resp := env.orch.Process(context.Background(), 1, 1, "how many calories so far?")
	assert.Contains(t, resp, "No food logged yet")
}

func TestProcessQueryRange(t *testing.T) {
	env := newTestEnv(t, &fakeExtractor{}, nil)
	onboardUser(t, env, 1, 1)

	for daysAgo := 1; daysAgo <= 3; daysAgo++ {
		require.NoError(t, env.store.CreateFoodLog(context.Background(), &models.FoodLogEntry{
			UserID:   1,
			ChatID:   1,
			LoggedAt: time.Now().AddDate(0, 0, -daysAgo),
			Totals:   models.Macros{Calories: 1800},
		}))
	}

	resp := env.orch.Process(context.Background(), 1, 1, "show me last week")

	assert.Contains(t, resp, "Last 7 Days")
	assert.Contains(t, resp, "(3 days)")
	assert.Contains(t, resp, "Daily avg: 1800.00 cal")
}

func TestProcessOnboardingFlow(t *testing.T) {
	ext := &fakeExtractor{profile: &nlu.ProfileFields{}}
	env := newTestEnv(t, ext, nil)

	// First contact with nothing extractable: prompt lists what is needed.
	resp := env.orch.Process(context.Background(), 1, 1, "hi")
	assert.Contains(t, resp, "Welcome to CalorieBot")
	assert.Contains(t, resp, "age")

	// Partial details re-prompt for the remainder.
	age := 25
	gender := "female"
	ext.profile = &nlu.ProfileFields{Age: &age, Gender: &gender}
	resp = env.orch.Process(context.Background(), 1, 1, "I'm a 25 year old woman")
	assert.Contains(t, resp, "Almost there")
	assert.Contains(t, resp, "weight")
	assert.NotContains(t, resp, "I still need: age")

	// Complete details finish onboarding and compute the plan.
	ext.profile = onboardProfile()
	resp = env.orch.Process(context.Background(), 1, 1, "60kg, 165cm, moderately active, want to lose weight")
	assert.Contains(t, resp, "You're all set")
	assert.Contains(t, resp, "Daily Calorie Goal: 1585 cal")
	assert.Contains(t, resp, "TDEE (Maintenance): 2085 cal")
	assert.Contains(t, resp, "Lose weight")

	user, err := env.store.GetOrCreateUser(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, user.IsOnboarded())
	assert.InDelta(t, 1585.14, user.DailyCalorieGoal, 0.001)
	assert.InDelta(t, 55.0, user.TargetWeightKg, 0.001)
	assert.Equal(t, models.GoalLoseWeight, user.Goal)

	// Onboarded users route normally from here on.
	resp = env.orch.Process(context.Background(), 1, 1, "how many calories so far?")
	assert.Contains(t, resp, "Daily Summary")
}

func TestProcessGreetingAndHelp(t *testing.T) {
	env := newTestEnv(t, &fakeExtractor{}, nil)
	onboardUser(t, env, 1, 1)

	assert.Contains(t, env.orch.Process(context.Background(), 1, 1, "hello"), "Ready to log your meals")
	assert.Contains(t, env.orch.Process(context.Background(), 1, 1, "help"), "How to use CalorieBot")
}

type failingHistoryStore struct {
	storage.Storage
}

func (s *failingHistoryStore) RecentTurns(ctx context.Context, userID int64, limit int) ([]models.ConversationTurn, error) {
	return nil, errors.New("connection reset")
}

func TestProcessHistoryLoadFailureAborts(t *testing.T) {
	env := newTestEnv(t, &fakeExtractor{}, nil)
	onboardUser(t, env, 1, 1)
	env.orch.store = &failingHistoryStore{Storage: env.store}

	resp := env.orch.Process(context.Background(), 1, 1, "hi")
	assert.Contains(t, resp, "Sorry, I encountered an error")
}

func TestProcessUnroutableMessageFallsBack(t *testing.T) {
	// The classifier has no label configured, so it errors and routing
	// collapses to the fallback response.
	env := newTestEnv(t, &fakeExtractor{}, nil)
	onboardUser(t, env, 1, 1)

	resp := env.orch.Process(context.Background(), 1, 1, "quantum flux capacitor")
	assert.Contains(t, resp, "I'm not sure how to help with that")
}
