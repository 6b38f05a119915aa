package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vithika-cyber/calorie-bot/internal/models"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("⬜", 10), ProgressBar(0, 2000, 10))
	assert.Equal(t, strings.Repeat("🟩", 5)+strings.Repeat("⬜", 5), ProgressBar(1000, 2000, 10))
	assert.Equal(t, strings.Repeat("🟩", 10), ProgressBar(3000, 2000, 10), "over goal caps at a full bar")
	assert.Equal(t, strings.Repeat("⬜", 10), ProgressBar(500, 0, 10), "zero goal renders empty")
}

func TestDailyProgress(t *testing.T) {
	assert.Equal(t, "📊 Daily Progress: 850/2000 cal (42%)", DailyProgress(850.4, 2000))
}

func TestFoodLogMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 13, 5, 0, 0, time.UTC)
	items := []models.EnrichedFood{
		{
			FoodItem: models.FoodItem{Name: "chicken breast", Quantity: 1, Unit: "breast"},
			Macros:   models.Macros{Calories: 280.5, Protein: 52.7},
			Source:   models.SourceUSDA,
		},
		{
			FoodItem: models.FoodItem{Name: "mystery goop", Quantity: 1, Unit: "bowl"},
			Source:   models.SourceUnknown,
		},
	}
	totals := models.Macros{Calories: 280.5, Protein: 52.7}

	got := FoodLogMessage(models.MealLunch, items, totals, at)

	assert.Contains(t, got, "Logged Lunch (1:05 PM)")
	assert.Contains(t, got, "1 breast chicken breast: 280.50 cal")
	assert.Contains(t, got, "P: 52.70g")
	assert.Contains(t, got, "mystery goop: 0.00 cal  (not found in database)")
	assert.Contains(t, got, "Meal total: 280.50 calories")
}

func TestDailySummaryGoalStates(t *testing.T) {
	over := DailySummary("Today", models.Macros{Calories: 2300}, 2000, nil)
	assert.Contains(t, over, "300 calories over")

	under := DailySummary("Today", models.Macros{Calories: 1500}, 2000, nil)
	assert.Contains(t, under, "500 calories remaining")

	onTarget := DailySummary("Today", models.Macros{Calories: 1980}, 2000, nil)
	assert.Contains(t, onTarget, "You hit your goal")

	assert.Contains(t, under, "No food logged yet")
}

func TestTrimFloat(t *testing.T) {
	assert.Equal(t, "1", trimFloat(1))
	assert.Equal(t, "1.5", trimFloat(1.5))
	assert.Equal(t, "0.25", trimFloat(0.25))
}

func TestFoodEmojiFallsBack(t *testing.T) {
	assert.Equal(t, "🍎", foodEmoji("Apple pie"))
	assert.Equal(t, "🍴", foodEmoji("quinoa"))
}
