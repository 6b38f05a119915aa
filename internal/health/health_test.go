package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vithika-cyber/calorie-bot/internal/models"
)

func TestBMR(t *testing.T) {
	tests := []struct {
		name     string
		weightKg float64
		heightCm float64
		age      int
		gender   string
		want     float64
	}{
		{"female", 60, 165, 25, "female", 1345.25},
		{"male", 80, 180, 30, "male", 1780},
		{"short gender code", 80, 180, 30, "m", 1780},
		{"unknown gender uses female constant", 60, 165, 25, "nonbinary", 1345.25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BMR(tc.weightKg, tc.heightCm, tc.age, tc.gender)
			assert.InDelta(t, tc.want, got, 0.001)
		})
	}
}

func TestTDEE(t *testing.T) {
	got := TDEE(60, 165, 25, "female", models.ActivityModeratelyActive)
	assert.InDelta(t, 2085.14, got, 0.01)

	sedentary := TDEE(60, 165, 25, "female", models.ActivitySedentary)
	unknown := TDEE(60, 165, 25, "female", models.ActivityLevel("couch"))
	assert.InDelta(t, sedentary, unknown, 0.001,
		"unknown activity level should fall back to sedentary")
}

func TestCalorieGoal(t *testing.T) {
	tdee := TDEE(60, 165, 25, "female", models.ActivityModeratelyActive)

	tests := []struct {
		name string
		goal models.GoalType
		want float64
	}{
		{"lose weight", models.GoalLoseWeight, 1585.14},
		{"maintain", models.GoalMaintainWeight, 2085.14},
		{"gain weight", models.GoalGainWeight, 2585.14},
		{"build muscle", models.GoalBuildMuscle, 2385.14},
		{"general health", models.GoalGeneralHealth, 2085.14},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CalorieGoal(tdee, tc.goal), 0.001)
		})
	}
}

func TestCalorieGoalFloor(t *testing.T) {
	// A small, sedentary profile minus the weight-loss deficit would land
	// under the floor; the goal must clamp to it.
	tdee := TDEE(45, 150, 70, "female", models.ActivitySedentary)
	assert.Equal(t, float64(MinDailyCalories), CalorieGoal(tdee, models.GoalLoseWeight))
}
