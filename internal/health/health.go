// Package health holds the energy-expenditure math used during onboarding.
package health

import (
	"math"

	"github.com/vithika-cyber/calorie-bot/internal/models"
)

// MinDailyCalories is the safety floor for any computed goal.
const MinDailyCalories = 1200

var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary:        1.2,
	models.ActivityLightlyActive:    1.375,
	models.ActivityModeratelyActive: 1.55,
	models.ActivityVeryActive:       1.725,
	models.ActivityExtraActive:      1.9,
}

var goalAdjustments = map[models.GoalType]float64{
	models.GoalLoseWeight:     -500,
	models.GoalMaintainWeight: 0,
	models.GoalGainWeight:     500,
	models.GoalBuildMuscle:    300,
	models.GoalGeneralHealth:  0,
}

// BMR computes basal metabolic rate with the Mifflin-St Jeor equation.
// An unrecognized gender uses the female constant, the more conservative
// estimate.
func BMR(weightKg, heightCm float64, age int, gender string) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case "male", "m":
		bmr += 5
	default:
		bmr -= 161
	}
	return bmr
}

// TDEE is BMR scaled by the activity multiplier. Unknown levels count as
// sedentary.
func TDEE(weightKg, heightCm float64, age int, gender string, activity models.ActivityLevel) float64 {
	mult, ok := activityMultipliers[activity]
	if !ok {
		mult = activityMultipliers[models.ActivitySedentary]
	}
	return BMR(weightKg, heightCm, age, gender) * mult
}

// CalorieGoal applies the per-goal calorie delta to TDEE and clamps the
// result to the safety floor.
func CalorieGoal(tdee float64, goal models.GoalType) float64 {
	adjusted := Round2(tdee) + goalAdjustments[goal]
	if adjusted < MinDailyCalories {
		return MinDailyCalories
	}
	return Round2(adjusted)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
