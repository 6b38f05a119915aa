package models

import "time"

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtraActive      ActivityLevel = "extra_active"
)

type GoalType string

const (
	GoalLoseWeight     GoalType = "lose_weight"
	GoalMaintainWeight GoalType = "maintain_weight"
	GoalGainWeight     GoalType = "gain_weight"
	GoalBuildMuscle    GoalType = "build_muscle"
	GoalGeneralHealth  GoalType = "general_health"
)

// UserProfile is one row per (user, chat) pair. OnboardedAt stays nil until
// onboarding completes; routing forces all traffic through onboarding while
// it is nil.
type UserProfile struct {
	UserID           int64             `json:"user_id"`
	ChatID           int64             `json:"chat_id"`
	Age              int               `json:"age,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	WeightKg         float64           `json:"weight_kg,omitempty"`
	TargetWeightKg   float64           `json:"target_weight_kg,omitempty"`
	HeightCm         float64           `json:"height_cm,omitempty"`
	ActivityLevel    ActivityLevel     `json:"activity_level,omitempty"`
	Goal             GoalType          `json:"goal,omitempty"`
	DailyCalorieGoal float64           `json:"daily_calorie_goal,omitempty"`
	Preferences      map[string]string `json:"preferences,omitempty"`
	OnboardedAt      *time.Time        `json:"onboarded_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (u *UserProfile) IsOnboarded() bool {
	return u.OnboardedAt != nil
}

// BMI returns 0 when height or weight is missing.
func (u *UserProfile) BMI() float64 {
	if u.HeightCm <= 0 || u.WeightKg <= 0 {
		return 0
	}
	m := u.HeightCm / 100
	return u.WeightKg / (m * m)
}

// CalorieGoalOrDefault is used wherever a summary needs a goal before the
// user finished onboarding.
func (u *UserProfile) CalorieGoalOrDefault() float64 {
	if u.DailyCalorieGoal > 0 {
		return u.DailyCalorieGoal
	}
	return 2000
}
