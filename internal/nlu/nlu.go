// Package nlu wraps the language-model capabilities the bot consumes:
// intent classification, food extraction, nutrition estimation, and profile
// extraction. Every call is call-and-response JSON and independently
// failable; malformed output is treated the same as an explicit failure.
package nlu

import (
	"context"

	"github.com/vithika-cyber/calorie-bot/internal/models"
)

// ProfileFields is a partial extraction result; nil means the field was not
// present in the message.
type ProfileFields struct {
	Age           *int     `json:"age"`
	Gender        *string  `json:"gender"`
	WeightKg      *float64 `json:"weight_kg"`
	HeightCm      *float64 `json:"height_cm"`
	ActivityLevel *string  `json:"activity_level"`
	Goal          *string  `json:"goal"`
}

// Complete reports whether every required onboarding field is present.
func (p *ProfileFields) Complete() bool {
	return p.Age != nil && p.Gender != nil && p.WeightKg != nil &&
		p.HeightCm != nil && p.ActivityLevel != nil && p.Goal != nil
}

// Missing lists the absent required fields, for re-prompting.
func (p *ProfileFields) Missing() []string {
	var missing []string
	if p.Age == nil {
		missing = append(missing, "age")
	}
	if p.Gender == nil {
		missing = append(missing, "gender")
	}
	if p.WeightKg == nil {
		missing = append(missing, "weight")
	}
	if p.HeightCm == nil {
		missing = append(missing, "height")
	}
	if p.ActivityLevel == nil {
		missing = append(missing, "activity level")
	}
	if p.Goal == nil {
		missing = append(missing, "goal")
	}
	return missing
}

// Extractor is the full NLU capability surface consumed by the router and
// the orchestrator.
type Extractor interface {
	ClassifyIntent(ctx context.Context, message string, history []models.ConversationTurn) (string, error)
	ExtractFoods(ctx context.Context, message string, history []models.ConversationTurn) (*models.ParsedMeal, error)
	EstimateNutrition(ctx context.Context, foodPhrase string) (*models.Macros, error)
	ExtractProfile(ctx context.Context, message string) (*ProfileFields, error)
}
