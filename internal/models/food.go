package models

import (
	"strings"
	"time"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealOther     MealType = "other"
)

// ParseMealType maps free-form labels onto the closed meal set.
func ParseMealType(s string) MealType {
	switch t := MealType(strings.ToLower(strings.TrimSpace(s))); t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return t
	default:
		return MealOther
	}
}

// Source records which resolution tier produced a food item's nutrition.
type Source string

const (
	SourceCache       Source = "cache"
	SourceUSDA        Source = "usda"
	SourceAIEstimated Source = "ai_estimated"
	SourceUnknown     Source = "unknown"
)

// FoodItem is one food as extracted from the user's message, before
// nutrition resolution.
type FoodItem struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	MealType MealType `json:"meal_type"`
	Notes    string   `json:"notes,omitempty"`
}

// Macros holds nutrition values; per 100 g in a FoodRecord, per serving
// everywhere else.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
}

func (m *Macros) Add(o Macros) {
	m.Calories += o.Calories
	m.Protein += o.Protein
	m.Carbs += o.Carbs
	m.Fat += o.Fat
	m.Fiber += o.Fiber
	m.Sugar += o.Sugar
}

// FoodRecord is one candidate from the nutrition database, macros per 100 g
// of product. It is also the verbatim payload stored in the nutrition cache.
type FoodRecord struct {
	FDCID       int64  `json:"fdc_id"`
	Description string `json:"description"`
	DataType    string `json:"data_type,omitempty"`
	Per100g     Macros `json:"per_100g"`
}

// EnrichedFood is a FoodItem with resolved nutrition and provenance.
type EnrichedFood struct {
	FoodItem
	Macros     Macros  `json:"macros"`
	Grams      float64 `json:"grams,omitempty"`
	Source     Source  `json:"source"`
	Confidence string  `json:"confidence"`
	MatchedAs  string  `json:"matched_as,omitempty"`
	FDCID      int64   `json:"fdc_id,omitempty"`
}

// ParsedMeal is the structured extraction result for one message.
type ParsedMeal struct {
	Foods      []FoodItem `json:"foods"`
	MealType   MealType   `json:"meal_type"`
	Confidence string     `json:"confidence"`
}

// FoodLogEntry is one logged meal. Totals are denormalized so summary
// queries never re-walk the items.
type FoodLogEntry struct {
	ID       string         `json:"id"`
	UserID   int64          `json:"user_id"`
	ChatID   int64          `json:"chat_id"`
	LoggedAt time.Time      `json:"logged_at"`
	MealType MealType       `json:"meal_type"`
	RawText  string         `json:"raw_text"`
	Items    []EnrichedFood `json:"items"`
	Totals   Macros         `json:"totals"`
}
