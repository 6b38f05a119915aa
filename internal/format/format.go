// Package format builds the user-facing response texts. Plain text with
// emoji; no chat-platform markup, so nothing needs escaping.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/vithika-cyber/calorie-bot/internal/models"
)

// MealSummary is one logged meal condensed for a daily summary.
type MealSummary struct {
	MealType  models.MealType
	Calories  float64
	FoodNames []string
}

func FoodLogMessage(mealType models.MealType, items []models.EnrichedFood, totals models.Macros, loggedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Logged %s (%s)\n\n", title(string(mealType)), loggedAt.Format("3:04 PM"))

	for _, item := range items {
		fmt.Fprintf(&b, "%s %s %s %s: %.2f cal",
			foodEmoji(item.Name), trimFloat(item.Quantity), item.Unit, item.Name, item.Macros.Calories)

		var macros []string
		if item.Macros.Protein > 0 {
			macros = append(macros, fmt.Sprintf("P: %.2fg", item.Macros.Protein))
		}
		if item.Macros.Carbs > 0 {
			macros = append(macros, fmt.Sprintf("C: %.2fg", item.Macros.Carbs))
		}
		if item.Macros.Fat > 0 {
			macros = append(macros, fmt.Sprintf("F: %.2fg", item.Macros.Fat))
		}
		if len(macros) > 0 {
			b.WriteString(" | " + strings.Join(macros, " "))
		}
		if item.Source == models.SourceUnknown {
			b.WriteString("  (not found in database)")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nMeal total: %.2f calories\n", totals.Calories)
	fmt.Fprintf(&b, "Protein: %.2fg | Carbs: %.2fg | Fat: %.2fg", totals.Protein, totals.Carbs, totals.Fat)
	return b.String()
}

// DailyProgress is the running-total line appended to a log confirmation.
func DailyProgress(dayCalories, goal float64) string {
	pct := 0
	if goal > 0 {
		pct = int(dayCalories / goal * 100)
	}
	return fmt.Sprintf("📊 Daily Progress: %d/%d cal (%d%%)", int(dayCalories), int(goal), pct)
}

// UnknownItemsWarning tells the user which items were logged as zero.
func UnknownItemsWarning(names []string) string {
	return fmt.Sprintf("⚠️ I couldn't find %s in my database, so those were logged as 0 cal. "+
		"You can tell me the calories like: \"%s is about 250 calories\"",
		strings.Join(names, ", "), names[0])
}

// AIEstimateDisclaimer flags items whose nutrition came from the AI tier
// rather than the food database.
func AIEstimateDisclaimer(names []string) string {
	return fmt.Sprintf("ℹ️ %s nutrition was estimated by AI (not from the USDA database). Actual values may vary.",
		strings.Join(names, ", "))
}

// Clarification is the response when every item in a log request resolved
// to unknown; nothing gets persisted in that case.
func Clarification(names []string) string {
	first := "that food"
	if len(names) > 0 {
		first = names[0]
	}
	return fmt.Sprintf("🤔 I couldn't find nutritional info for %s.\n\n"+
		"Could you help me out? You can:\n"+
		"  1. Try a more common name (e.g. describe the food type instead of a brand)\n"+
		"  2. Tell me the calories directly, like: \"%s is about 250 calories\"\n"+
		"  3. Break it down into ingredients I might know",
		strings.Join(names, ", "), first)
}

func DailySummary(label string, totals models.Macros, goal float64, meals []MealSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Daily Summary - %s\n\n", label)

	pct := 0
	if goal > 0 {
		pct = int(totals.Calories / goal * 100)
	}
	remaining := goal - totals.Calories

	fmt.Fprintf(&b, "%d/%d calories (%d%%)\n", int(totals.Calories), int(goal), pct)
	switch {
	case remaining > -50 && remaining < 50:
		b.WriteString("🎯 Perfect! You hit your goal!\n")
	case remaining > 0:
		fmt.Fprintf(&b, "📈 %d calories remaining\n", int(remaining))
	default:
		fmt.Fprintf(&b, "📉 %d calories over\n", int(-remaining))
	}

	b.WriteString("\n" + ProgressBar(totals.Calories, goal, 10) + "\n\n")

	b.WriteString("Macros:\n")
	fmt.Fprintf(&b, "  Protein: %.2fg\n", totals.Protein)
	fmt.Fprintf(&b, "  Carbs: %.2fg\n", totals.Carbs)
	fmt.Fprintf(&b, "  Fat: %.2fg\n", totals.Fat)

	if len(meals) > 0 {
		b.WriteString("\nMeals logged:\n")
		for _, meal := range meals {
			fmt.Fprintf(&b, "%s %s: %d cal\n", mealEmoji(meal.MealType), title(string(meal.MealType)), int(meal.Calories))
			if len(meal.FoodNames) > 0 {
				fmt.Fprintf(&b, "    %s\n", strings.Join(meal.FoodNames, ", "))
			}
		}
	} else {
		b.WriteString("\nNo food logged yet.")
	}

	return strings.TrimRight(b.String(), "\n")
}

func RangeSummary(label string, days []models.DayTotals, goal float64) string {
	var totals models.Macros
	for _, day := range days {
		totals.Add(day.Totals)
	}

	numDays := len(days)
	plural := "s"
	if numDays == 1 {
		plural = ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s  (%d day%s)\n\n", label, numDays, plural)
	fmt.Fprintf(&b, "Total: %.2f cal | P: %.2fg  C: %.2fg  F: %.2fg\n",
		totals.Calories, totals.Protein, totals.Carbs, totals.Fat)

	if numDays > 0 {
		n := float64(numDays)
		fmt.Fprintf(&b, "Daily avg: %.2f cal | P: %.2fg  C: %.2fg  F: %.2fg\n",
			totals.Calories/n, totals.Protein/n, totals.Carbs/n, totals.Fat/n)
		if goal > 0 {
			fmt.Fprintf(&b, "Avg %d%% of your %d cal goal\n", int(totals.Calories/n/goal*100), int(goal))
		}
	}

	b.WriteString("\nPer-day breakdown:\n")
	for _, day := range days {
		fmt.Fprintf(&b, "  %s: %.2f cal\n", day.Day.Format("Mon, Jan 02"), day.Totals.Calories)
		if len(day.FoodNames) > 0 {
			fmt.Fprintf(&b, "    %s\n", strings.Join(day.FoodNames, ", "))
		}
	}
	if numDays == 0 {
		b.WriteString("  No food logged in this period.")
	}

	return strings.TrimRight(b.String(), "\n")
}

func ProgressBar(current, goal float64, length int) string {
	filled := 0
	if goal > 0 {
		filled = int(current / goal * float64(length))
		if filled > length {
			filled = length
		}
	}
	return strings.Repeat("🟩", filled) + strings.Repeat("⬜", length-filled)
}

func OnboardingComplete(goal, tdee float64, goalType models.GoalType) string {
	return fmt.Sprintf(`✅ You're all set!

Here's your personalized plan:
  Daily Calorie Goal: %.0f cal
  TDEE (Maintenance): %.0f cal
  Goal: %s

You can now start logging your meals! Just tell me what you eat, like:
  "I had 2 eggs and toast for breakfast"
  "Ate a chicken salad"
  "Had an apple as a snack"

Let's get started! 🎯`, goal, tdee, title(strings.ReplaceAll(string(goalType), "_", " ")))
}

func OnboardingPrompt(missing []string) string {
	base := `👋 Welcome to CalorieBot!

Before we start tracking, I need a few details to calculate your personalized calorie goal.

Please tell me:
1. Your age
2. Your gender (male/female)
3. Your current weight (in kg or lbs)
4. Your height (in cm or inches)
5. Your activity level (sedentary / lightly active / moderately active / very active)
6. Your goal (lose weight / maintain weight / gain weight)

You can say something like: "I'm 30 years old, male, 75kg, 175cm, moderately active, and want to lose weight"`

	if len(missing) > 0 {
		return fmt.Sprintf("Almost there! I still need: %s.\n\n%s", strings.Join(missing, ", "), base)
	}
	return base
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var foodEmojis = []struct {
	keyword string
	emoji   string
}{
	{"egg", "🥚"},
	{"toast", "🍞"},
	{"bread", "🍞"},
	{"apple", "🍎"},
	{"banana", "🍌"},
	{"orange", "🍊"},
	{"salad", "🥗"},
	{"chicken", "🍗"},
	{"rice", "🍚"},
	{"pasta", "🍝"},
	{"pizza", "🍕"},
	{"burger", "🍔"},
	{"sandwich", "🥪"},
	{"coffee", "☕"},
	{"tea", "🍵"},
	{"milk", "🥛"},
	{"cheese", "🧀"},
	{"fish", "🐟"},
	{"steak", "🥩"},
	{"meat", "🥩"},
	{"potato", "🥔"},
	{"avocado", "🥑"},
	{"soup", "🍲"},
	{"cake", "🍰"},
	{"cookie", "🍪"},
	{"chocolate", "🍫"},
}

func foodEmoji(name string) string {
	lower := strings.ToLower(name)
	for _, e := range foodEmojis {
		if strings.Contains(lower, e.keyword) {
			return e.emoji
		}
	}
	return "🍴"
}

func mealEmoji(meal models.MealType) string {
	switch meal {
	case models.MealBreakfast:
		return "🌅"
	case models.MealLunch:
		return "☀️"
	case models.MealDinner:
		return "🌙"
	case models.MealSnack:
		return "🍿"
	default:
		return "🍴"
	}
}
