// Package orchestrator runs the per-message pipeline: admission check,
// context load, intent routing, handler dispatch, history append. One
// ConversationState is created per inbound message and discarded after the
// response is produced; nothing mutates it concurrently.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vithika-cyber/calorie-bot/internal/format"
	"github.com/vithika-cyber/calorie-bot/internal/health"
	"github.com/vithika-cyber/calorie-bot/internal/models"
	"github.com/vithika-cyber/calorie-bot/internal/nlu"
	"github.com/vithika-cyber/calorie-bot/internal/nutrition"
	"github.com/vithika-cyber/calorie-bot/internal/ratelimit"
	"github.com/vithika-cyber/calorie-bot/internal/router"
	"github.com/vithika-cyber/calorie-bot/internal/storage"
	"go.uber.org/zap"
)

const (
	fallbackResponse = "I'm not sure how to help with that. Try saying something like \"I had an apple\" or \"show me today's meals\"."
	apologyResponse  = "Sorry, I encountered an error processing your message. Please try again."
)

// ConversationState flows through one pipeline run. Fields fill in as
// steps complete; handlers read what earlier steps produced.
type ConversationState struct {
	UserID  int64
	ChatID  int64
	Message string

	Intent  router.Intent
	User    *models.UserProfile
	History []models.ConversationTurn

	ParsedFoods   []models.FoodItem
	EnrichedFoods []models.EnrichedFood
	Totals        models.Macros

	Response string
	Err      error
}

type handlerFunc func(ctx context.Context, state *ConversationState)

type Orchestrator struct {
	limiter      *ratelimit.Limiter
	store        storage.Storage
	extractor    nlu.Extractor
	resolver     *nutrition.Resolver
	router       *router.Router
	historyLimit int
	logger       *zap.Logger
	now          func() time.Time

	handlers map[router.Intent]handlerFunc
}

func New(
	limiter *ratelimit.Limiter,
	store storage.Storage,
	extractor nlu.Extractor,
	resolver *nutrition.Resolver,
	rtr *router.Router,
	historyLimit int,
	logger *zap.Logger,
) *Orchestrator {
	o := &Orchestrator{
		limiter:      limiter,
		store:        store,
		extractor:    extractor,
		resolver:     resolver,
		router:       rtr,
		historyLimit: historyLimit,
		logger:       logger,
		now:          time.Now,
	}
	o.handlers = map[router.Intent]handlerFunc{
		router.IntentLogFood:          o.handleLogFood,
		router.IntentQueryToday:       o.handleQuery,
		router.IntentQueryHistory:     o.handleQuery,
		router.IntentGreeting:         o.handleGreeting,
		router.IntentHelp:             o.handleHelp,
		router.IntentOnboardingNeeded: o.handleOnboarding,
		router.IntentOther:            o.handleFallback,
	}
	return o
}

// Process runs the full pipeline for one message and returns the response
// text. It never returns an error: every failure mode has a user-facing
// plain-language outcome, and internal causes go to the log.
func (o *Orchestrator) Process(ctx context.Context, userID, chatID int64, message string) string {
	if decision := o.limiter.Admit(userID); !decision.Allowed {
		wait := int(decision.RetryAfter.Seconds()) + 1
		return fmt.Sprintf("⏳ You're sending messages too fast. Try again in %d seconds.", wait)
	}

	state := &ConversationState{
		UserID:  userID,
		ChatID:  chatID,
		Message: message,
	}

	o.runPipeline(ctx, state)

	if state.Response == "" {
		state.Response = fallbackResponse
	}

	o.appendHistory(ctx, state)
	return state.Response
}

func (o *Orchestrator) runPipeline(ctx context.Context, state *ConversationState) {
	user, err := o.store.GetOrCreateUser(ctx, state.UserID, state.ChatID)
	if err != nil {
		o.logger.Error("failed to load user context",
			zap.Error(err),
			zap.Int64("user_id", state.UserID))
		state.Err = err
		state.Response = apologyResponse
		return
	}
	state.User = user

	history, err := o.store.RecentTurns(ctx, state.UserID, o.historyLimit)
	if err != nil {
		o.logger.Error("failed to load history",
			zap.Error(err),
			zap.Int64("user_id", state.UserID))
		state.Err = err
		state.Response = apologyResponse
		return
	}
	state.History = history

	state.Intent = o.router.Route(ctx, state.Message, state.User, state.History)
	o.logger.Info("routed message",
		zap.Int64("user_id", state.UserID),
		zap.String("intent", string(state.Intent)))

	handler, ok := o.handlers[state.Intent]
	if !ok {
		handler = o.handleFallback
	}
	handler(ctx, state)
}

func (o *Orchestrator) appendHistory(ctx context.Context, state *ConversationState) {
	turns := []models.ConversationTurn{
		{UserID: state.UserID, Role: models.RoleUser, Text: state.Message, CreatedAt: o.now()},
		{UserID: state.UserID, Role: models.RoleBot, Text: state.Response, CreatedAt: o.now()},
	}
	for i := range turns {
		if err := o.store.AppendTurn(ctx, &turns[i]); err != nil {
			o.logger.Warn("could not save conversation history",
				zap.Error(err),
				zap.Int64("user_id", state.UserID))
			return
		}
	}
}

func (o *Orchestrator) handleLogFood(ctx context.Context, state *ConversationState) {
	parsed, err := o.extractor.ExtractFoods(ctx, state.Message, state.History)
	if err != nil {
		o.logger.Error("food extraction failed",
			zap.Error(err),
			zap.Int64("user_id", state.UserID),
			zap.String("intent", string(state.Intent)))
		state.Err = err
		state.Response = "I couldn't identify any food items in your message. Could you try describing what you ate?"
		return
	}
	if len(parsed.Foods) == 0 {
		state.Response = "I couldn't identify any food items in your message. Could you try describing what you ate?"
		return
	}
	state.ParsedFoods = parsed.Foods

	state.EnrichedFoods = o.resolver.ResolveAll(ctx, state.ParsedFoods)
	state.Totals = nutrition.Totals(state.EnrichedFoods)

	var unknownNames, aiNames []string
	known := 0
	for _, item := range state.EnrichedFoods {
		switch item.Source {
		case models.SourceUnknown:
			unknownNames = append(unknownNames, item.Name)
		case models.SourceAIEstimated:
			aiNames = append(aiNames, item.Name)
			known++
		default:
			known++
		}
	}

	// Persisting a zero-value entry helps nobody; ask for clarification
	// instead.
	if known == 0 {
		state.Response = format.Clarification(unknownNames)
		return
	}

	mealType := state.EnrichedFoods[0].MealType
	entry := &models.FoodLogEntry{
		UserID:   state.UserID,
		ChatID:   state.ChatID,
		LoggedAt: o.now(),
		MealType: mealType,
		RawText:  state.Message,
		Items:    state.EnrichedFoods,
		Totals:   state.Totals,
	}
	if err := o.store.CreateFoodLog(ctx, entry); err != nil {
		o.logger.Error("failed to store food log",
			zap.Error(err),
			zap.Int64("user_id", state.UserID),
			zap.String("intent", string(state.Intent)))
		state.Err = err
		state.Response = apologyResponse
		return
	}

	dayTotals, err := o.dayTotals(ctx, state.UserID, o.now())
	if err != nil {
		o.logger.Warn("failed to compute daily totals", zap.Error(err), zap.Int64("user_id", state.UserID))
		dayTotals = state.Totals
	}

	var parts []string
	parts = append(parts, format.FoodLogMessage(mealType, state.EnrichedFoods, state.Totals, entry.LoggedAt))
	parts = append(parts, format.DailyProgress(dayTotals.Calories, state.User.CalorieGoalOrDefault()))
	if len(unknownNames) > 0 {
		parts = append(parts, format.UnknownItemsWarning(unknownNames))
	}
	if len(aiNames) > 0 {
		parts = append(parts, format.AIEstimateDisclaimer(aiNames))
	}
	state.Response = strings.Join(parts, "\n\n")
}

func (o *Orchestrator) handleQuery(ctx context.Context, state *ConversationState) {
	ref := parseDateReference(state.Message, o.now())
	goal := state.User.CalorieGoalOrDefault()

	if ref.start.Equal(ref.end) {
		logs, err := o.store.FoodLogsBetween(ctx, state.UserID, ref.start, ref.start.AddDate(0, 0, 1))
		if err != nil {
			o.logger.Error("failed to query food logs",
				zap.Error(err),
				zap.Int64("user_id", state.UserID),
				zap.String("intent", string(state.Intent)))
			state.Err = err
			state.Response = "Sorry, I had trouble retrieving that information."
			return
		}

		var totals models.Macros
		meals := make([]format.MealSummary, 0, len(logs))
		for _, log := range logs {
			totals.Add(log.Totals)
			meals = append(meals, format.MealSummary{
				MealType:  log.MealType,
				Calories:  log.Totals.Calories,
				FoodNames: foodNames(log.Items),
			})
		}
		state.Response = format.DailySummary(ref.label, totals, goal, meals)
		return
	}

	logs, err := o.store.FoodLogsBetween(ctx, state.UserID, ref.start, ref.end.AddDate(0, 0, 1))
	if err != nil {
		o.logger.Error("failed to query food logs",
			zap.Error(err),
			zap.Int64("user_id", state.UserID),
			zap.String("intent", string(state.Intent)))
		state.Err = err
		state.Response = "Sorry, I had trouble retrieving that information."
		return
	}
	state.Response = format.RangeSummary(ref.label, groupByDay(logs), goal)
}

func (o *Orchestrator) handleGreeting(_ context.Context, state *ConversationState) {
	state.Response = "👋 Hey there! Ready to log your meals? Just tell me what you ate!"
}

func (o *Orchestrator) handleHelp(_ context.Context, state *ConversationState) {
	state.Response = `How to use CalorieBot:

Logging food:
Just tell me what you ate! Examples:
  "I had 2 eggs and toast for breakfast"
  "Ate a chicken salad for lunch"
  "Had a banana as a snack"

Checking progress:
  "What did I eat today?"
  "How many calories so far?"
  "Show me yesterday"
  "What about last week?"

Tips:
  Be specific about quantities when possible
  I understand natural language - just chat normally!
  I'll ask for clarification if I'm unsure

Need anything else?`
}

func (o *Orchestrator) handleOnboarding(ctx context.Context, state *ConversationState) {
	fields, err := o.extractor.ExtractProfile(ctx, state.Message)
	if err != nil {
		o.logger.Warn("profile extraction failed",
			zap.Error(err),
			zap.Int64("user_id", state.UserID))
		state.Response = format.OnboardingPrompt(nil)
		return
	}
	if !fields.Complete() {
		state.Response = format.OnboardingPrompt(fields.Missing())
		return
	}

	activity := models.ActivityLevel(*fields.ActivityLevel)
	goalType := models.GoalType(*fields.Goal)

	tdee := health.TDEE(*fields.WeightKg, *fields.HeightCm, *fields.Age, *fields.Gender, activity)
	calorieGoal := health.CalorieGoal(tdee, goalType)

	user := state.User
	user.Age = *fields.Age
	user.Gender = *fields.Gender
	user.WeightKg = *fields.WeightKg
	user.HeightCm = *fields.HeightCm
	user.ActivityLevel = activity
	user.Goal = goalType
	user.DailyCalorieGoal = calorieGoal
	user.TargetWeightKg = targetWeight(*fields.WeightKg, goalType)
	onboardedAt := o.now()
	user.OnboardedAt = &onboardedAt

	if err := o.store.UpdateUser(ctx, user); err != nil {
		o.logger.Error("failed to persist profile",
			zap.Error(err),
			zap.Int64("user_id", state.UserID),
			zap.String("intent", string(state.Intent)))
		state.Err = err
		state.Response = apologyResponse
		return
	}

	state.Response = format.OnboardingComplete(calorieGoal, health.Round2(tdee), goalType)
}

func (o *Orchestrator) handleFallback(_ context.Context, state *ConversationState) {
	state.Response = fallbackResponse
}

func (o *Orchestrator) dayTotals(ctx context.Context, userID int64, day time.Time) (models.Macros, error) {
	start := truncateToDay(day)
	logs, err := o.store.FoodLogsBetween(ctx, userID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return models.Macros{}, err
	}

	var totals models.Macros
	for _, log := range logs {
		totals.Add(log.Totals)
	}
	return totals, nil
}

func groupByDay(logs []*models.FoodLogEntry) []models.DayTotals {
	var days []models.DayTotals
	for _, log := range logs {
		day := truncateToDay(log.LoggedAt)
		if len(days) == 0 || !days[len(days)-1].Day.Equal(day) {
			days = append(days, models.DayTotals{Day: day})
		}
		last := &days[len(days)-1]
		last.Totals.Add(log.Totals)
		last.FoodNames = append(last.FoodNames, foodNames(log.Items)...)
	}
	return days
}

func foodNames(items []models.EnrichedFood) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			names = append(names, item.Name)
		}
	}
	return names
}

// targetWeight follows the onboarding convention: five kilograms from
// current weight in the direction of the goal.
func targetWeight(weightKg float64, goal models.GoalType) float64 {
	switch goal {
	case models.GoalLoseWeight:
		return weightKg - 5
	case models.GoalGainWeight:
		return weightKg + 5
	default:
		return weightKg
	}
}
