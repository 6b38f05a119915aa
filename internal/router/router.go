// Package router classifies one message into an intent. Keyword matching
// is free and handles most traffic; the AI classifier is reserved for
// genuinely ambiguous input.
package router

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vithika-cyber/calorie-bot/internal/models"
	"github.com/vithika-cyber/calorie-bot/internal/nlu"
	"go.uber.org/zap"
)

type Intent string

const (
	IntentLogFood          Intent = "log_food"
	IntentQueryToday       Intent = "query_today"
	IntentQueryHistory     Intent = "query_history"
	IntentGreeting         Intent = "greeting"
	IntentHelp             Intent = "help"
	IntentOnboardingNeeded Intent = "onboarding_needed"
	IntentOther            Intent = "other"
)

// keywordGroup is an ordered set of phrases claiming one intent. Query
// groups run before the log-food group so a shared keyword like "eat"
// cannot be mis-claimed by food logging.
type keywordGroup struct {
	intent   Intent
	keywords []string
}

var keywordGroups = []keywordGroup{
	{IntentQueryHistory, []string{
		"yesterday", "last week", "this week", "last 3 days", "past 3 days",
		"last month", "history", "show me last",
	}},
	{IntentQueryToday, []string{
		"today", "so far", "how many calories", "calories have i had",
		"my progress", "summary", "what did i eat", "what have i eaten",
		"daily total",
	}},
	{IntentHelp, []string{
		"help", "how does this work", "what can you do", "commands",
		"how do i use",
	}},
	{IntentGreeting, []string{
		"hi", "hey", "yo", "hello", "howdy", "greetings", "good morning",
		"good afternoon", "good evening", "start",
	}},
	{IntentLogFood, []string{
		"ate", "eat", "had", "drank", "i just", "for breakfast", "for lunch",
		"for dinner", "breakfast", "lunch", "dinner", "snack", "log",
	}},
}

// aiLabels maps classifier output onto the closed intent set; anything
// unmapped collapses to other.
var aiLabels = map[string]Intent{
	"log_food":      IntentLogFood,
	"query_today":   IntentQueryToday,
	"query_history": IntentQueryHistory,
	"greeting":      IntentGreeting,
	"help":          IntentHelp,
}

type Router struct {
	classifier nlu.Extractor
	logger     *zap.Logger
}

func New(classifier nlu.Extractor, logger *zap.Logger) *Router {
	return &Router{classifier: classifier, logger: logger}
}

// Route resolves the intent for one message. A user who has not finished
// onboarding is routed there unconditionally.
func (r *Router) Route(ctx context.Context, message string, user *models.UserProfile, history []models.ConversationTurn) Intent {
	if user == nil || !user.IsOnboarded() {
		return IntentOnboardingNeeded
	}

	msg := strings.ToLower(strings.TrimSpace(message))

	for _, group := range keywordGroups {
		for _, kw := range group.keywords {
			if matches(msg, kw) {
				return group.intent
			}
		}
	}

	if r.classifier == nil {
		return IntentOther
	}

	label, err := r.classifier.ClassifyIntent(ctx, message, history)
	if err != nil {
		r.logger.Warn("intent classification failed", zap.Error(err))
		return IntentOther
	}

	intent, ok := aiLabels[label]
	if !ok {
		return IntentOther
	}
	return intent
}

// matches uses substring containment for keywords longer than three
// characters and strict word-boundary matching for shorter ones, so a
// token like "hi" cannot match inside "chicken".
func matches(msg, keyword string) bool {
	if len(keyword) > 3 {
		return strings.Contains(msg, keyword)
	}
	return containsWord(msg, keyword)
}

func containsWord(msg, word string) bool {
	for start := 0; start+len(word) <= len(msg); {
		idx := strings.Index(msg[start:], word)
		if idx < 0 {
			return false
		}
		i := start + idx

		before, _ := utf8.DecodeLastRuneInString(msg[:i])
		after, _ := utf8.DecodeRuneInString(msg[i+len(word):])
		beforeOK := i == 0 || !isWordRune(before)
		afterOK := i+len(word) == len(msg) || !isWordRune(after)
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
