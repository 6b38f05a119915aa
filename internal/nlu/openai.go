package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/vithika-cyber/calorie-bot/internal/models"
	"go.uber.org/zap"
)

const classifyIntentPrompt = `You are an intent classifier for a calorie tracking bot.

Classify the user's message into one of these intents:
- log_food: Logging food they ate (e.g., "I had pizza", "Ate an apple")
- query_history: Asking about past meals (e.g., "What did I eat yesterday?")
- query_today: Asking about today's progress (e.g., "How many calories today?")
- greeting: Greeting or casual chat (e.g., "Hi", "Hello")
- help: Asking for help (e.g., "How does this work?")
- other: Unclear or doesn't fit above

Return JSON: {"intent": "intent_name", "confidence": "high/medium/low"}`

const extractFoodsPrompt = `You are a nutrition assistant that extracts food items from natural language.

Extract all food items mentioned with their quantities and units. Be smart about inferring:
- Standard serving sizes (e.g., "an apple" = 1 medium apple)
- Common portions (e.g., "toast" = 1 slice)
- Meal type from context (breakfast/lunch/dinner/snack)
- Pronouns and ellipsis from the recent conversation (e.g., "and a coffee" extends the last meal)

Return a JSON object with this structure:
{
    "foods": [
        {"name": "food name (lowercase)", "quantity": 1, "unit": "serving unit", "meal_type": "breakfast/lunch/dinner/snack"}
    ],
    "confidence": "high/medium/low",
    "meal_type": "overall meal type"
}

Unit guidelines:
- Use standard units: "serving", "small", "medium", "large", "cup", "piece", "slice", "g", "oz"
- NEVER use the food name as the unit (wrong: unit="nacho", correct: unit="piece")
- If unsure about quantity, default to 1 serving.`

const extractProfilePrompt = `Extract the following information from the user's message if present.

Return JSON with these fields (use null if not found):
- age (number)
- gender ("male" or "female")
- weight_kg (number, convert from lbs if needed: lbs * 0.453592)
- height_cm (number, convert from inches if needed: inches * 2.54)
- activity_level ("sedentary", "lightly_active", "moderately_active", "very_active", or "extra_active")
- goal ("lose_weight", "maintain_weight", or "gain_weight")`

// OpenAIExtractor implements Extractor against the OpenAI chat completion
// API. Responses are requested as plain JSON; markdown fences are stripped
// before decoding because models add them anyway.
type OpenAIExtractor struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

func NewOpenAIExtractor(apiKey, model string, maxTokens int, temperature float64, timeout time.Duration, logger *zap.Logger) *OpenAIExtractor {
	return &OpenAIExtractor{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

func (e *OpenAIExtractor) ClassifyIntent(ctx context.Context, message string, history []models.ConversationTurn) (string, error) {
	user := "Classify this message: " + message
	if h := historyBlock(history); h != "" {
		user += "\n\nRecent conversation for context:\n" + h
	}

	var result struct {
		Intent     string `json:"intent"`
		Confidence string `json:"confidence"`
	}
	if err := e.completeJSON(ctx, classifyIntentPrompt, user, &result); err != nil {
		return "", err
	}

	e.logger.Debug("classified intent",
		zap.String("intent", result.Intent),
		zap.String("confidence", result.Confidence))
	return result.Intent, nil
}

func (e *OpenAIExtractor) ExtractFoods(ctx context.Context, message string, history []models.ConversationTurn) (*models.ParsedMeal, error) {
	user := "Parse this food message: " + message
	if h := historyBlock(history); h != "" {
		user += "\n\nRecent conversation for context:\n" + h
	}

	var result struct {
		Foods []struct {
			Name     string  `json:"name"`
			Quantity float64 `json:"quantity"`
			Unit     string  `json:"unit"`
			MealType string  `json:"meal_type"`
			Notes    string  `json:"notes"`
		} `json:"foods"`
		Confidence string `json:"confidence"`
		MealType   string `json:"meal_type"`
	}
	if err := e.completeJSON(ctx, extractFoodsPrompt, user, &result); err != nil {
		return nil, err
	}

	parsed := &models.ParsedMeal{
		MealType:   models.ParseMealType(result.MealType),
		Confidence: result.Confidence,
	}
	for _, f := range result.Foods {
		quantity := f.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		parsed.Foods = append(parsed.Foods, models.FoodItem{
			Name:     strings.ToLower(strings.TrimSpace(f.Name)),
			Quantity: quantity,
			Unit:     f.Unit,
			MealType: models.ParseMealType(f.MealType),
			Notes:    f.Notes,
		})
	}

	e.logger.Debug("extracted foods", zap.Int("count", len(parsed.Foods)))
	return parsed, nil
}

func (e *OpenAIExtractor) EstimateNutrition(ctx context.Context, foodPhrase string) (*models.Macros, error) {
	prompt := fmt.Sprintf(`Estimate the nutritional content for: %s

Return ONLY a JSON object with these fields (numbers only, no text):
{"calories": 0, "protein": 0, "carbs": 0, "fat": 0}

Use your knowledge of typical nutritional values for the full stated serving.
If you truly have no idea what this food is, return: {"calories": 0, "protein": 0, "carbs": 0, "fat": 0, "unknown": true}`, foodPhrase)

	var result struct {
		models.Macros
		Unknown bool `json:"unknown"`
	}
	if err := e.completeJSON(ctx, "", prompt, &result); err != nil {
		return nil, err
	}
	if result.Unknown || result.Calories <= 0 {
		return nil, nil
	}
	return &result.Macros, nil
}

func (e *OpenAIExtractor) ExtractProfile(ctx context.Context, message string) (*ProfileFields, error) {
	var result ProfileFields
	if err := e.completeJSON(ctx, extractProfilePrompt, "Message: "+message, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *OpenAIExtractor) completeJSON(ctx context.Context, system, user string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user + "\n\nIMPORTANT: Respond ONLY with valid JSON, no other text.",
	})

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		MaxTokens:   e.maxTokens,
		Temperature: float32(e.temperature),
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion returned no choices")
	}

	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		e.logger.Warn("failed to parse model response",
			zap.Error(err),
			zap.String("response", content))
		return fmt.Errorf("parsing model response: %w", err)
	}
	return nil
}

func historyBlock(history []models.ConversationTurn) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	for _, turn := range history {
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
