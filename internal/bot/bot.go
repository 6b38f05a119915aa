package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vithika-cyber/calorie-bot/internal/orchestrator"
	"github.com/vithika-cyber/calorie-bot/internal/storage"
	"go.uber.org/zap"
)

type Bot struct {
	api          *tgbotapi.BotAPI
	orchestrator *orchestrator.Orchestrator
	storage      storage.Storage
	logger       *zap.Logger
}

func New(token string, orch *orchestrator.Orchestrator, store storage.Storage, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:          api,
		orchestrator: orch,
		storage:      store,
		logger:       logger,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	response := b.orchestrator.Process(ctx, message.From.ID, message.Chat.ID, message.Text)
	b.sendMessage(message.Chat.ID, response)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		// Routed like a greeting so a new user lands in onboarding.
		b.sendMessage(message.Chat.ID, b.orchestrator.Process(ctx, message.From.ID, message.Chat.ID, "hi"))
	case "help":
		b.sendMessage(message.Chat.ID, b.orchestrator.Process(ctx, message.From.ID, message.Chat.ID, "help"))
	case "today":
		b.sendMessage(message.Chat.ID, b.orchestrator.Process(ctx, message.From.ID, message.Chat.ID, "what did I eat today"))
	case "history":
		b.sendMessage(message.Chat.ID, b.orchestrator.Process(ctx, message.From.ID, message.Chat.ID, "show me last week"))
	case "undo":
		b.handleUndo(ctx, message)
	case "delete_me":
		b.handleDeleteMe(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleUndo(ctx context.Context, message *tgbotapi.Message) {
	deleted, err := b.storage.DeleteLastFoodLog(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("failed to delete last food log",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't remove your last entry. Please try again.")
		return
	}
	if !deleted {
		b.sendMessage(message.Chat.ID, "You don't have any logged meals to remove.")
		return
	}
	b.sendMessage(message.Chat.ID, "🗑 Removed your last logged meal.")
}

func (b *Bot) handleDeleteMe(ctx context.Context, message *tgbotapi.Message) {
	if err := b.storage.DeleteUser(ctx, message.From.ID, message.Chat.ID); err != nil {
		b.logger.Error("failed to delete user",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't delete your data. Please try again.")
		return
	}
	b.sendMessage(message.Chat.ID, "All your data has been deleted. Send /start whenever you want to begin again.")
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendMessage(chatID, "⚠️ "+text)
}
