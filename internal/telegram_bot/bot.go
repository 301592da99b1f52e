package telegram_bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"taskrouter/internal/intent"
	"taskrouter/internal/mentions"
	"taskrouter/internal/models"
	"taskrouter/internal/pipeline"
)

// Bot is the lightweight Telegram transport adapter. It pre-screens each
// incoming message with the shared intent classifier before handing it to
// the pipeline, and delivers task-created notifications. The pre-screen
// MUST use the same RuleBased instance as the pipeline: a private keyword
// list here would make detection drift between the two call sites.
type Bot struct {
	api          *tgbotapi.BotAPI
	rules        *intent.RuleBased
	processor    *pipeline.Processor
	notifyChatID int64
	logger       *zap.Logger
}

// NewBot creates a new Telegram transport adapter. Returns (nil, nil) when
// the integration is disabled.
func NewBot(token string, notifyChatID int64, rules *intent.RuleBased, processor *pipeline.Processor, logger *zap.Logger) (*Bot, error) {
	if token == "" {
		logger.Info("Telegram adapter is disabled (telegram.bot_token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram adapter authorized", zap.String("username", botAPI.Self.UserName))

	return &Bot{
		api:          botAPI,
		rules:        rules,
		processor:    processor,
		notifyChatID: notifyChatID,
		logger:       logger,
	}, nil
}

// Start begins listening for updates from Telegram.
func (b *Bot) Start(ctx context.Context) error {
	if b == nil {
		return nil
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram adapter started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram adapter shutting down")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if update.Message.IsCommand() {
				b.handleCommand(update.Message)
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage pre-screens the message and forwards work requests to the
// pipeline. A pipeline error is reported to the chat; the update loop keeps
// running regardless.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	senderID := message.From.UserName
	if senderID == "" {
		senderID = strconv.FormatInt(message.From.ID, 10)
	}

	addressed := mentions.Extract(message.Text)
	verdict := b.rules.Detect(ctx, message.Text, addressed)
	if !verdict.IsWorkRequest {
		b.logger.Debug("message is not a work request, skipping",
			zap.String("sender_id", senderID),
			zap.Int64("chat_id", message.Chat.ID))
		return
	}

	task, err := b.processor.Process(ctx, models.InboundMessage{
		SenderID:   senderID,
		RawText:    message.Text,
		ChannelID:  strconv.FormatInt(message.Chat.ID, 10),
		ReceivedAt: message.Time(),
	})
	if err != nil {
		b.logger.Error("Failed to process telegram message", zap.String("sender_id", senderID), zap.Error(err))
		b.sendMessage(message.Chat.ID, "Could not create a task from that message, please try again.")
		return
	}
	if task == nil {
		return
	}

	b.sendMessage(message.Chat.ID, fmt.Sprintf("Task created: %s (queue: %s)", task.Title, task.RouteTo))
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.sendMessage(message.Chat.ID, "Hi! Mention a teammate and ask for something (\"@sam please review the doc\") and I'll turn it into a task.")
	case "help":
		b.sendMessage(message.Chat.ID,
			"I watch this chat for work requests.\n"+
				"A message becomes a task when it addresses someone and asks them to do something.\n"+
				"Your Telegram ID: "+strconv.FormatInt(message.From.ID, 10))
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help.")
	}
}

// PublishTaskCreated implements events.Publisher: it notifies the
// configured chat about every created task.
func (b *Bot) PublishTaskCreated(_ context.Context, event models.TaskCreatedEvent) error {
	if b == nil || b.notifyChatID == 0 {
		return nil
	}

	assignee := "unassigned"
	if event.AssigneeID != nil {
		assignee = *event.AssigneeID
	}

	text := fmt.Sprintf("New task %s\nQueue: %s\nAssignee: %s\nCreated: %s",
		event.TaskID, event.RouteTo, assignee, time.Now().Format(time.RFC3339))

	msg := tgbotapi.NewMessage(b.notifyChatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send task notification: %w", err)
	}
	return nil
}

// sendMessage is a helper to send a simple text message.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
