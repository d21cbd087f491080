package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/transcript/internal/dispatch"
	"github.com/user/transcript/internal/types"
)

const maxTelegramMessage = 4096

// Target receives the events the bot sees. dispatch.Hub satisfies it.
type Target interface {
	AppendLiveEvent(ctx context.Context, key types.ConversationKey, event *types.Event) (bool, error)
	UpdateEvent(ctx context.Context, key types.ConversationKey, event *types.Event) (bool, error)
	Snapshot(ctx context.Context, key types.ConversationKey) (*dispatch.Transcript, error)
}

// Adapter bridges Telegram chats to transcripts. Every chat is one
// conversation keyed "telegram:<chat id>".
type Adapter struct {
	bot    *tgbotapi.BotAPI
	target Target
}

// New creates a Telegram adapter.
func New(token string, target Target) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Adapter{bot: bot, target: target}, nil
}

// Start long-polls for updates until ctx is cancelled.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			switch {
			case update.Message != nil:
				a.handleMessage(ctx, update.Message)
			case update.EditedMessage != nil:
				a.handleEdit(ctx, update.EditedMessage)
			}
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	event, ok := eventFromMessage(msg, a.bot.Self.ID)
	if !ok {
		slog.Debug("telegram: ignored message", "chat_id", msg.Chat.ID, "message_id", msg.MessageID)
		return
	}
	key := buildConversationKey(msg.Chat.ID)
	if _, err := a.target.AppendLiveEvent(ctx, key, event); err != nil {
		slog.Error("telegram: append failed", "conversation", string(key), "error", err)
	}
}

func (a *Adapter) handleEdit(ctx context.Context, msg *tgbotapi.Message) {
	event, ok := eventFromMessage(msg, a.bot.Self.ID)
	if !ok {
		return
	}
	key := buildConversationKey(msg.Chat.ID)
	found, err := a.target.UpdateEvent(ctx, key, event)
	if err != nil {
		slog.Error("telegram: update failed", "conversation", string(key), "error", err)
		return
	}
	if !found {
		slog.Debug("telegram: edit for message not in transcript", "conversation", string(key), "seq", event.Seq)
	}
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendResponse(chatID, "Hello! Messages you send here show up in the transcript.")

	case "status":
		t, err := a.target.Snapshot(ctx, buildConversationKey(chatID))
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		a.sendResponse(chatID, statusText(t))

	default:
		a.sendResponse(chatID, "Unknown command. Available: /start, /status")
	}
}

func statusText(t *dispatch.Transcript) string {
	return fmt.Sprintf("Conversation: %s\nEvents: %d\nSections: %d\nLast seq: %d",
		t.Key, t.Snapshot.Events, len(t.Snapshot.Sections), t.Snapshot.MaxSeq)
}

func (a *Adapter) sendResponse(chatID int64, text string) {
	for _, part := range splitMessage(text) {
		msg := tgbotapi.NewMessage(chatID, part)
		if _, err := a.bot.Send(msg); err != nil {
			slog.Warn("telegram: send message failed", "chat_id", chatID, "error", err)
		}
	}
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := min(maxTelegramMessage, len(text))
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}

func buildConversationKey(chatID int64) types.ConversationKey {
	return types.NewConversationKey("telegram", strconv.FormatInt(chatID, 10))
}
