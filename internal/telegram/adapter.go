package telegram

import (
	"context"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/prakharai/internal/chat"
	"github.com/user/prakharai/internal/types"
)

const maxTelegramMessage = 4096

// Adapter is an optional Telegram front end over the chat orchestrator:
// each Telegram chat maps to one conversation, replies carry the finalized
// assistant text.
type Adapter struct {
	bot          *tgbotapi.BotAPI
	orchestrator *chat.Orchestrator
	sessions     types.SessionStore

	mu    sync.Mutex
	convs map[int64]*chat.Conversation
}

// New creates a Telegram adapter.
func New(token string, orchestrator *chat.Orchestrator, sessions types.SessionStore) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		bot:          bot,
		orchestrator: orchestrator,
		sessions:     sessions,
		convs:        make(map[int64]*chat.Conversation),
	}, nil
}

// Start begins long-polling for Telegram updates.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

// conversation returns the working conversation for a Telegram chat,
// creating one on first contact.
func (a *Adapter) conversation(chatID int64) *chat.Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()

	conv, ok := a.convs[chatID]
	if !ok {
		conv = chat.NewConversation()
		a.convs[chatID] = conv
	}
	return conv
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		a.handleCommand(chatID, msg.Command())
		return
	}

	conv := a.conversation(chatID)
	reply, err := a.orchestrator.SendTurn(ctx, conv, msg.Text, nil)
	if err != nil {
		slog.Error("telegram turn failed", "chat_id", chatID, "error", err)
		if reply == nil {
			a.send(chatID, "Sorry, I encountered an error processing your message.")
			return
		}
	}
	if reply != nil && reply.Text != "" {
		a.send(chatID, reply.Text)
	}
}

func (a *Adapter) handleCommand(chatID int64, command string) {
	switch command {
	case "start":
		a.send(chatID, chat.Greeting(""))
	case "new":
		a.mu.Lock()
		a.convs[chatID] = chat.NewConversation()
		a.mu.Unlock()
		a.sessions.SetActive("")
		a.send(chatID, "Starting a new chat.")
	default:
		a.send(chatID, "Unknown command.")
	}
}

// Broadcast sends a notification to every chat seen this run. Used for
// timer expiry.
func (a *Adapter) Broadcast(message string) error {
	a.mu.Lock()
	ids := make([]int64, 0, len(a.convs))
	for id := range a.convs {
		ids = append(ids, id)
	}
	a.mu.Unlock()

	for _, id := range ids {
		a.send(id, message)
	}
	return nil
}

func (a *Adapter) send(chatID int64, text string) {
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxTelegramMessage {
			chunk = chunk[:maxTelegramMessage]
		}
		text = text[len(chunk):]

		if _, err := a.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			slog.Error("telegram send failed", "chat_id", chatID, "error", err)
			return
		}
	}
}
