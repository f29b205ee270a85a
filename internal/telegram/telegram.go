package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/i474232898/aurora-bot/internal/bot"
	"github.com/i474232898/aurora-bot/internal/notify"
)

const pollTimeoutSeconds = 60

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram chat transport. It sends messages and routes incoming
// commands to registered handlers.
type Bot struct {
	api    botAPI
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]bot.Handler
}

// New connects to the Bot API with token.
func New(token string, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)
	return newWithAPI(api, logger), nil
}

func newWithAPI(api botAPI, logger *slog.Logger) *Bot {
	return &Bot{
		api:      api,
		logger:   logger,
		handlers: make(map[string]bot.Handler),
	}
}

// Send delivers text to chatID. HTML mode enables Telegram's HTML parse mode.
func (b *Bot) Send(ctx context.Context, chatID int64, text string, mode notify.RenderMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if mode == notify.ModeHTML {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send to %d: %w", chatID, err)
	}
	return nil
}

// Handle registers h for /command.
func (b *Bot) Handle(command string, h bot.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[command] = h
}

// Run long-polls for updates and dispatches commands until ctx is done.
// Each command runs in its own goroutine; Run waits for them before returning.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h, chatID, command, ok := b.route(update)
			if !ok {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.dispatch(ctx, h, command, chatID)
			}()
		}
	}
}

func (b *Bot) route(update tgbotapi.Update) (bot.Handler, int64, string, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return nil, 0, "", false
	}

	command := msg.Command()
	b.mu.RLock()
	h, ok := b.handlers[command]
	b.mu.RUnlock()
	if !ok {
		b.logger.Debug("unknown command ignored", "command", command, "chat_id", msg.Chat.ID)
		return nil, 0, "", false
	}
	return h, msg.Chat.ID, command, true
}

func (b *Bot) dispatch(ctx context.Context, h bot.Handler, command string, chatID int64) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("command handler panicked", "command", command, "chat_id", chatID, "panic", r)
		}
	}()

	if err := h(ctx, chatID); err != nil {
		b.logger.Error("command failed", "command", command, "chat_id", chatID, "error", err)
		return
	}
	b.logger.Debug("command handled", "command", command, "chat_id", chatID)
}
