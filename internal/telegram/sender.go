package telegram

import (
	"context"
	"errors"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// BotSender delivers plain text messages to Telegram chats. It is
// constructed before the bot connects and bound to the live bot from
// the run loop's OnStart hook.
type BotSender struct {
	mu  sync.RWMutex
	bot *tele.Bot
}

func NewBotSender() *BotSender {
	return &BotSender{}
}

// Bind attaches the connected bot instance.
func (s *BotSender) Bind(bot *tele.Bot) {
	s.mu.Lock()
	s.bot = bot
	s.mu.Unlock()
}

// SendTo sends text to the given chat id.
func (s *BotSender) SendTo(ctx context.Context, chatID int64, text string) error {
	s.mu.RLock()
	bot := s.bot
	s.mu.RUnlock()
	if bot == nil {
		return errors.New("telegram: sender is not connected")
	}
	_, err := bot.Send(tele.ChatID(chatID), text)
	return err
}
