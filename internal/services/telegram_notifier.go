package services

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"agencycrm/internal/repositories"
)

// Notifier delivers a short message to a CRM user.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int, text string) error
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier looks up the user's linked chat and messages it.
// Users without a linked chat are skipped silently.
type TelegramNotifier struct {
	bot   telegramSender
	users repositories.UserRepository
	log   *zap.Logger
}

// NewTelegramNotifier connects to the Bot API. An empty token yields a
// notifier that only logs.
func NewTelegramNotifier(token string, users repositories.UserRepository, log *zap.Logger) (*TelegramNotifier, error) {
	n := &TelegramNotifier{users: users, log: log.Named("telegram")}
	if token == "" {
		return n, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	n.bot = bot
	return n, nil
}

func (n *TelegramNotifier) NotifyUser(ctx context.Context, userID int, text string) error {
	if n.bot == nil {
		n.log.Debug("skip: no bot token", zap.Int("user_id", userID))
		return nil
	}
	u, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil || u.TelegramChatID == nil || *u.TelegramChatID == 0 {
		n.log.Debug("skip: chat not linked", zap.Int("user_id", userID))
		return nil
	}

	msg := tgbotapi.NewMessage(*u.TelegramChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to user %d: %w", userID, err)
	}
	n.log.Info("sent", zap.Int("user_id", userID))
	return nil
}

var _ Notifier = (*TelegramNotifier)(nil)
