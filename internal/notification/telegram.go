package notification

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends alerts via the Telegram Bot API with retry.
// Alert messages arrive already formatted with emoji; they are sent as
// plain text so symbols and numbers never need escaping.
type TelegramNotifier struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegramNotifier creates a Telegram notifier.
// botToken: Bot API token from @BotFather
// chatID: target chat/group/channel ID (numeric)
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram: invalid chat ID %q: %w", chatID, err)
	}

	log.Printf("[telegram] authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     3,
		retryDelayBase: time.Second,
	}, nil
}

func (t *TelegramNotifier) Send(ctx context.Context, alert Alert) error {
	msg := tgbotapi.NewMessage(t.chatID, alert.Message)

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.retryDelayBase * time.Duration(i)):
			}
		}
		if _, err := t.bot.Send(msg); err == nil {
			log.Printf("[telegram] sent alert: %s", alert.Title)
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("telegram: failed after %d retries: %w", t.maxRetries, lastErr)
}
