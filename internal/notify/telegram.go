package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram caps messages at 4096 characters; the rest is left for the header
// and HTML escaping.
const telegramMaxBody = 3500

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram mirrors every notification into one operator chat.
type Telegram struct {
	api    telegramSender
	chatID int64
}

// NewTelegram authorizes the bot token against the Telegram API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if runes := []rune(body); len(runes) > telegramMaxBody {
		body = string(runes[:telegramMaxBody]) + "…"
	}
	text := fmt.Sprintf("📬 <b>%s</b>\n<i>to %s</i>\n\n%s",
		html.EscapeString(subject), html.EscapeString(to), html.EscapeString(body))

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send to chat %d: %w", t.chatID, err)
	}
	return nil
}
