package bot

import (
	"turfkiosk/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// apiWrapper adapts *tgbotapi.BotAPI to domain.TelegramSender; the
// library exposes the bot identity as a field, not a method.
type apiWrapper struct {
	*tgbotapi.BotAPI
}

func (w apiWrapper) GetSelf() tgbotapi.User {
	return w.Self
}

// Wrap makes a BotAPI usable where a TelegramSender is expected.
func Wrap(api *tgbotapi.BotAPI) domain.TelegramSender {
	return apiWrapper{api}
}
