package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const enginePrefix = "engine:"

// Кнопки выбора движка, текущий отмечен галочкой.
func makeEngineKeyboard(names []string, current string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(names))
	for _, n := range names {
		label := n
		if n == current {
			label = "✅ " + n
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, enginePrefix+n))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// parseEngineArgs: "gemini gemini-2.5-pro" -> ("gemini", "gemini-2.5-pro").
func parseEngineArgs(args string) (name, model string) {
	f := strings.Fields(args)
	if len(f) > 0 {
		name = strings.ToLower(f[0])
	}
	if len(f) > 1 {
		model = f[1]
	}
	return name, model
}
