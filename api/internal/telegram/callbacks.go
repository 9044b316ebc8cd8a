package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pup-project/api/internal/llm"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID

	if name, ok := strings.CutPrefix(cb.Data, enginePrefix); ok {
		// убрать клавиатуру
		edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{})
		_, _ = r.Bot.Send(edit)
		r.switchEngine(cid, name, "")
	}
}

// handleEngineCommand:
//
//	/engine: текущий движок и кнопки выбора
//	/engine gemini [model]
//	/engine gpt [model]
func (r *Router) handleEngineCommand(chatID int64, args string) {
	name, model := parseEngineArgs(args)
	if name != "" {
		r.switchEngine(chatID, name, model)
		return
	}
	names := r.Service.Engines.Available()
	cur := r.currentEngine(chatID)
	text := "Текущий движок: " + engineLabel(cur, r.EngManager.Model(chatID)) + "\nИспользование: /engine {" + strings.Join(names, "|") + "} [model]"
	msg := tgbotapi.NewMessage(chatID, text)
	if len(names) > 1 {
		curName := ""
		if cur != nil {
			curName = cur.Name()
		}
		msg.ReplyMarkup = makeEngineKeyboard(names, curName)
	}
	_, _ = r.Bot.Send(msg)
}

func (r *Router) switchEngine(chatID int64, name, model string) {
	eng, err := r.Service.Engines.GetEngine(name)
	if err != nil {
		r.send(chatID, "Неизвестный движок. Доступны: "+strings.Join(r.Service.Engines.Available(), " | "))
		return
	}
	// модель запоминается только для этого чата
	r.EngManager.Set(chatID, eng, model)
	r.send(chatID, "✅ Движок: "+engineLabel(eng, model)+".")
}

func (r *Router) currentEngine(chatID int64) llm.Engine {
	if e := r.EngManager.Get(chatID); e != nil {
		return e
	}
	e, _ := r.Service.Engines.GetEngine("")
	return e
}

// engineLabel: "gemini (gemini-2.5-pro)"; model == "": модель движка по умолчанию.
func engineLabel(e llm.Engine, model string) string {
	if e == nil {
		return "не настроен"
	}
	return e.Name() + " (" + llm.Request{Model: model}.ModelOr(e.GetModel()) + ")"
}
