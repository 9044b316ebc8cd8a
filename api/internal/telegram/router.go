package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/identify"
	"pup-project/api/internal/llm"
	"pup-project/api/internal/present"
	"pup-project/api/internal/store"
	"pup-project/api/internal/util"
)

const (
	maxMessageLen  = 3900
	historyLimit   = 5
	defaultTimeout = 3 * time.Minute
)

// History: последние отправки чата; *store.SubmissionRepo.
type History interface {
	RecentByChat(ctx context.Context, chatID int64, limit int) ([]store.Submission, error)
}

type Router struct {
	Bot        *tgbotapi.BotAPI
	Service    *identify.Service
	EngManager *llm.Manager
	History    History // nil без БД, тогда /history недоступна
	Messages   present.Messages
	Timeout    time.Duration
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	// callback-кнопки
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}

	// фото или картинка документом
	if len(msg.Photo) > 0 || isImageDocument(msg.Document) {
		r.acceptPhoto(*msg)
		return
	}

	// ждём вес/рост к уже присланному фото
	if strings.TrimSpace(msg.Text) != "" {
		p, q, err := completePending(cid, msg.Text)
		switch {
		case errors.Is(err, errNoPending):
			r.send(cid, r.Messages.Welcome)
		case err != nil:
			r.send(cid, r.Messages.BadQuery)
		default:
			go r.runIdentify(cid, p.Image, q)
		}
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, r.Messages.Welcome+"\nКоманды: /engine, /history, /cancel, /health")
	case "health":
		r.send(cid, "✅ OK\nДвижки: "+strings.Join(r.Service.Engines.Available(), ", "))
	case "engine":
		r.handleEngineCommand(cid, msg.CommandArguments())
	case "history":
		r.handleHistory(cid)
	case "cancel":
		if _, ok := takePending(cid); ok {
			r.send(cid, "Ок, фото забыто.")
			return
		}
		r.send(cid, "Нечего отменять.")
	default:
		r.send(cid, "Неизвестная команда")
	}
}

// runIdentify: отправка в модель и ответ в чат.
func (r *Router) runIdentify(chatID int64, img []byte, q breed.Query) {
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	loading, _ := r.Bot.Send(tgbotapi.NewMessage(chatID, r.Messages.Loading))

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	rep, err := r.Service.Identify(ctx, identify.Submission{
		Image:  img,
		Query:  q,
		Engine: r.EngManager.Get(chatID),
		Model:  r.EngManager.Model(chatID),
		ChatID: chatID,
		Source: "telegram",
	})

	if loading.MessageID != 0 {
		_, _ = r.Bot.Request(tgbotapi.NewDeleteMessage(chatID, loading.MessageID))
	}
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	r.SendResult(chatID, rep.Result)
}

func (r *Router) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return defaultTimeout
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) SendResult(chatID int64, res breed.Result) {
	r.send(chatID, util.Truncate(present.Text(res, r.Messages), maxMessageLen))
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, errorText(err, r.Messages))
}

// errorText: пользователю: понятный текст, подробности: в лог.
func errorText(err error, msg present.Messages) string {
	switch {
	case errors.Is(err, breed.ErrInvalidQuery):
		return msg.BadQuery
	case errors.Is(err, util.ErrUnsupportedImage):
		return "Не получилось прочитать картинку. Пришлите фото в JPEG или PNG."
	case errors.Is(err, llm.ErrUnknownEngine):
		return "Движок не настроен. Выберите другой: /engine"
	default:
		log.Printf("telegram: %v", err)
		return msg.EngineError
	}
}

func (r *Router) handleHistory(chatID int64) {
	if r.History == nil {
		r.send(chatID, "История не ведётся.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	subs, err := r.History.RecentByChat(ctx, chatID, historyLimit)
	if err != nil {
		log.Printf("telegram: history chat=%d: %v", chatID, err)
		r.send(chatID, "Не удалось загрузить историю.")
		return
	}
	r.send(chatID, formatHistory(subs, r.Messages))
}

// formatHistory: одна строка на отправку, новые сверху.
func formatHistory(subs []store.Submission, msg present.Messages) string {
	if len(subs) == 0 {
		return "История пуста."
	}
	var b strings.Builder
	b.WriteString("Последние запросы:")
	for _, s := range subs {
		var verdict string
		switch {
		case s.Result.IsRejected():
			verdict = msg.Rejected
		case s.Result.IsIdentified():
			top, _ := s.Result.Top()
			verdict = fmt.Sprintf("%s (%s)", top.Name, present.FormatPercent(top.Percentage))
		default:
			verdict = msg.NoMatches
		}
		fmt.Fprintf(&b, "\n%s · %s · %s lbs, %s in · %s",
			s.CreatedAt.UTC().Format("2006-01-02 15:04"), s.Engine,
			present.FormatNumber(s.WeightLbs), present.FormatNumber(s.HeightIn), verdict)
	}
	return b.String()
}
