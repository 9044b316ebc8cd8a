package telegram

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pup-project/api/internal/breed"
)

const maxDownloadBytes = 20 << 20

func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	if !firstInGroup(msg.MediaGroupID) {
		return
	}
	img, err := r.downloadFile(pickFileID(msg))
	if err != nil {
		log.Printf("telegram: download chat=%d: %v", cid, err)
		r.send(cid, "Не удалось скачать фото, пришлите ещё раз.")
		return
	}

	caption := strings.TrimSpace(msg.Caption)
	if caption == "" {
		putPending(cid, img)
		r.send(cid, r.Messages.AskQuery)
		return
	}
	q, err := breed.ParseQuery(caption)
	if err != nil {
		// фото оставляем, вес/рост можно дослать следующим сообщением
		putPending(cid, img)
		r.send(cid, r.Messages.BadQuery)
		return
	}
	takePending(cid) // новое фото с подписью вытесняет ожидающее
	go r.runIdentify(cid, img, q)
}

func pickFileID(msg tgbotapi.Message) string {
	if len(msg.Photo) > 0 {
		return largestPhoto(msg.Photo).FileID
	}
	if msg.Document != nil {
		return msg.Document.FileID
	}
	return ""
}

// largestPhoto: Telegram присылает несколько размеров, берём самый крупный.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, p := range sizes[1:] {
		if p.Width*p.Height >= best.Width*best.Height {
			best = p
		}
	}
	return best
}

func isImageDocument(d *tgbotapi.Document) bool {
	return d != nil && strings.HasPrefix(strings.ToLower(d.MimeType), "image/")
}

func (r *Router) downloadFile(fileID string) ([]byte, error) {
	if fileID == "" {
		return nil, fmt.Errorf("no file in message")
	}
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	return download(url)
}

func download(url string) ([]byte, error) {
	resp, err := httpClient().Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
