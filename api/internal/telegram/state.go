package telegram

import (
	"errors"
	"sync"
	"time"

	"pup-project/api/internal/breed"
)

const (
	pendingTTL = 10 * time.Minute
	groupTTL   = 2 * time.Minute
)

// pendingPhoto: фото без веса/роста, ждём следующее сообщение.
type pendingPhoto struct {
	Image []byte
	At    time.Time
}

var (
	pending sync.Map // chatID -> *pendingPhoto
	groups  sync.Map // mediaGroupID -> time.Time

	now = time.Now
)

func putPending(chatID int64, img []byte) {
	pending.Store(chatID, &pendingPhoto{Image: img, At: now()})
}

func peekPending(chatID int64) (*pendingPhoto, bool) {
	v, ok := pending.Load(chatID)
	if !ok {
		return nil, false
	}
	p := v.(*pendingPhoto)
	if now().Sub(p.At) > pendingTTL {
		pending.CompareAndDelete(chatID, p)
		return nil, false
	}
	return p, true
}

// takePending: ok получает только тот, кто фактически удалил запись.
func takePending(chatID int64) (*pendingPhoto, bool) {
	p, ok := peekPending(chatID)
	if !ok || !pending.CompareAndDelete(chatID, p) {
		return nil, false
	}
	return p, true
}

var errNoPending = errors.New("no pending photo")

// completePending разбирает вес/рост для ожидающего фото. Фото достаётся только одному вызову;
// при кривом вводе оно остаётся ждать.
func completePending(chatID int64, text string) (*pendingPhoto, breed.Query, error) {
	if _, ok := peekPending(chatID); !ok {
		return nil, breed.Query{}, errNoPending
	}
	q, err := breed.ParseQuery(text)
	if err != nil {
		return nil, breed.Query{}, err
	}
	p, ok := takePending(chatID)
	if !ok {
		return nil, breed.Query{}, errNoPending
	}
	return p, q, nil
}

// firstInGroup: из альбома обрабатываем только первое фото.
func firstInGroup(mediaGroupID string) bool {
	if mediaGroupID == "" {
		return true
	}
	t := now()
	if _, loaded := groups.LoadOrStore(mediaGroupID, t); loaded {
		return false
	}
	groups.Range(func(k, v any) bool {
		if t.Sub(v.(time.Time)) > groupTTL {
			groups.Delete(k)
		}
		return true
	})
	return true
}
