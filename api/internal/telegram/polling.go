package telegram

import (
	"context"
	"errors"
	"hash/fnv"
	"log"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	pollTimeoutSec = 30
	minRetryDelay  = time.Second
	maxRetryDelay  = 15 * time.Second
	idlePause      = 200 * time.Millisecond
)

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// retryDelay: сколько ждать после ошибки getUpdates, в пределах [minRetryDelay, maxRetryDelay].
func retryDelay(err error) time.Duration {
	d := minRetryDelay
	var ne net.Error
	switch msg := strings.ToLower(err.Error()); {
	case strings.Contains(msg, "too many requests"): // 429
		d = 3 * time.Second
		if m := reRetryAfter.FindStringSubmatch(msg); m != nil {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				d = time.Duration(n) * time.Second
			}
		}
	case errors.As(err, &ne) && ne.Timeout():
		d = 2 * time.Second
	}
	return min(max(d, minRetryDelay), maxRetryDelay)
}

// sleepCtx: false, если ctx отменён раньше.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// RunPolling читает getUpdates до отмены ctx; ошибки сети и 429 не роняют процесс.
func RunPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSec

	for ctx.Err() == nil {
		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := retryDelay(err)
			log.Printf("polling error: %v; retry in %v", err, d)
			sleepCtx(ctx, d)
			continue
		}
		for _, upd := range updates {
			u.Offset = max(u.Offset, upd.UpdateID+1)
			handle(upd)
		}
		if len(updates) == 0 {
			sleepCtx(ctx, idlePause)
		}
	}
	log.Printf("polling stopped: %v", context.Cause(ctx))
}

// WebhookPath: секретный путь вебхука, стабильный для токена бота.
func WebhookPath(token string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	return "/webhook/" + strconv.FormatUint(h.Sum64(), 16)
}
