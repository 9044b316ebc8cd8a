package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Pinger: например *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Healthz отвечает body; если задан db: сначала пингует его.
func Healthz(db Pinger, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// Start блокирует до ошибки сервера. WriteTimeout не ставим: ответ модели может идти минутами.
func Start(addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Printf("listening on %s", addr)
	return srv.ListenAndServe()
}
