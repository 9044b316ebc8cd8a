package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pup-project/api/internal/identify"
	"pup-project/api/internal/present"
	"pup-project/api/internal/store"
)

// SubmissionFinder: *store.SubmissionRepo.
type SubmissionFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*store.Submission, error)
}

type Handle struct {
	svc  *identify.Service
	msg  present.Messages
	hist SubmissionFinder
}

func New(svc *identify.Service, msg present.Messages) *Handle {
	return &Handle{
		svc: svc,
		msg: msg,
	}
}

// WithHistory включает GET /v1/breed/submissions/{id}.
func (h *Handle) WithHistory(f SubmissionFinder) *Handle {
	h.hist = f
	return h
}

// Routes регистрирует API и веб-форму.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/breed/identify", h.Identify)
	mux.HandleFunc("/v1/breed/interpret", h.Interpret)
	if h.hist != nil {
		mux.HandleFunc("/v1/breed/submissions/", h.Submission)
	}
	mux.HandleFunc("/identify", h.WebIdentify)
	mux.HandleFunc("/", h.WebForm)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// requestContext: таймаут из X-Request-Timeout или ?timeoutSec=, по умолчанию 180с.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	deadline := 180 * time.Second
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}

// statusFor: ошибки модели: 502/504, всё остальное: кривой запрос.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, identify.ErrEngineFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
