package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealthz(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		code int
		body string
	}{
		{"no db", nil, http.StatusOK, "ok"},
		{"db up", pinger{}, http.StatusOK, "ok"},
		{"db down", pinger{err: errors.New("refused")}, http.StatusServiceUnavailable, "db: not ok\nrefused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Healthz(tt.db, "ok")(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.code || !strings.HasPrefix(rec.Body.String(), tt.body) {
				t.Errorf("got %d %q", rec.Code, rec.Body.String())
			}
		})
	}
}
