package handle

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/store"
)

type submissionResp struct {
	ID        uuid.UUID    `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Source    string       `json:"source"`
	Weight    float64      `json:"weight"`
	Height    float64      `json:"height"`
	Engine    string       `json:"engine"`
	Model     string       `json:"model"`
	Result    breed.Result `json:"result"`
}

// Submission: GET /v1/breed/submissions/{id}: сохранённая отправка из истории.
func (h *Handle) Submission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/v1/breed/submissions/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad submission id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	s, err := h.hist.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		log.Printf("handle: find submission %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, submissionResp{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Source:    s.Source,
		Weight:    s.WeightLbs,
		Height:    s.HeightIn,
		Engine:    s.Engine,
		Model:     s.Model,
		Result:    s.Result,
	})
}
