package handle

import (
	"encoding/json"
	"net/http"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/identify"
	"pup-project/api/internal/util"
)

const maxBodyBytes = 16 << 20

// --- IDENTIFY ----------------------------------------------------------------

type identifyReq struct {
	LLMName  string  `json:"llm_name"`
	ImageB64 string  `json:"image_b64"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height"`
}

func (h *Handle) Identify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req identifyReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	img, _, err := util.DecodeBase64MaybeDataURL(req.ImageB64)
	if err != nil || len(img) == 0 {
		writeError(w, http.StatusBadRequest, "bad image_b64")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	rep, err := h.svc.Identify(ctx, identify.Submission{
		Image:      img,
		Query:      breed.Query{WeightLbs: req.Weight, HeightIn: req.Height},
		EngineName: req.LLMName,
		Source:     "http",
	})
	if err != nil {
		writeError(w, statusFor(err), "identify error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// --- INTERPRET ---------------------------------------------------------------

type interpretReq struct {
	RawText string `json:"raw_text"`
}

// Interpret разбирает уже полученный текст модели, без вызова модели.
func (h *Handle) Interpret(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req interpretReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Interpret(req.RawText))
}
