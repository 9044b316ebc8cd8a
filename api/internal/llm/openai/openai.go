package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/llm"
	"pup-project/api/internal/util"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Engine struct {
	APIKey  string
	BaseURL string

	model string
	httpc *http.Client
}

func New(key, model string) *Engine {
	return &Engine{
		APIKey:  strings.TrimSpace(key),
		BaseURL: defaultBaseURL,
		model:   strings.TrimSpace(model),
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string { return "gpt" }

func (e *Engine) GetModel() string { return e.model }

func (e *Engine) Identify(ctx context.Context, in llm.Request) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}
	if len(in.Image) == 0 {
		return "", errors.New("openai: empty image")
	}
	mime := in.MIME
	if mime == "" {
		mime = util.SniffMimeHTTP(in.Image)
	}
	dataURL := util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(in.Image))

	body := map[string]any{
		"model": in.ModelOr(e.model),
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": breed.BuildPrompt(in.Query)},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "auto"}},
				},
			},
		},
		"temperature": 0,
	}
	payload, _ := json.Marshal(body)

	url := strings.TrimRight(e.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai identify %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openai identify: bad JSON: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("openai identify: empty response")
	}
	out := util.StripCodeFences(raw.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("openai identify: empty response")
	}
	return out, nil
}
