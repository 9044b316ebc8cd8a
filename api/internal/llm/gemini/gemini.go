package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/llm"
	"pup-project/api/internal/util"
)

type Engine struct {
	APIKey string
	// MaxAttempts: сколько раз пробуем GenerateContent при сетевых ошибках.
	MaxAttempts int

	model string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey:      strings.TrimSpace(apiKey),
		MaxAttempts: 3,
		model:       strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string { return "gemini" }

// GetModel: модель по умолчанию, Request.Model её перекрывает.
func (e *Engine) GetModel() string { return e.model }

// Identify sends the instruction and the photo, returns the first text part of the reply.
func (e *Engine) Identify(ctx context.Context, in llm.Request) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	if len(in.Image) == 0 {
		return "", errors.New("gemini: empty image")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(in.ModelOr(e.model))
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	mime := in.MIME
	if mime == "" {
		mime = util.SniffMimeHTTP(in.Image)
	}
	parts := []genai.Part{
		genai.Text(breed.BuildPrompt(in.Query)),
		genai.Blob{MIMEType: mime, Data: in.Image},
	}

	attempts := e.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			var blocked *genai.BlockedError
			if errors.As(err, &blocked) {
				// повтор даст тот же отказ
				return "", fmt.Errorf("gemini identify: %w", err)
			}
			lastErr = err
			if attempt == attempts {
				break
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		out := util.StripCodeFences(firstText(resp))
		if out == "" {
			return "", fmt.Errorf("gemini identify: empty response")
		}
		return out, nil
	}
	return "", fmt.Errorf("gemini identify: %w", lastErr)
}

// --------------------------- helpers ---------------------------

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
