package llm

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pup-project/api/internal/breed"
)

// Request: всё, что уходит в модель за один вызов.
type Request struct {
	Image []byte
	MIME  string
	Query breed.Query
	// Model перекрывает модель движка; пусто: модель по умолчанию.
	Model string
}

func (r Request) ModelOr(def string) string {
	if m := strings.TrimSpace(r.Model); m != "" {
		return m
	}
	return def
}

// Engine returns the model's raw text reply. Interpreting it is not the engine's job.
type Engine interface {
	Name() string
	GetModel() string
	Identify(ctx context.Context, in Request) (string, error)
}

var ErrUnknownEngine = errors.New("unknown llm_name; use 'gemini' or 'gpt'")

type Engines struct {
	Gemini Engine
	OpenAI Engine

	// Default: имя движка для пустого llm_name.
	Default string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "gemini":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	case "":
		// дефолт не задан: первый настроенный
		if e.Gemini != nil {
			return e.Gemini, nil
		}
		eng = e.OpenAI
	default:
		return nil, ErrUnknownEngine
	}
	if eng == nil {
		return nil, errors.New("llm engine " + name + " is not configured")
	}
	return eng, nil
}

// Available перечисляет настроенные движки.
func (e *Engines) Available() []string {
	var out []string
	if e.Gemini != nil {
		out = append(out, e.Gemini.Name())
	}
	if e.OpenAI != nil {
		out = append(out, e.OpenAI.Name())
	}
	return out
}

// Manager хранит выбор движка и модели по чатам. Сами движки общие и не меняются.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> choice
}

type choice struct {
	engine Engine
	model  string
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(choice).engine
	}
	return m.def
}

// Model: модель, выбранная в чате; пусто: модель движка по умолчанию.
func (m *Manager) Model(chatID int64) string {
	if v, ok := m.m.Load(chatID); ok {
		return v.(choice).model
	}
	return ""
}

// Set выбирает движок для чата; model == "" сбрасывает выбранную модель.
func (m *Manager) Set(chatID int64, e Engine, model string) {
	m.m.Store(chatID, choice{engine: e, model: strings.TrimSpace(model)})
}

func (m *Manager) Reset(chatID int64) {
	m.m.Delete(chatID)
}
