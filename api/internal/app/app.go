package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/config"
	"pup-project/api/internal/httpserver"
	"pup-project/api/internal/identify"
	"pup-project/api/internal/llm"
	"pup-project/api/internal/llm/gemini"
	"pup-project/api/internal/llm/openai"
	"pup-project/api/internal/present"
	"pup-project/api/internal/store"
)

// App: общая сборка для bot, breed-proxy и console.
type App struct {
	Config   *config.Config
	Engines  *llm.Engines
	Service  *identify.Service
	Messages present.Messages

	// nil, если Postgres не настроен
	DB      *sql.DB
	History *store.SubmissionRepo
}

// NewEngines создаёт только движки с ключами: пустой слот остаётся nil-интерфейсом.
func NewEngines(cfg *config.Config) *llm.Engines {
	e := &llm.Engines{Default: cfg.DefaultEngine}
	if cfg.GeminiAPIKey != "" {
		g := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
		g.MaxAttempts = cfg.MaxAttempts
		e.Gemini = g
	}
	if cfg.OpenAIAPIKey != "" {
		o := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if cfg.OpenAIBaseURL != "" {
			o.BaseURL = cfg.OpenAIBaseURL
		}
		e.OpenAI = o
	}
	return e
}

// New собирает сервис. Postgres подключается, если задан DSN; requireDB: без него не стартуем.
func New(ctx context.Context, cfg *config.Config, requireDB bool) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	msgs, err := config.LoadMessages(cfg.MessagesFile)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:   cfg,
		Engines:  NewEngines(cfg),
		Messages: msgs,
	}
	a.Service = &identify.Service{
		Engines:     a.Engines,
		Interpreter: breed.NewInterpreter(cfg.RejectionSentinels...),
	}

	dsn := store.ResolveDSN()
	if dsn == "" {
		if requireDB {
			return nil, fmt.Errorf("database DSN is empty: set DATABASE_URL or POSTGRES_* env vars")
		}
		log.Printf("db: not configured, history disabled")
		return a, nil
	}
	db, err := store.Open(ctx, dsn)
	if err != nil {
		if requireDB {
			return nil, err
		}
		log.Printf("db: %v; history disabled", err)
		return a, nil
	}
	log.Printf("db connected: %s", store.SafeDSNSummary(dsn))

	repo := store.NewSubmissionRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	a.DB = db
	a.History = repo
	a.Service.Recorder = repo
	return a, nil
}

// StartPurge раз в сутки удаляет историю старше HistoryRetentionDays. Без базы: no-op.
func (a *App) StartPurge(ctx context.Context) {
	if a.History == nil || a.Config.HistoryRetentionDays <= 0 {
		return
	}
	keep := time.Duration(a.Config.HistoryRetentionDays) * 24 * time.Hour
	go func() {
		t := time.NewTicker(24 * time.Hour)
		defer t.Stop()
		for {
			n, err := a.History.PurgeOlderThan(ctx, keep)
			if err != nil {
				log.Printf("db: purge history: %v", err)
			} else if n > 0 {
				log.Printf("db: purged %d submissions older than %d days", n, a.Config.HistoryRetentionDays)
			}
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
}

// Pinger для /healthz: nil без базы.
func (a *App) Pinger() httpserver.Pinger {
	if a.DB == nil {
		return nil
	}
	return a.DB
}

func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
