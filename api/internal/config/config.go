package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	// OpenAIBaseURL: совместимый с OpenAI прокси; пусто: api.openai.com.
	OpenAIBaseURL string

	// DefaultEngine: "gemini" | "gpt"; пусто: первый настроенный.
	DefaultEngine string
	MaxAttempts   int

	TelegramBotToken string
	WebhookURL       string

	MessagesFile       string
	RejectionSentinels []string

	// HistoryRetentionDays: сколько хранить breed_submissions, 0 значит вечно.
	HistoryRetentionDays int
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v, err := strconv.Atoi(getEnv(k, "")); err == nil && v >= 0 {
		return v
	}
	return def
}

// splitList: "a|b|c" -> [a b c], пустые элементы выкидываются.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "|") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		DefaultEngine: strings.ToLower(getEnv("LLM_ENGINE", "")),
		MaxAttempts:   getEnvInt("LLM_MAX_ATTEMPTS", 3),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		MessagesFile:       getEnv("MESSAGES_FILE", ""),
		RejectionSentinels: splitList(os.Getenv("REJECTION_SENTINELS")),

		HistoryRetentionDays: getEnvInt("HISTORY_RETENTION_DAYS", 90),
	}
}

// Validate: без ключа хотя бы одной модели сервису нечего делать.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" {
		return errors.New("missing env GEMINI_API_KEY or OPENAI_API_KEY")
	}
	switch c.DefaultEngine {
	case "", "gemini", "gpt", "openai":
	default:
		return errors.New("LLM_ENGINE must be gemini or gpt")
	}
	return nil
}
