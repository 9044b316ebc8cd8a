package app

import (
	"context"
	"testing"

	"pup-project/api/internal/config"
)

func clearDBEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "POSTGRES_PASSWORD", "PGHOST"} {
		t.Setenv(k, "")
	}
}

func TestNewEnginesOnlyConfigured(t *testing.T) {
	e := NewEngines(&config.Config{GeminiAPIKey: "k", GeminiModel: "m", MaxAttempts: 5})
	if e.OpenAI != nil {
		t.Fatal("openai engine without key")
	}
	if got := e.Available(); len(got) != 1 || got[0] != "gemini" {
		t.Errorf("Available() = %v", got)
	}
	eng, err := e.GetEngine("")
	if err != nil || eng.GetModel() != "m" {
		t.Errorf("GetEngine() = %v, %v", eng, err)
	}
}

func TestNewWithoutDB(t *testing.T) {
	clearDBEnv(t)
	cfg := &config.Config{OpenAIAPIKey: "k", OpenAIModel: "gpt-4o-mini", RejectionSentinels: []string{"Not a dog."}}
	a, err := New(context.Background(), cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if a.DB != nil || a.History != nil || a.Service.Recorder != nil || a.Pinger() != nil {
		t.Error("history wired without a database")
	}
	if !a.Service.Interpret("Not a dog.").IsRejected() {
		t.Error("extra sentinel not applied")
	}
	if a.Messages.Rejected == "" {
		t.Error("default messages not loaded")
	}
}

func TestNewRequiresDB(t *testing.T) {
	clearDBEnv(t)
	if _, err := New(context.Background(), &config.Config{GeminiAPIKey: "k"}, true); err == nil {
		t.Error("New() without DSN succeeded with requireDB")
	}
	if _, err := New(context.Background(), &config.Config{}, false); err == nil {
		t.Error("New() without API keys succeeded")
	}
}
