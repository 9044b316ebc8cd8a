package llm

import (
	"context"
	"errors"
	"testing"
)

type stubEngine struct{ name string }

func (s stubEngine) Name() string     { return s.name }
func (s stubEngine) GetModel() string { return s.name + "-model" }
func (s stubEngine) Identify(context.Context, Request) (string, error) {
	return "", nil
}

func TestEnginesGetEngine(t *testing.T) {
	g, o := stubEngine{"gemini"}, stubEngine{"gpt"}
	engs := &Engines{Gemini: g, OpenAI: o, Default: "gpt"}

	tests := []struct {
		name string
		want Engine
		err  error
	}{
		{"gemini", g, nil},
		{" Gemini ", g, nil},
		{"gpt", o, nil},
		{"openai", o, nil},
		{"", o, nil},
		{"deepseek", nil, ErrUnknownEngine},
	}
	for _, tt := range tests {
		got, err := engs.GetEngine(tt.name)
		if !errors.Is(err, tt.err) || got != tt.want {
			t.Errorf("GetEngine(%q) = %v, %v; want %v, %v", tt.name, got, err, tt.want, tt.err)
		}
	}
}

func TestEnginesNotConfigured(t *testing.T) {
	engs := &Engines{Gemini: stubEngine{"gemini"}}
	if _, err := engs.GetEngine("gpt"); err == nil {
		t.Fatal("expected error for missing OpenAI engine")
	}
	if got, err := engs.GetEngine(""); err != nil || got.Name() != "gemini" {
		t.Fatalf("fallback = %v, %v", got, err)
	}
	if got := engs.Available(); len(got) != 1 || got[0] != "gemini" {
		t.Fatalf("Available() = %v", got)
	}
}

func TestManager(t *testing.T) {
	def, other := stubEngine{"gemini"}, stubEngine{"gpt"}
	m := NewManager(def)
	if m.Get(1) != def {
		t.Fatal("default not returned")
	}
	m.Set(1, other, "gpt-4o")
	if m.Get(1) != other || m.Get(2) != def {
		t.Fatal("per-chat selection broken")
	}
	if m.Model(1) != "gpt-4o" || m.Model(2) != "" {
		t.Fatalf("models = %q/%q", m.Model(1), m.Model(2))
	}
	m.Set(1, other, "")
	if m.Model(1) != "" {
		t.Fatal("model not reset on engine switch")
	}
	m.Reset(1)
	if m.Get(1) != def {
		t.Fatal("reset did not restore default")
	}
}

func TestRequestModelOr(t *testing.T) {
	if got := (Request{}).ModelOr("def"); got != "def" {
		t.Errorf("empty = %q", got)
	}
	if got := (Request{Model: " gemini-2.5-pro "}).ModelOr("def"); got != "gemini-2.5-pro" {
		t.Errorf("override = %q", got)
	}
}
