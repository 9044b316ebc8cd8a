package main

import (
	"errors"
	"testing"

	"pup-project/api/internal/breed"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		in      string
		want    command
		wantErr bool
	}{
		{in: "", want: command{Kind: cmdNone}},
		{in: "pup.jpg 45 22", want: command{Kind: cmdIdentify, Path: "pup.jpg", Query: breed.Query{WeightLbs: 45, HeightIn: 22}}},
		{in: "  my photos/pup 1.jpg 12,5 9 ", want: command{Kind: cmdIdentify, Path: "my photos/pup 1.jpg", Query: breed.Query{WeightLbs: 12.5, HeightIn: 9}}},
		{in: "pup.jpg 4 44", want: command{Kind: cmdIdentify, Path: "pup.jpg", Query: breed.Query{WeightLbs: 4, HeightIn: 44}}},
		{in: ":engine GPT", want: command{Kind: cmdEngine, Arg: "gpt"}},
		{in: ":interpret", want: command{Kind: cmdInterpret}},
		{in: ":help", want: command{Kind: cmdHelp}},
		{in: ":q", want: command{Kind: cmdQuit}},
		{in: ":engine", wantErr: true},
		{in: ":", wantErr: true},
		{in: ":dance", wantErr: true},
		{in: "pup.jpg 45", wantErr: true},
		{in: "pup.jpg heavy tall", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseLine(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseLine(%q) = %+v, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseLine(%q) = %+v, %v; want %+v", tt.in, got, err, tt.want)
		}
	}
}

func TestParseLineBadQuery(t *testing.T) {
	if _, err := parseLine("pup.jpg 0 22"); !errors.Is(err, breed.ErrInvalidQuery) {
		t.Errorf("err = %v", err)
	}
}
