package main

import (
	"errors"
	"strings"

	"pup-project/api/internal/breed"
)

const helpText = `<image path> <weight lbs> <height in>  identify a photo
:engine <gemini|gpt>                   switch engine
:interpret                             paste a model reply, finish with a line "."
:help, :quit`

type commandKind int

const (
	cmdNone commandKind = iota
	cmdIdentify
	cmdEngine
	cmdInterpret
	cmdHelp
	cmdQuit
)

type command struct {
	Kind  commandKind
	Arg   string
	Path  string
	Query breed.Query
}

var errUsage = errors.New("usage: <image path> <weight> <height>, or :help")

// parseLine: путь может содержать пробелы, вес и рост: два последних поля.
func parseLine(line string) (command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{Kind: cmdNone}, nil
	}
	if rest, ok := strings.CutPrefix(line, ":"); ok {
		f := strings.Fields(rest)
		if len(f) == 0 {
			return command{}, errUsage
		}
		switch strings.ToLower(f[0]) {
		case "engine":
			if len(f) != 2 {
				return command{}, errors.New("usage: :engine <gemini|gpt>")
			}
			return command{Kind: cmdEngine, Arg: strings.ToLower(f[1])}, nil
		case "interpret":
			return command{Kind: cmdInterpret}, nil
		case "help":
			return command{Kind: cmdHelp}, nil
		case "quit", "q", "exit":
			return command{Kind: cmdQuit}, nil
		}
		return command{}, errUsage
	}

	f := strings.Fields(line)
	if len(f) < 3 {
		return command{}, errUsage
	}
	q, err := breed.ParseQuery(strings.Join(f[len(f)-2:], " "))
	if err != nil {
		return command{}, err
	}
	path := strings.TrimSpace(strings.TrimSuffix(line, f[len(f)-1]))
	path = strings.TrimSpace(strings.TrimSuffix(path, f[len(f)-2]))
	return command{Kind: cmdIdentify, Path: path, Query: q}, nil
}
