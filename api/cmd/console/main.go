package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"pup-project/api/internal/app"
	"pup-project/api/internal/config"
	"pup-project/api/internal/identify"
	"pup-project/api/internal/present"
)

func main() {
	err := mainImpl()
	if err != nil {
		log.Fatal(err)
	}
}

func mainImpl() error {
	cfg := config.Load()
	a, err := app.New(context.Background(), cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	engine := cfg.DefaultEngine
	fmt.Println(helpText)
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF, Ctrl-C
			break
		}
		cmd, err := parseLine(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		switch cmd.Kind {
		case cmdNone:
		case cmdHelp:
			fmt.Println(helpText)
		case cmdQuit:
			return nil
		case cmdEngine:
			if _, err := a.Engines.GetEngine(cmd.Arg); err != nil {
				fmt.Println(err, "- available:", strings.Join(a.Engines.Available(), ", "))
				continue
			}
			engine = cmd.Arg
			fmt.Println("engine:", engine)
		case cmdInterpret:
			raw, err := readUntilDot(rl)
			if err != nil {
				return nil
			}
			res := a.Service.Interpret(raw)
			fmt.Printf("[%s]\n%s\n", res.Outcome, present.Text(res, a.Messages))
		case cmdIdentify:
			identifyFile(a, engine, cmd)
		}
	}
	return nil
}

func identifyFile(a *app.App, engine string, cmd command) {
	img, err := os.ReadFile(cmd.Path)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(a.Messages.Loading)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	rep, err := a.Service.Identify(ctx, identify.Submission{
		Image:      img,
		Query:      cmd.Query,
		EngineName: engine,
		Source:     "console",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("[%s %s/%s %s]\n%s\n", rep.Result.Outcome, rep.Engine, rep.Model,
		rep.Elapsed.Round(time.Millisecond), present.Text(rep.Result, a.Messages))
}

// readUntilDot собирает многострочный ответ модели до строки ".".
func readUntilDot(rl *readline.Instance) (string, error) {
	rl.SetPrompt(". ")
	defer rl.SetPrompt("> ")
	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF, Ctrl-C
			return "", err
		}
		if strings.TrimSpace(line) == "." {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}
