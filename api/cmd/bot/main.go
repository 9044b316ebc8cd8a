package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pup-project/api/internal/app"
	"pup-project/api/internal/config"
	"pup-project/api/internal/httpserver"
	"pup-project/api/internal/llm"
	"pup-project/api/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if cfg.TelegramBotToken == "" {
		log.Fatal("missing env TELEGRAM_BOT_TOKEN")
	}

	// --- Postgres: для бота обязателен (/history) ---
	a, err := app.New(ctx, cfg, true)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()
	a.StartPurge(ctx)

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false

	// у менеджера нет дефолта, движок по LLM_ENGINE выберет сервис
	r := &telegram.Router{
		Bot:        bot,
		Service:    a.Service,
		EngManager: llm.NewManager(nil),
		History:    a.History,
		Messages:   a.Messages,
	}

	// --- HTTP mux (DefaultServeMux) ---
	// ListenForWebhook регистрирует обработчик на default mux.
	http.HandleFunc("/healthz", httpserver.Healthz(a.Pinger(), "ok"))

	addr := "0.0.0.0:" + cfg.Port

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(addr, bot, r, webhookURL)
	} else {
		startPollingMode(ctx, addr, bot, r)
	}
}

// ---------------- Modes -----------------

func startWebhookMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string) {
	path := telegram.WebhookPath(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal(err)
	}

	updates := bot.ListenForWebhook(path)
	go func() {
		for upd := range updates {
			r.HandleUpdate(upd)
		}
		log.Printf("webhook updates channel closed")
	}()

	log.Printf("webhook listening on %s%s", addr, path)
	log.Fatal(httpserver.Start(addr, http.DefaultServeMux))
}

func startPollingMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router) {
	// вебхук мешает getUpdates
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Printf("deleteWebhook: %v", err)
	}

	// healthz для платформы, хотя для polling он не обязателен
	go func() {
		log.Fatal(httpserver.Start(addr, http.DefaultServeMux))
	}()

	// до SIGINT/SIGTERM
	telegram.RunPolling(ctx, bot, r.HandleUpdate)
}
