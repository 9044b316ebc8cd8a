package main

import (
	"context"
	"log"
	"net/http"

	"pup-project/api/internal/app"
	"pup-project/api/internal/config"
	"pup-project/api/internal/handle"
	"pup-project/api/internal/httpserver"
)

func main() {
	cfg := config.Load()

	// история в Postgres: опционально
	a, err := app.New(context.Background(), cfg, false)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()
	a.StartPurge(context.Background())
	log.Printf("engines: %v (default %q)", a.Engines.Available(), cfg.DefaultEngine)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz(a.Pinger(), "ok"))
	h := handle.New(a.Service, a.Messages)
	if a.History != nil {
		h.WithHistory(a.History)
	}
	h.Routes(mux)

	log.Fatal(httpserver.Start(":"+cfg.Port, mux))
}
