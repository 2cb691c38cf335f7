package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geisha-game/internal/config"
	"geisha-game/internal/database"
	"geisha-game/internal/events"
	"geisha-game/internal/game"
	"geisha-game/internal/server"
)

func main() {
	log.Println("Starting Geisha server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to open results store: %v", err)
	}
	defer db.Close()

	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer publisher.Close()
	}

	onResult := func(r game.Result) {
		if err := db.Record(r); err != nil {
			log.Printf("Failed to store result of match %s: %v", r.MatchID, err)
		}
		if publisher != nil {
			if err := publisher.Publish(r); err != nil {
				log.Printf("Failed to publish result of match %s: %v", r.MatchID, err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := game.NewRegistry()
	hub := server.NewHub(registry, server.Settings{
		RoundDelay: cfg.RoundDelay,
		StartDelay: cfg.StartDelay,
		OnResult:   onResult,
	})
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		server.ServeWs(hub, w, r)
	})
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	server.HandleRoutes(mux, db, registry)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		log.Printf("Listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
