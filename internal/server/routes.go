package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"geisha-game/internal/database"
	"geisha-game/internal/game"
)

// ResultStore is the read side of the results history.
type ResultStore interface {
	GetAll() ([]database.MatchResult, error)
	GetByPlayer(playerID string) ([]database.MatchResult, error)
}

func HandleRoutes(mux *http.ServeMux, store ResultStore, registry *game.Registry) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		HealthHandler(registry, w, r)
	})
	log.Println("Registered route: /health")

	mux.HandleFunc("GET /api/results/player/{id}", func(w http.ResponseWriter, r *http.Request) {
		GetResultsByPlayerHandler(store, w, r)
	})
	log.Println("Registered route: /api/results/player/{id}")

	mux.HandleFunc("GET /api/results", func(w http.ResponseWriter, r *http.Request) {
		GetResultsHandler(store, w, r)
	})
	log.Println("Registered route: /api/results")
}

func HealthHandler(registry *game.Registry, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"matches": registry.Len(),
	})
}

func GetResultsByPlayerHandler(store ResultStore, w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("id")
	if player == "" {
		http.Error(w, "Player id is required", http.StatusBadRequest)
		return
	}

	results, err := store.GetByPlayer(player)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "No results found for player", http.StatusNotFound)
			return
		}
		log.Printf("Failed to fetch results for player %s: %v", player, err)
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

func GetResultsHandler(store ResultStore, w http.ResponseWriter, r *http.Request) {
	results, err := store.GetAll()
	if err != nil {
		log.Printf("Failed to fetch results: %v", err)
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
