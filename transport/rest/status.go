package rest

import (
	"encoding/json"
	"net/http"
)

type gameServer interface {
	Sessions() int
	Queued() int
}

type StatusHandler interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
	Status(w http.ResponseWriter, _ *http.Request)
}

type statusHandler struct {
	games gameServer
}

func NewStatusHandler(games gameServer) StatusHandler {
	return &statusHandler{games: games}
}

func (that *statusHandler) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

type statusResponse struct {
	Sessions int `json:"sessions"`
	Queued   int `json:"queued"`
}

// Status reports the live connections and the players waiting for a game.
func (that *statusHandler) Status(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{
		Sessions: that.games.Sessions(),
		Queued:   that.games.Queued(),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
