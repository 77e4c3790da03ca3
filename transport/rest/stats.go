package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
	"github.com/rocketscienceinc/go-game-backend/internal/entity"
)

type statsService interface {
	GetStats(ctx context.Context, username string) (entity.PlayerStats, error)
}

type StatsHandler interface {
	GetStats(w http.ResponseWriter, r *http.Request)
}

type statsHandler struct {
	logger *slog.Logger
	stats  statsService
}

func NewStatsHandler(logger *slog.Logger, stats statsService) StatsHandler {
	return &statsHandler{
		logger: logger.With("component", "rest"),
		stats:  stats,
	}
}

type statsResponse struct {
	entity.PlayerStats
	Games int64 `json:"games"`
}

func (that *statsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetStats")

	username := r.PathValue("username")

	stats, err := that.stats.GetStats(r.Context(), username)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get stats", "username", username, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(statsResponse{PlayerStats: stats, Games: stats.Games()}); err != nil {
		log.Error("failed to encode stats", "error", err)
	}
}
