package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/go-game-backend/internal/entity"
)

type StatsService interface {
	RecordResult(ctx context.Context, result entity.Result) error
	GetStats(ctx context.Context, username string) (entity.PlayerStats, error)
}

type statsService struct {
	statsRepo statsRepo
}

type statsRepo interface {
	Record(ctx context.Context, outcomes ...entity.PlayerOutcome) error
	GetByUsername(ctx context.Context, username string) (entity.PlayerStats, error)
}

func NewStatsService(statsRepo statsRepo) StatsService {
	return &statsService{
		statsRepo: statsRepo,
	}
}

func (that *statsService) RecordResult(ctx context.Context, result entity.Result) error {
	if result.Black == nil || result.White == nil {
		return fmt.Errorf("record result of game %s: missing participant", result.GameID)
	}

	if err := that.statsRepo.Record(ctx, result.Outcomes()...); err != nil {
		return fmt.Errorf("record result of game %s: %w", result.GameID, err)
	}

	return nil
}

func (that *statsService) GetStats(ctx context.Context, username string) (entity.PlayerStats, error) {
	stats, err := that.statsRepo.GetByUsername(ctx, username)
	if err != nil {
		return entity.PlayerStats{}, fmt.Errorf("get stats of %s: %w", username, err)
	}

	return stats, nil
}
