package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
	"github.com/rocketscienceinc/go-game-backend/internal/entity"
)

type StatsRepository interface {
	Record(ctx context.Context, outcomes ...entity.PlayerOutcome) error
	GetByUsername(ctx context.Context, username string) (entity.PlayerStats, error)
}

const statsKeyPrefix = "stats:"

type dbStats struct {
	client *redis.Client
}

// counters as stored in the stats hash
type dbCounters struct {
	Wins   int64 `redis:"wins"`
	Losses int64 `redis:"losses"`
	Draws  int64 `redis:"draws"`
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

// Record increments the counters of every participant in one transaction.
func (that *dbStats) Record(ctx context.Context, outcomes ...entity.PlayerOutcome) error {
	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, outcome := range outcomes {
			pipe.HIncrBy(ctx, statsKeyPrefix+outcome.Username, string(outcome.Outcome), 1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record outcomes: %w", err)
	}

	return nil
}

func (that *dbStats) GetByUsername(ctx context.Context, username string) (entity.PlayerStats, error) {
	response := that.client.HGetAll(ctx, statsKeyPrefix+username)

	if err := response.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.PlayerStats{}, apperror.ErrPlayerNotFound
		}
		return entity.PlayerStats{}, fmt.Errorf("failed to get stats: %w", err)
	}

	if len(response.Val()) == 0 {
		return entity.PlayerStats{}, apperror.ErrPlayerNotFound
	}

	var counters dbCounters
	if err := response.Scan(&counters); err != nil {
		return entity.PlayerStats{}, fmt.Errorf("failed to scan stats: %w", err)
	}

	return entity.PlayerStats{
		Username: username,
		Wins:     counters.Wins,
		Losses:   counters.Losses,
		Draws:    counters.Draws,
	}, nil
}

type memoryStats struct {
	mu    sync.RWMutex
	stats map[string]entity.PlayerStats
}

// NewMemoryStatsRepository keeps statistics for the lifetime of the process.
func NewMemoryStatsRepository() StatsRepository {
	return &memoryStats{
		stats: make(map[string]entity.PlayerStats),
	}
}

func (that *memoryStats) Record(_ context.Context, outcomes ...entity.PlayerOutcome) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, outcome := range outcomes {
		stats := that.stats[outcome.Username]
		stats.Username = outcome.Username
		stats.Apply(outcome.Outcome)
		that.stats[outcome.Username] = stats
	}

	return nil
}

func (that *memoryStats) GetByUsername(_ context.Context, username string) (entity.PlayerStats, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	stats, ok := that.stats[username]
	if !ok {
		return entity.PlayerStats{}, apperror.ErrPlayerNotFound
	}

	return stats, nil
}
