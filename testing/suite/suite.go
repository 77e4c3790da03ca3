// Package suite runs repository tests against a throwaway redis container and
// lets them inspect what was stored.
package suite

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	containerTTL = 2 * time.Minute
	startTimeout = 2 * time.Minute

	redisImage = "redis"
	redisTag   = "7-alpine"
	redisPort  = "6379/tcp"
)

type Suite struct {
	*testing.T
	Logger  *slog.Logger
	Storage *redis.Client
}

// New returns an empty redis database for t. The test is skipped when no
// docker daemon is reachable.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	t.Cleanup(cancel)

	client := startRedis(ctx, t)

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, &Suite{
		T:       t,
		Logger:  slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Storage: client,
	}
}

func startRedis(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}
	pool.MaxWait = startTimeout

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	// the container is killed by docker even if Purge never runs
	_ = resource.Expire(uint(containerTTL.Seconds()))

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("purge redis container: %v", err)
		}
	})

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort(redisPort)})
	t.Cleanup(func() { _ = client.Close() })

	if err = pool.Retry(func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("connect to redis: %v", err)
	}

	return client
}

// Keys returns the stored keys matching pattern in sorted order.
func (that *Suite) Keys(ctx context.Context, pattern string) []string {
	that.Helper()

	keys, err := that.Storage.Keys(ctx, pattern).Result()
	if err != nil {
		that.Fatalf("list keys %q: %v", pattern, err)
	}

	slices.Sort(keys)

	return keys
}

// Hash returns every field of the hash stored at key.
func (that *Suite) Hash(ctx context.Context, key string) map[string]string {
	that.Helper()

	fields, err := that.Storage.HGetAll(ctx, key).Result()
	if err != nil {
		that.Fatalf("read hash %q: %v", key, err)
	}

	return fields
}
