package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/go-game-backend/internal/config"
	"github.com/rocketscienceinc/go-game-backend/internal/repository"
	"github.com/rocketscienceinc/go-game-backend/internal/repository/storage"
	"github.com/rocketscienceinc/go-game-backend/internal/server/socket"
	"github.com/rocketscienceinc/go-game-backend/internal/service"
	"github.com/rocketscienceinc/go-game-backend/transport/rest"
	"github.com/rocketscienceinc/go-game-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	statsRepo, closeStorage, err := initStatsRepository(ctx, log, conf.Redis)
	if err != nil {
		return err
	}
	defer closeStorage()

	statsService := service.NewStatsService(statsRepo)

	gameServer := socket.New(logger, socket.Options{
		BoardSize:    conf.Game.BoardSize,
		TurnTimeout:  conf.Game.TurnTimeout,
		WriteTimeout: conf.Game.WriteTimeout,
		Banner:       conf.Game.Banner,
	}, statsService)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, gameServer, statsService)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run socket server
	socketErrCh := make(chan error, 1)
	socketDone := make(chan struct{})
	go func() {
		defer close(socketDone)
		log.Info("Starting socket server", "port", conf.SocketPort)
		if socketErr := gameServer.Start(ctx, conf.SocketPort); socketErr != nil {
			log.Error("socket server error", "error", socketErr)
			socketErrCh <- socketErr
		}
	}()

	// run WebSocket gateway
	wsErrCh := make(chan error, 1)
	if conf.WebSocketPort != "" {
		go func() {
			log.Info("Starting WebSocket server", "port", conf.WebSocketPort)
			wsServer := websocket.New(logger, gameServer, conf.Game.WriteTimeout)
			if wsErr := wsServer.Start(ctx, conf.WebSocketPort); wsErr != nil {
				log.Error("WebSocket server error", "error", wsErr)
				wsErrCh <- wsErr
			}
		}()
	}

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-socketErrCh:
		return fmt.Errorf("socket server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		<-socketDone
		return nil
	}
}

// initStatsRepository picks redis when it is configured and memory otherwise.
func initStatsRepository(ctx context.Context, log *slog.Logger, conf config.Redis) (repository.StatsRepository, func(), error) {
	redisAddr := conf.GetRedisAddr()
	if redisAddr == "" {
		log.Info("redis is not configured, keeping player statistics in memory")
		return repository.NewMemoryStatsRepository(), func() {}, nil
	}

	redisStorage, err := storage.New(ctx, redisAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	log.Info("player statistics stored in redis", "addr", redisAddr)

	return repository.NewStatsRepository(redisStorage), closeStorage, nil
}
