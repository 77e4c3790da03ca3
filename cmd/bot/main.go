package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/go-game-backend/internal/bot"
)

// main connects a random-move player to a running server.
func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	username := flag.String("name", "RandomBot", "username to log in with")
	games := flag.Int("games", 0, "number of games to play, 0 plays forever")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	client := bot.NewClient(logger, conn, *username, bot.RandomStrategy{}, *games)
	if err = client.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("bot finished", "played", client.Played(), "won", client.Won())
}
