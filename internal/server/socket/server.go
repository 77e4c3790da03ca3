package socket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
	"github.com/rocketscienceinc/go-game-backend/internal/entity"
	"github.com/rocketscienceinc/go-game-backend/internal/protocol"
	"github.com/rocketscienceinc/go-game-backend/internal/service"
)

const (
	defaultBoardSize = 9
	recordTimeout    = 5 * time.Second
)

// Options tune the games the server hosts.
type Options struct {
	BoardSize    int
	TurnTimeout  time.Duration
	WriteTimeout time.Duration
	Banner       string
}

type resultRecorder interface {
	RecordResult(ctx context.Context, result entity.Result) error
}

type Server struct {
	logger   *slog.Logger
	opts     Options
	registry *registry
	queue    *service.MatchQueue[*Session]
	stats    resultRecorder

	handlers map[string]func(session *Session, msg protocol.Message)

	wg sync.WaitGroup
}

// New builds a server. stats may be nil, in which case results are only logged.
func New(logger *slog.Logger, opts Options, stats resultRecorder) *Server {
	if opts.BoardSize <= 0 {
		opts.BoardSize = defaultBoardSize
	}

	server := &Server{
		logger:   logger.With("component", "socket"),
		opts:     opts,
		registry: newRegistry(),
		stats:    stats,

		handlers: make(map[string]func(*Session, protocol.Message)),
	}

	server.queue = service.NewMatchQueue(server.eligible, server.startGame)

	server.handlers[protocol.CmdLogin] = server.handleLogin
	server.handlers[protocol.CmdQueue] = server.handleQueue
	server.handlers[protocol.CmdMove] = server.handleMove
	server.handlers[protocol.CmdPass] = server.handlePass
	server.handlers[protocol.CmdResign] = server.handleResign

	return server
}

// Start listens on port and serves until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	that.logger.Info("socket server started", "port", port)

	return that.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is cancelled, then closes
// every session and waits for them to finish.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	log := that.logger.With("method", "Serve")

	go func() {
		<-ctx.Done()
		_ = listener.Close()
		for _, session := range that.registry.all() {
			_ = session.conn.Close()
		}
	}()

	defer that.wg.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			log.Error("failed to accept connection", "error", err)
			continue
		}

		that.wg.Add(1)
		go func() {
			defer that.wg.Done()
			that.HandleConn(NewTCPConn(conn, that.opts.WriteTimeout))
		}()
	}
}

// HandleConn runs a session on conn and returns after the connection is closed
// and the session is torn down.
func (that *Server) HandleConn(conn LineConn) {
	session := newSession(that, conn)
	that.registry.add(session)
	session.run()
}

// Sessions returns the number of live connections.
func (that *Server) Sessions() int {
	return that.registry.len()
}

// Queued returns the number of players waiting for an opponent.
func (that *Server) Queued() int {
	return that.queue.Len()
}

func (that *Server) eligible(session *Session) error {
	if session.currentRoom() != nil {
		return apperror.ErrAlreadyInGame
	}
	return nil
}

// startGame runs under the queue lock. The first session in the queue plays black.
// Both sessions are bound while the room is locked, so no command reaches the
// game before GAME_STARTED. The returned func announces the game and unlocks
// the room once the queue lock is released.
func (that *Server) startGame(black, white *Session) func() {
	r := newRoom(that, uuid.NewString(), black, white)

	r.mu.Lock()
	black.bind(r)
	white.bind(r)

	return func() {
		defer r.mu.Unlock()
		r.open()
	}
}

func (that *Server) recordResult(result entity.Result) {
	if that.stats == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := that.stats.RecordResult(ctx, result); err != nil {
		that.logger.Error("failed to record game result", "game_id", result.GameID, "error", err)
	}
}
