package socket

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/go-game-backend/internal/entity"
	"github.com/rocketscienceinc/go-game-backend/internal/protocol"
)

// Session is the server side of one client connection. It decodes commands,
// forwards them to the queue or the game room and writes notifications back.
type Session struct {
	id     string
	conn   LineConn
	server *Server

	writeMu sync.Mutex

	mu       sync.Mutex
	logger   *slog.Logger
	username string
	player   *entity.Player
	room     *room
}

func newSession(server *Server, conn LineConn) *Session {
	id := uuid.NewString()

	return &Session{
		id:     id,
		conn:   conn,
		server: server,
		logger: server.logger.With("session_id", id, "remote_addr", conn.RemoteAddr()),
	}
}

func (that *Session) ID() string {
	return that.id
}

// Username is empty until the session logged in.
func (that *Session) Username() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.username
}

func (that *Session) log() *slog.Logger {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.logger
}

func (that *Session) login(username string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.username = username
	that.player = entity.NewPlayer(username)
	that.logger = that.logger.With("username", username)
}

func (that *Session) playerRef() *entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.player
}

func (that *Session) currentRoom() *room {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room
}

func (that *Session) bind(r *room) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.room = r
}

// unbind detaches the session from r; a newer room is left alone.
func (that *Session) unbind(r *room) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.room == r {
		that.room = nil
	}
}

// send writes one line. A failed write closes the connection, which ends the
// read loop and runs the teardown.
func (that *Session) send(line string) {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.WriteLine(line); err != nil {
		that.log().Error("failed to send message", "message", line, "error", err)
		_ = that.conn.Close()
	}
}

func (that *Session) run() {
	log := that.log().With("method", "run")
	log.Info("session opened")

	defer that.teardown()

	that.send(protocol.Hello(that.server.opts.Banner))

	for {
		line, err := that.conn.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("read loop ended", "error", err)
			}
			return
		}

		that.dispatch(line)
	}
}

func (that *Session) dispatch(line string) {
	msg, err := protocol.ParseRequest(line)
	if err != nil {
		that.log().Debug("protocol error", "line", line, "error", err)
		that.send(protocol.Error(protocol.ErrorText(err, msg)))
		return
	}

	handler, ok := that.server.handlers[msg.Type]
	if !ok {
		that.send(protocol.Error(protocol.ErrorText(protocol.ErrUnknownCommand, msg)))
		return
	}

	handler(that, msg)
}

// teardown leaves the queue, forfeits a running game and tells the other
// logged-in sessions that this one is gone.
func (that *Session) teardown() {
	that.server.queue.Dequeue(that)

	if r := that.currentRoom(); r != nil {
		r.abandon(that)
	}

	username := that.Username()
	that.server.registry.remove(that)
	_ = that.conn.Close()

	if username != "" {
		that.server.registry.broadcast(that, protocol.Disconnected(username))
	}

	that.log().Info("session closed")
}
