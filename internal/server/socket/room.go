package socket

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
	"github.com/rocketscienceinc/go-game-backend/internal/entity"
	"github.com/rocketscienceinc/go-game-backend/internal/protocol"
)

// room binds one game to the two sessions playing it. The lock is held for the
// whole of every action, including the broadcast that follows it.
type room struct {
	mu     sync.Mutex
	game   *entity.Game
	black  *Session
	white  *Session
	timer  turnTimer
	server *Server
	logger *slog.Logger
}

func newRoom(server *Server, id string, black, white *Session) *room {
	game := entity.NewGame(id, server.opts.BoardSize, black.playerRef(), white.playerRef())

	return &room{
		game:   game,
		black:  black,
		white:  white,
		timer:  turnTimer{timeout: server.opts.TurnTimeout},
		server: server,
		logger: server.logger.With("game_id", id, "black", black.Username(), "white", white.Username()),
	}
}

func (that *room) size() int {
	return that.game.Board.Size()
}

// act runs fn under the room lock. A result returned by fn is recorded once the
// lock is released.
func (that *room) act(fn func() *entity.Result) {
	that.mu.Lock()
	result := fn()
	that.mu.Unlock()

	if result != nil {
		that.server.recordResult(*result)
	}
}

func (that *room) playerOf(session *Session) *entity.Player {
	switch session {
	case that.black:
		return that.game.Black()
	case that.white:
		return that.game.White()
	default:
		return nil
	}
}

func (that *room) sessionOf(player *entity.Player) *Session {
	switch player {
	case that.game.Black():
		return that.black
	case that.game.White():
		return that.white
	default:
		return nil
	}
}

// announce sends line to both participants except skip.
func (that *room) announce(line string, skip *Session) {
	for _, session := range []*Session{that.black, that.white} {
		if session != skip {
			session.send(line)
		}
	}
}

func (that *room) start() {
	that.act(func() *entity.Result {
		that.open()
		return nil
	})
}

// open announces the game and prompts black. It needs the room lock and does
// nothing for a game that already ended.
func (that *room) open() {
	if that.game.IsFinished() {
		return
	}

	that.logger.Info("game started")
	that.announce(protocol.GameStarted(that.black.Username(), that.white.Username(), that.size()), nil)
	that.promptTurn()
}

// promptTurn tells the player to move and arms the turn deadline for them.
func (that *room) promptTurn() {
	session := that.sessionOf(that.game.Turn())
	if session == nil {
		return
	}

	session.send(protocol.MakeMove())
	that.timer.arm(that.onTimeout)
}

func (that *room) move(session *Session, pos int) {
	that.act(func() *entity.Result {
		player := that.playerOf(session)

		captured, err := that.game.Move(player, pos)
		if err != nil {
			that.reject(session, err)
			return nil
		}

		that.timer.stop()
		that.logger.Debug("stone placed", "position", pos, "stone", player.Stone, "captured", len(captured))
		that.announce(protocol.Move(pos, player.Stone.String()), nil)
		that.promptTurn()

		return nil
	})
}

func (that *room) pass(session *Session) {
	that.act(func() *entity.Result {
		player := that.playerOf(session)

		if err := that.game.Pass(player); err != nil {
			that.reject(session, err)
			return nil
		}

		that.timer.stop()
		that.announce(protocol.Pass(player.Stone.String()), nil)

		if that.game.IsFinished() {
			return that.end(nil)
		}

		that.promptTurn()

		return nil
	})
}

func (that *room) resign(session *Session) {
	that.act(func() *entity.Result {
		if err := that.game.Resign(that.playerOf(session)); err != nil {
			that.reject(session, err)
			return nil
		}

		return that.end(nil)
	})
}

// abandon forfeits the game of a session that is going away. The leaving
// session is not notified.
func (that *room) abandon(session *Session) {
	that.act(func() *entity.Result {
		if err := that.game.Abandon(that.playerOf(session)); err != nil {
			return nil
		}

		return that.end(session)
	})
}

func (that *room) onTimeout(gen uint64) {
	that.act(func() *entity.Result {
		// a move or pass may have won the race for the lock
		if !that.timer.current(gen) || that.game.IsFinished() {
			return nil
		}

		player := that.game.Turn()
		if err := that.game.Timeout(player); err != nil {
			that.logger.Error("failed to time out turn", "error", err)
			return nil
		}

		that.announce(protocol.TimedOut(player.Username), nil)

		return that.end(nil)
	})
}

// end announces the outcome and detaches both sessions from the room.
func (that *room) end(skip *Session) *entity.Result {
	that.timer.stop()

	result, ok := that.game.Result()
	if !ok {
		return nil
	}

	if result.IsDraw() {
		that.announce(protocol.Draw(), skip)
	} else {
		that.announce(protocol.Winner(result.Winner.Username), skip)
	}

	that.black.unbind(that)
	that.white.unbind(that)

	winner := ""
	if !result.IsDraw() {
		winner = result.Winner.Username
	}
	that.logger.Info("game over", "reason", result.Reason, "winner", winner,
		"black_score", result.Black.Score, "white_score", result.White.Score)

	return &result
}

// reject reports a refused action to the session that sent it.
func (that *room) reject(session *Session, err error) {
	log := that.logger.With("username", session.Username())

	switch {
	case errors.Is(err, apperror.ErrIllegalMove):
		log.Info("illegal move", "error", err)
		session.send(protocol.Error(protocol.TextInvalidMove))
	case errors.Is(err, apperror.ErrNotYourTurn):
		log.Info("move out of turn")
		session.send(protocol.Error(protocol.TextNotYourTurn))
	case errors.Is(err, apperror.ErrGameFinished), errors.Is(err, apperror.ErrNotParticipant):
		session.send(protocol.Error(protocol.TextNotInGame))
	default:
		log.Error("unexpected game error", "error", err)
		session.send(protocol.Error(err.Error()))
	}
}
