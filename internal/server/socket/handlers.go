package socket

import (
	"errors"
	"strings"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
	"github.com/rocketscienceinc/go-game-backend/internal/protocol"
)

func (that *Server) handleLogin(session *Session, msg protocol.Message) {
	log := session.log().With("method", "handleLogin")

	if current := session.Username(); current != "" {
		session.send(protocol.AlreadyLoggedIn(current))
		return
	}

	username := strings.TrimSpace(msg.Arg(0))
	if !validUsername(username) {
		log.Info("invalid username", "username", username)
		session.send(protocol.Rejected(protocol.TextInvalidUsername))
		return
	}

	if err := that.registry.claim(username, session); err != nil {
		log.Info("username taken", "username", username)
		session.send(protocol.Rejected(protocol.TextUsernameTaken))
		return
	}

	session.login(username)
	session.send(protocol.Accepted(username))

	session.log().Info("logged in")
}

// validUsername refuses names that cannot be echoed back in GAME_STARTED.
func validUsername(username string) bool {
	return username != "" && !strings.ContainsAny(username, protocol.Separator+",")
}

// handleQueue toggles the session's place in the queue.
func (that *Server) handleQueue(session *Session, _ protocol.Message) {
	log := session.log().With("method", "handleQueue")

	if session.Username() == "" {
		session.send(protocol.Error(protocol.TextNotLoggedIn))
		return
	}

	if that.queue.Dequeue(session) {
		log.Info("left the queue")
		session.send(protocol.LeftQueue())
		return
	}

	err := that.queue.Enqueue(session, func() {
		log.Info("joined the queue")
		session.send(protocol.Queued())
	})

	switch {
	case errors.Is(err, apperror.ErrAlreadyInGame):
		session.send(protocol.Error(protocol.TextAlreadyInGame))
	case err != nil:
		log.Error("failed to enqueue", "error", err)
		session.send(protocol.Error(err.Error()))
	}
}

func (that *Server) handleMove(session *Session, msg protocol.Message) {
	r := session.currentRoom()
	if r == nil {
		session.send(protocol.Error(protocol.TextNotInGame))
		return
	}

	pos, err := protocol.ParsePosition(msg.Arg(0), r.size())
	if err != nil {
		session.log().Debug("protocol error", "error", err)
		session.send(protocol.Error(protocol.ErrorText(err, msg)))
		return
	}

	r.move(session, pos)
}

func (that *Server) handlePass(session *Session, _ protocol.Message) {
	r := session.currentRoom()
	if r == nil {
		session.send(protocol.Error(protocol.TextNotInGame))
		return
	}

	r.pass(session)
}

func (that *Server) handleResign(session *Session, _ protocol.Message) {
	r := session.currentRoom()
	if r == nil {
		session.send(protocol.Error(protocol.TextNotInGame))
		return
	}

	r.resign(session)
}
