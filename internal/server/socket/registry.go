package socket

import (
	"sync"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
)

// registry tracks every live session and the usernames they hold.
type registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	usernames map[string]*Session
}

func newRegistry() *registry {
	return &registry{
		sessions:  make(map[string]*Session),
		usernames: make(map[string]*Session),
	}
}

func (that *registry) add(session *Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID()] = session
}

// remove drops the session and frees its username.
func (that *registry) remove(session *Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, session.ID())

	for username, owner := range that.usernames {
		if owner == session {
			delete(that.usernames, username)
		}
	}
}

// claim reserves username for session unless another session holds it.
func (that *registry) claim(username string, session *Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if owner, ok := that.usernames[username]; ok && owner != session {
		return apperror.ErrUsernameTaken
	}

	that.usernames[username] = session

	return nil
}

func (that *registry) len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

func (that *registry) loggedIn() []*Session {
	that.mu.RLock()
	defer that.mu.RUnlock()

	sessions := make([]*Session, 0, len(that.usernames))
	for _, session := range that.usernames {
		sessions = append(sessions, session)
	}

	return sessions
}

func (that *registry) all() []*Session {
	that.mu.RLock()
	defer that.mu.RUnlock()

	sessions := make([]*Session, 0, len(that.sessions))
	for _, session := range that.sessions {
		sessions = append(sessions, session)
	}

	return sessions
}

// broadcast sends line to every logged-in session except the given one. The
// writes happen outside the registry lock.
func (that *registry) broadcast(except *Session, line string) {
	for _, session := range that.loggedIn() {
		if session == except {
			continue
		}
		session.send(line)
	}
}
