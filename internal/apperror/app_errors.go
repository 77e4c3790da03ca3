package apperror

import "errors"

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrGameFinished    = errors.New("game is already finished")
	ErrNotParticipant  = errors.New("player is not a participant of this game")
	ErrNotInGame       = errors.New("not in a game")
	ErrAlreadyInGame   = errors.New("already in a game")
	ErrAlreadyQueued   = errors.New("already in the queue")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrInvalidUsername = errors.New("invalid username")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrPlayerNotFound  = errors.New("player not found")
)
