package protocol

import (
	"errors"
	"strconv"
)

// Texts carried by REJECTED and ERROR.
const (
	TextInvalidUsername = "Invalid username!"
	TextUsernameTaken   = "User by that name already logged in!"
	TextInvalidMove     = "Invalid move! Try again."
	TextNotYourTurn     = "It's not your turn!"
	TextNotInGame       = "You are not in a game!"
	TextAlreadyInGame   = "You are already in a game!"
	TextNotLoggedIn     = "You must log in first!"
)

func Hello(banner string) string {
	return Format(MsgHello, banner)
}

func Accepted(username string) string {
	return Format(MsgAccepted, username)
}

func Rejected(reason string) string {
	return Format(MsgRejected, reason)
}

func AlreadyLoggedIn(username string) string {
	return Rejected("Already logged in as " + username + "!")
}

func Queued() string {
	return MsgQueued
}

func LeftQueue() string {
	return Format(MsgQueued, QueueLeft)
}

// GameStarted announces a new game; black is listed first.
func GameStarted(black, white string, size int) string {
	return Format(MsgGameStarted, black+","+white, strconv.Itoa(size))
}

func Move(pos int, color string) string {
	return Format(MsgMove, strconv.Itoa(pos), color)
}

func Pass(color string) string {
	return Format(MsgPass, color)
}

func MakeMove() string {
	return MsgMakeMove
}

func Winner(username string) string {
	return Format(MsgGameOver, GameOverWinner, username)
}

func Draw() string {
	return Format(MsgGameOver, GameOverDraw)
}

func Error(text string) string {
	return Format(MsgError, text)
}

func TimedOut(username string) string {
	return Error(username + ", move timed out!")
}

func Disconnected(username string) string {
	return Format(MsgDisconnected, username)
}

// ErrorText turns a decoding failure into the text sent back to the client.
func ErrorText(err error, msg Message) string {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return "Empty message!"
	case errors.Is(err, ErrUnknownCommand):
		return "Unknown command: " + msg.Type
	case errors.Is(err, ErrMissingArgument):
		return "Missing argument for " + msg.Type + "!"
	case errors.Is(err, ErrMalformedPosition):
		return "Invalid position: " + msg.Arg(0)
	default:
		return err.Error()
	}
}
