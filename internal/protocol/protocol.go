// Package protocol encodes and decodes the line-based game protocol.
// Every line is a message type followed by its arguments, joined by Separator.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const Separator = "~"

// Commands sent by clients.
const (
	CmdLogin  = "LOGIN"
	CmdQueue  = "QUEUE"
	CmdMove   = "MOVE"
	CmdPass   = "PASS"
	CmdResign = "RESIGN"
)

// Notifications sent by the server. MOVE and PASS are shared with the commands.
const (
	MsgHello        = "HELLO"
	MsgAccepted     = "ACCEPTED"
	MsgRejected     = "REJECTED"
	MsgQueued       = "QUEUED"
	MsgGameStarted  = "GAME_STARTED"
	MsgMove         = CmdMove
	MsgPass         = CmdPass
	MsgMakeMove     = "MAKE_MOVE"
	MsgGameOver     = "GAME_OVER"
	MsgError        = "ERROR"
	MsgDisconnected = "DISCONNECTED"
)

const (
	GameOverWinner = "Winner"
	GameOverDraw   = "Draw"
	QueueLeft      = "LEFT"
)

var (
	ErrEmptyMessage      = errors.New("empty message")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrMissingArgument   = errors.New("missing argument")
	ErrMalformedPosition = errors.New("malformed position")
)

// commands maps every inbound command to the number of arguments it needs.
var commands = map[string]int{
	CmdLogin:  1,
	CmdQueue:  0,
	CmdMove:   1,
	CmdPass:   0,
	CmdResign: 0,
}

// Message is one decoded protocol line.
type Message struct {
	Type string
	Args []string
}

// Arg returns the i-th argument, or an empty string when there is none.
func (that Message) Arg(i int) string {
	if i < 0 || i >= len(that.Args) {
		return ""
	}
	return that.Args[i]
}

func (that Message) String() string {
	return Format(that.Type, that.Args...)
}

// Decode splits a line into its type and arguments. The type is upper-cased so
// commands are case-insensitive. Arguments are kept as sent.
func Decode(line string) (Message, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Message{}, ErrEmptyMessage
	}

	parts := strings.Split(line, Separator)

	return Message{
		Type: strings.ToUpper(strings.TrimSpace(parts[0])),
		Args: parts[1:],
	}, nil
}

// ParseRequest decodes a client line and checks that it is a known command with
// the arguments it needs.
func ParseRequest(line string) (Message, error) {
	msg, err := Decode(line)
	if err != nil {
		return Message{}, err
	}

	required, ok := commands[msg.Type]
	if !ok {
		return msg, fmt.Errorf("%w: %s", ErrUnknownCommand, msg.Type)
	}

	if len(msg.Args) < required || (required > 0 && strings.TrimSpace(msg.Arg(0)) == "") {
		return msg, fmt.Errorf("%w: %s", ErrMissingArgument, msg.Type)
	}

	return msg, nil
}

// ParsePosition reads a MOVE argument for a board of the given size. The argument
// is either a linear index or a "col,row" pair. A pair with an axis outside the
// board maps to -1; range checks on linear indexes are left to the board.
func ParsePosition(arg string, size int) (int, error) {
	arg = strings.TrimSpace(arg)

	col, row, isPair := strings.Cut(arg, ",")
	if !isPair {
		pos, err := strconv.Atoi(arg)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedPosition, arg)
		}
		return pos, nil
	}

	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPosition, arg)
	}

	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPosition, arg)
	}

	if c < 0 || c >= size || r < 0 || r >= size {
		return -1, nil
	}

	return r*size + c, nil
}

// Format joins a message type and its arguments into one line without the trailing newline.
func Format(msgType string, args ...string) string {
	if len(args) == 0 {
		return msgType
	}
	return msgType + Separator + strings.Join(args, Separator)
}
