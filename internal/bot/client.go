package bot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/go-game-backend/internal/entity"
	"github.com/rocketscienceinc/go-game-backend/internal/protocol"
)

var ErrLoginRejected = errors.New("login rejected")

// Client logs in after the greeting, queues and answers every MAKE_MOVE with its strategy. It keeps
// a local copy of the board built from the MOVE and PASS notifications.
type Client struct {
	logger   *slog.Logger
	conn     io.ReadWriteCloser
	username string
	strategy Strategy
	maxGames int

	board *entity.Board
	stone entity.Stone
	moved bool

	played int
	won    int
}

// NewClient creates a client that plays maxGames games, or forever when maxGames is zero.
func NewClient(logger *slog.Logger, conn io.ReadWriteCloser, username string, strategy Strategy, maxGames int) *Client {
	return &Client{
		logger:   logger.With("component", "bot", "username", username),
		conn:     conn,
		username: username,
		strategy: strategy,
		maxGames: maxGames,
	}
}

func (that *Client) Played() int {
	return that.played
}

func (that *Client) Won() int {
	return that.won
}

// Run plays until the game limit is reached, the server goes away or ctx is cancelled.
func (that *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = that.conn.Close()
	})
	defer stop()

	scanner := bufio.NewScanner(that.conn)
	for scanner.Scan() {
		msg, err := protocol.Decode(scanner.Text())
		if err != nil {
			continue
		}

		done, err := that.handle(msg)
		if err != nil || done {
			return err
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read from server: %w", err)
	}

	return io.ErrUnexpectedEOF
}

func (that *Client) handle(msg protocol.Message) (bool, error) {
	switch msg.Type {
	case protocol.MsgHello:
		return false, that.send(protocol.Format(protocol.CmdLogin, that.username))

	case protocol.MsgAccepted:
		return false, that.send(protocol.CmdQueue)

	case protocol.MsgRejected:
		return true, fmt.Errorf("%w: %s", ErrLoginRejected, msg.Arg(0))

	case protocol.MsgGameStarted:
		return false, that.startGame(msg)

	case protocol.MsgMove:
		that.applyMove(msg)

	case protocol.MsgPass:
		if that.board != nil {
			that.board.ClearKo()
		}

	case protocol.MsgMakeMove:
		return false, that.play()

	case protocol.MsgError:
		that.logger.Info("server error", "message", msg.Arg(0))
		// the local board disagrees with the server, so give the turn away
		if that.moved && msg.Arg(0) == protocol.TextInvalidMove {
			that.moved = false
			return false, that.send(protocol.CmdPass)
		}

	case protocol.MsgGameOver:
		return that.finishGame(msg)
	}

	return false, nil
}

func (that *Client) startGame(msg protocol.Message) error {
	names := strings.Split(msg.Arg(0), ",")

	size, err := strconv.Atoi(msg.Arg(1))
	if err != nil || len(names) != 2 {
		return fmt.Errorf("malformed game start %q", msg.String())
	}

	that.board = entity.NewBoard(size)
	opponent := names[0]
	that.stone = entity.White
	if names[0] == that.username {
		that.stone, opponent = entity.Black, names[1]
	}

	that.logger.Info("game started", "stone", that.stone, "opponent", opponent)

	return nil
}

func (that *Client) applyMove(msg protocol.Message) {
	if that.board == nil {
		return
	}

	pos, err := strconv.Atoi(msg.Arg(0))
	if err != nil {
		return
	}

	color, ok := entity.ParseStone(msg.Arg(1))
	if !ok {
		return
	}

	if color == that.stone {
		that.moved = false
	}

	if _, err = that.board.Place(pos, color); err != nil {
		that.logger.Warn("board out of sync", "position", pos, "error", err)
	}
}

func (that *Client) play() error {
	if that.board == nil {
		return that.send(protocol.CmdPass)
	}

	pos, pass := that.strategy.ChooseMove(that.board.LegalMoves(that.stone))
	if pass {
		return that.send(protocol.CmdPass)
	}

	that.moved = true

	return that.send(protocol.Format(protocol.CmdMove, strconv.Itoa(pos)))
}

func (that *Client) finishGame(msg protocol.Message) (bool, error) {
	that.played++
	if msg.Arg(0) == protocol.GameOverWinner && msg.Arg(1) == that.username {
		that.won++
	}

	that.logger.Info("game over", "result", msg.String(), "played", that.played, "won", that.won)
	that.board = nil

	if that.maxGames > 0 && that.played >= that.maxGames {
		return true, nil
	}

	return false, that.send(protocol.CmdQueue)
}

func (that *Client) send(line string) error {
	if _, err := io.WriteString(that.conn, line+"\n"); err != nil {
		return fmt.Errorf("send %q: %w", line, err)
	}
	return nil
}
