package entity

import (
	"fmt"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
)

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

// EndReason tells how a game reached its end.
type EndReason string

const (
	ReasonPasses      EndReason = "passes"
	ReasonResignation EndReason = "resignation"
	ReasonTimeout     EndReason = "timeout"
	ReasonDisconnect  EndReason = "disconnect"
)

// consecutive passes that end the game
const passesToFinish = 2

// Result is the outcome of a finished game. Winner is nil on a draw.
type Result struct {
	GameID string
	Reason EndReason
	Black  *Player
	White  *Player
	Winner *Player
}

func (that Result) IsDraw() bool {
	return that.Winner == nil
}

// Loser returns the player that did not win, or nil on a draw.
func (that Result) Loser() *Player {
	switch that.Winner {
	case nil:
		return nil
	case that.Black:
		return that.White
	default:
		return that.Black
	}
}

// Game is the two-player turn state machine on top of a Board. It is not safe
// for concurrent use; callers serialise access per game.
type Game struct {
	ID     string
	Board  *Board
	Status string

	black  *Player
	white  *Player
	turn   *Player
	passes int
	result *Result

	// fixedTurn keeps the turn on the current player after every move; tests use it
	// to build positions with one colour.
	fixedTurn bool
}

// NewGame seats black and white, resets their per-game state and gives black the first move.
func NewGame(id string, size int, black, white *Player) *Game {
	black.Reset()
	white.Reset()
	black.Stone = Black
	white.Stone = White

	return &Game{
		ID:     id,
		Board:  NewBoard(size),
		Status: StatusOngoing,
		black:  black,
		white:  white,
		turn:   black,
	}
}

func (that *Game) Black() *Player {
	return that.black
}

func (that *Game) White() *Player {
	return that.white
}

// Turn returns the player to move, or nil once the game is finished.
func (that *Game) Turn() *Player {
	if that.IsFinished() {
		return nil
	}
	return that.turn
}

// Opponent returns the other participant, or nil when player is not seated here.
func (that *Game) Opponent(player *Player) *Player {
	switch player {
	case that.black:
		return that.white
	case that.white:
		return that.black
	default:
		return nil
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// Passes returns the number of consecutive passes so far.
func (that *Game) Passes() int {
	return that.passes
}

// Result returns the outcome once the game is finished.
func (that *Game) Result() (Result, bool) {
	if that.result == nil {
		return Result{}, false
	}
	return *that.result, true
}

// Move places the player's stone on pos and hands the turn over.
// On any error the game state is unchanged.
func (that *Game) Move(player *Player, pos int) ([]int, error) {
	if err := that.confirmTurn(player); err != nil {
		return nil, err
	}

	captured, err := that.Board.Place(pos, player.Stone)
	if err != nil {
		return nil, fmt.Errorf("%s at %d: %w", player.Stone, pos, err)
	}

	that.passes = 0
	that.advanceTurn()

	return captured, nil
}

// Pass gives up the player's turn. The second consecutive pass finishes and scores the game.
func (that *Game) Pass(player *Player) error {
	if err := that.confirmTurn(player); err != nil {
		return err
	}

	that.passes++
	that.Board.ClearKo()

	if that.passes >= passesToFinish {
		that.finishByScore()
		return nil
	}

	that.advanceTurn()

	return nil
}

// Resign ends the game in favour of the opponent, regardless of whose turn it is.
func (that *Game) Resign(player *Player) error {
	return that.forfeit(player, ReasonResignation)
}

// Timeout ends the game as if the player to move had resigned.
func (that *Game) Timeout(player *Player) error {
	if err := that.confirmTurn(player); err != nil {
		return err
	}

	return that.forfeit(player, ReasonTimeout)
}

// Abandon ends the game because the player left the server.
func (that *Game) Abandon(player *Player) error {
	return that.forfeit(player, ReasonDisconnect)
}

func (that *Game) confirmTurn(player *Player) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Opponent(player) == nil {
		return apperror.ErrNotParticipant
	}

	if player != that.turn {
		return apperror.ErrNotYourTurn
	}

	return nil
}

func (that *Game) advanceTurn() {
	if that.fixedTurn {
		return
	}
	that.turn = that.Opponent(that.turn)
}

func (that *Game) forfeit(player *Player, reason EndReason) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	opponent := that.Opponent(player)
	if opponent == nil {
		return apperror.ErrNotParticipant
	}

	that.finish(reason, opponent)

	return nil
}

func (that *Game) finishByScore() {
	that.Board.Score()
	that.black.Score = that.Board.Count(Black)
	that.white.Score = that.Board.Count(White)

	var winner *Player
	switch {
	case that.black.Score > that.white.Score:
		winner = that.black
	case that.white.Score > that.black.Score:
		winner = that.white
	}

	that.finish(ReasonPasses, winner)
}

func (that *Game) finish(reason EndReason, winner *Player) {
	that.Status = StatusFinished
	that.result = &Result{
		GameID: that.ID,
		Reason: reason,
		Black:  that.black,
		White:  that.white,
		Winner: winner,
	}
}
