package entity

// Player is a participant of one game. The stone is fixed for the lifetime of
// the game and the score is only meaningful once the game is scored.
type Player struct {
	Username string `json:"username"`
	Stone    Stone  `json:"stone"`
	Score    int    `json:"score"`
}

func NewPlayer(username string) *Player {
	return &Player{Username: username}
}

// Reset clears the per-game state so the player can be seated again.
func (that *Player) Reset() {
	that.Stone = Empty
	that.Score = 0
}

// PlayerStats is the cumulative record of finished games for one username.
type PlayerStats struct {
	Username string `json:"username"`
	Wins     int64  `json:"wins"`
	Losses   int64  `json:"losses"`
	Draws    int64  `json:"draws"`
}

func (that PlayerStats) Games() int64 {
	return that.Wins + that.Losses + that.Draws
}

// Outcome is the PlayerStats counter a finished game increments.
type Outcome string

const (
	OutcomeWin  Outcome = "wins"
	OutcomeLoss Outcome = "losses"
	OutcomeDraw Outcome = "draws"
)

// PlayerOutcome is one participant's side of a finished game.
type PlayerOutcome struct {
	Username string
	Outcome  Outcome
}

// Outcomes splits a result into the outcome of each participant.
func (that Result) Outcomes() []PlayerOutcome {
	if that.IsDraw() {
		return []PlayerOutcome{
			{Username: that.Black.Username, Outcome: OutcomeDraw},
			{Username: that.White.Username, Outcome: OutcomeDraw},
		}
	}

	return []PlayerOutcome{
		{Username: that.Winner.Username, Outcome: OutcomeWin},
		{Username: that.Loser().Username, Outcome: OutcomeLoss},
	}
}

// Apply adds outcome to the matching counter.
func (that *PlayerStats) Apply(outcome Outcome) {
	switch outcome {
	case OutcomeWin:
		that.Wins++
	case OutcomeLoss:
		that.Losses++
	case OutcomeDraw:
		that.Draws++
	}
}
