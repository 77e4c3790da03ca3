// Package bot is an automated player speaking the line protocol.
package bot

import "math/rand/v2"

// Strategy picks a move from the legal positions, or passes.
type Strategy interface {
	ChooseMove(legal []int) (pos int, pass bool)
}

// RandomStrategy plays a uniformly random legal position and passes only when there is none.
type RandomStrategy struct{}

func (RandomStrategy) ChooseMove(legal []int) (int, bool) {
	if len(legal) == 0 {
		return 0, true
	}

	return legal[rand.IntN(len(legal))], false //nolint: gosec // move choice needs no crypto
}
