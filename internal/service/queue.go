package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
)

// MatchQueue pairs waiting participants in arrival order. Every mutation, the
// eligibility check and the pairing callback run under one lock, so two
// concurrent joins can never both claim the same partner.
type MatchQueue[T comparable] struct {
	mu      sync.Mutex
	waiting []T

	eligible func(T) error
	paired   func(first, second T) func()
}

// NewMatchQueue creates a queue that calls paired with the two oldest entries as
// soon as two are waiting. eligible may veto a join; it can be nil.
// paired runs under the queue lock; the func it returns, if any, runs after the
// lock is released.
func NewMatchQueue[T comparable](eligible func(T) error, paired func(first, second T) func()) *MatchQueue[T] {
	return &MatchQueue[T]{
		eligible: eligible,
		paired:   paired,
	}
}

// Enqueue admits item and pairs the queue while it holds two or more entries.
// joined runs under the lock after admission and before any pairing; it can be nil.
func (that *MatchQueue[T]) Enqueue(item T, joined func()) error {
	followUps, err := that.admit(item, joined)

	for _, followUp := range followUps {
		followUp()
	}

	return err
}

func (that *MatchQueue[T]) admit(item T, joined func()) ([]func(), error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if slices.Contains(that.waiting, item) {
		return nil, apperror.ErrAlreadyQueued
	}

	if that.eligible != nil {
		if err := that.eligible(item); err != nil {
			return nil, fmt.Errorf("enqueue: %w", err)
		}
	}

	that.waiting = append(that.waiting, item)
	if joined != nil {
		joined()
	}

	var followUps []func()
	for len(that.waiting) >= 2 {
		first, second := that.waiting[0], that.waiting[1]
		that.waiting = that.waiting[2:]

		if followUp := that.paired(first, second); followUp != nil {
			followUps = append(followUps, followUp)
		}
	}

	return followUps, nil
}

// Dequeue removes item and reports whether it was waiting.
func (that *MatchQueue[T]) Dequeue(item T) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	i := slices.Index(that.waiting, item)
	if i < 0 {
		return false
	}

	that.waiting = slices.Delete(that.waiting, i, i+1)

	return true
}

func (that *MatchQueue[T]) Contains(item T) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return slices.Contains(that.waiting, item)
}

func (that *MatchQueue[T]) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.waiting)
}
