package socket

import "time"

// turnTimer is the single outstanding per-turn deadline of a room. It is
// guarded by the room lock. Every arm or stop starts a new generation, and a
// callback from an older generation must be ignored.
type turnTimer struct {
	timeout time.Duration
	timer   *time.Timer
	gen     uint64
}

// arm replaces any running deadline. fire receives the generation it was armed with.
func (that *turnTimer) arm(fire func(gen uint64)) {
	that.stop()

	if that.timeout <= 0 {
		return
	}

	gen := that.gen
	that.timer = time.AfterFunc(that.timeout, func() {
		fire(gen)
	})
}

// stop cancels the deadline. It is safe to call repeatedly and after the timer fired.
func (that *turnTimer) stop() {
	that.gen++

	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}
}

func (that *turnTimer) current(gen uint64) bool {
	return that.timer != nil && gen == that.gen
}
