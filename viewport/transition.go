package viewport

import "time"

// Transition is a pending animated viewport move. The host drives it by
// calling Controller.Tick each frame; Done closes when the move reaches
// its target or is superseded by a newer one.
type Transition struct {
	controller *Controller
	from       Transform
	to         Transform
	duration   time.Duration
	start      time.Time
	done       chan struct{}
	finished   bool
}

func newTransition(c *Controller, target Transform, duration time.Duration) *Transition {
	return &Transition{
		controller: c,
		from:       c.transform,
		to:         target,
		duration:   duration,
		done:       make(chan struct{}),
	}
}

// Done returns a channel that closes when the transition completes.
func (tr *Transition) Done() <-chan struct{} {
	return tr.done
}

func (tr *Transition) finish() {
	if !tr.finished {
		tr.finished = true
		close(tr.done)
	}
}

// step advances the animation to the given time, returning true when the
// transition has completed.
func (tr *Transition) step(now time.Time) bool {
	if tr.start.IsZero() {
		tr.start = now
	}
	progress := float64(now.Sub(tr.start)) / float64(tr.duration)
	if progress >= 1 {
		tr.controller.transform = tr.to
		tr.controller.emit()
		tr.finish()
		return true
	}
	if progress < 0 {
		progress = 0
	}

	// Smoothstep easing.
	e := progress * progress * (3 - 2*progress)
	tr.controller.transform = Transform{
		X:    tr.from.X + (tr.to.X-tr.from.X)*e,
		Y:    tr.from.Y + (tr.to.Y-tr.from.Y)*e,
		Zoom: tr.from.Zoom + (tr.to.Zoom-tr.from.Zoom)*e,
	}
	tr.controller.emit()
	return false
}
