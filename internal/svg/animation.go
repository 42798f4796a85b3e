package svg

import (
	"math"
	"time"
)

// Animation rotates an element from its current rotation to Rotate degrees over Duration.
//
// A repeating animation restarts from its starting rotation every cycle and runs until
// the element is stopped or another animation replaces it. OnDone fires only for
// non-repeating animations, once the target is reached.
type Animation struct {
	Rotate   float64
	Duration time.Duration
	Repeat   bool
	OnDone   func()

	from    float64
	start   time.Time
	cycles  int
	element *Element
}

// Cycles returns the number of completed cycles.
func (a *Animation) Cycles() int { return a.cycles }

// Active reports whether the animation is still attached to its element.
func (a *Animation) Active() bool {
	return a.element != nil && a.element.anim == a
}

// Animate starts an animation on e, cancelling any in-flight one.
func (e *Element) Animate(anim Animation) *Animation {
	e.Stop()
	a := &anim
	a.from = e.Rotation()
	a.start = e.surface.Now()
	a.element = e
	e.anim = a
	return a
}

// Stop cancels any in-flight animation, leaving the element at its current rotation.
func (e *Element) Stop() *Element {
	e.anim = nil
	return e
}

// Animation returns the in-flight animation, or nil.
func (e *Element) Animation() *Animation { return e.anim }

func (a *Animation) step(now time.Time) {
	e := a.element
	if a.Duration <= 0 {
		e.attrs["transform"] = Rotate{Deg: a.Rotate}
		a.finish()
		return
	}
	progress := float64(now.Sub(a.start)) / float64(a.Duration)
	if progress < 0 {
		progress = 0
	}
	if a.Repeat {
		whole, frac := math.Modf(progress)
		a.cycles = int(whole)
		e.attrs["transform"] = Rotate{Deg: a.from + (a.Rotate-a.from)*frac}
		return
	}
	if progress >= 1 {
		e.attrs["transform"] = Rotate{Deg: a.Rotate}
		a.cycles = 1
		a.finish()
		return
	}
	e.attrs["transform"] = Rotate{Deg: a.from + (a.Rotate-a.from)*progress}
}

func (a *Animation) finish() {
	if a.element.anim == a {
		a.element.anim = nil
	}
	if a.OnDone != nil {
		a.OnDone()
	}
}
