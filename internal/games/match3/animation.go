package match3

import (
	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
)

// AnimationPhase represents the current phase of animation.
type AnimationPhase int

const (
	PhaseNone AnimationPhase = iota
	PhaseSwap
	PhaseRemove
	PhaseFall
	PhaseSpawn
)

// String returns the phase name used in snapshots.
func (p AnimationPhase) String() string {
	switch p {
	case PhaseSwap:
		return "swap"
	case PhaseRemove:
		return "remove"
	case PhaseFall:
		return "fall"
	case PhaseSpawn:
		return "spawn"
	default:
		return "none"
	}
}

// Timeline plays board events onto a display board one phase at a time.
// The authoritative board is never touched; the display is rebuilt purely
// from events, so once the queue drains it equals the authoritative board.
type Timeline struct {
	display *core.Board
	queue   []core.Event
	ticks   config.AnimationConfig

	phase    AnimationPhase
	batch    []core.Event // Events of the running phase
	elapsed  int
	duration int
}

// NewTimeline creates a timeline drawing onto display.
func NewTimeline(display *core.Board, ticks config.AnimationConfig) *Timeline {
	return &Timeline{display: display, ticks: ticks}
}

// Display returns the board as currently shown.
func (t *Timeline) Display() *core.Board {
	return t.display
}

// Phase returns the running phase.
func (t *Timeline) Phase() AnimationPhase {
	return t.phase
}

// Batch returns the events of the running phase.
func (t *Timeline) Batch() []core.Event {
	return t.batch
}

// Busy reports whether events are still playing.
func (t *Timeline) Busy() bool {
	return t.phase != PhaseNone || len(t.queue) > 0
}

// Progress returns how far the running phase is, from 0 to 1.
func (t *Timeline) Progress() float64 {
	if t.duration <= 0 {
		return 1
	}
	return min(float64(t.elapsed)/float64(t.duration), 1)
}

// Push queues events and starts playing if idle.
func (t *Timeline) Push(events []core.Event) error {
	t.queue = append(t.queue, events...)
	if t.phase == PhaseNone {
		return t.next()
	}
	return nil
}

// Update advances the running phase by one tick.
func (t *Timeline) Update() error {
	if t.phase == PhaseNone {
		return nil
	}
	t.elapsed++
	if t.elapsed < t.duration {
		return nil
	}
	if err := t.finish(); err != nil {
		return err
	}
	return t.next()
}

// Skip plays every queued event to completion at once.
func (t *Timeline) Skip() error {
	for t.Busy() {
		if err := t.finish(); err != nil {
			return err
		}
		if err := t.next(); err != nil {
			return err
		}
	}
	return nil
}

// next starts the phase for the head of the queue. Consecutive falls and
// consecutive spawns play together. Phases with zero duration complete
// immediately.
func (t *Timeline) next() error {
	for len(t.queue) > 0 {
		head := t.queue[0]
		n := 1
		if head.Kind() == core.KindFell || head.Kind() == core.KindSpawned {
			for n < len(t.queue) && t.queue[n].Kind() == head.Kind() {
				n++
			}
		}
		t.batch = t.queue[:n:n]
		t.queue = t.queue[n:]
		t.phase, t.duration = t.phaseFor(head.Kind())
		t.elapsed = 0

		if t.phase == PhaseSwap || t.phase == PhaseSpawn {
			// Shown at their destination from the first frame
			if err := t.apply(); err != nil {
				return err
			}
		}
		if t.duration > 0 {
			return nil
		}
		if err := t.finish(); err != nil {
			return err
		}
	}
	t.phase = PhaseNone
	t.batch = nil
	return nil
}

// finish applies the remaining effect of the running phase.
func (t *Timeline) finish() error {
	var err error
	if t.phase == PhaseRemove || t.phase == PhaseFall {
		err = t.apply()
	}
	t.phase = PhaseNone
	t.batch = nil
	return err
}

func (t *Timeline) apply() error {
	for _, e := range t.batch {
		if err := t.display.ApplyEvent(e); err != nil {
			return err
		}
	}
	return nil
}

func (t *Timeline) phaseFor(kind core.EventKind) (AnimationPhase, int) {
	switch kind {
	case core.KindSwapped:
		return PhaseSwap, t.ticks.SwapTicks
	case core.KindRemoved:
		return PhaseRemove, t.ticks.RemoveTicks
	case core.KindFell:
		return PhaseFall, t.ticks.FallTicks
	case core.KindSpawned:
		return PhaseSpawn, t.ticks.SpawnTicks
	default:
		return PhaseNone, 0
	}
}

// easeOutQuad provides smooth deceleration for animation.
func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

// fallRow returns the interpolated row of a falling tile.
func fallRow(e core.TileFell, progress float64) float64 {
	p := easeOutQuad(progress)
	return float64(e.From.Y) + float64(e.To.Y-e.From.Y)*p
}
