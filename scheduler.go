package darkmatter

import (
	"errors"
	"math"
)

// ErrNoSceneLoaded is returned by Start when no scene is loaded. Nothing
// past a successful Start is fatal; per-frame failures degrade and the
// loop continues.
var ErrNoSceneLoaded = errors.New("darkmatter: no scene loaded")

// MaxDeltaTime caps the per-tick delta time in seconds. A stalled host
// callback otherwise produces one enormous delta and a spiral of catch-up
// work.
const MaxDeltaTime = 0.1

// SchedulerState is the frame scheduler's lifecycle state.
type SchedulerState uint8

const (
	SchedulerStopped SchedulerState = iota
	SchedulerRunning
	SchedulerPaused
)

func (s SchedulerState) String() string {
	switch s {
	case SchedulerStopped:
		return "stopped"
	case SchedulerRunning:
		return "running"
	case SchedulerPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// FrameScheduler drives the cooperative, single-threaded tick loop. The
// host's animation-callback mechanism invokes Tick with a monotonic
// millisecond timestamp; the scheduler itself never blocks and each tick
// runs to completion synchronously.
type FrameScheduler struct {
	// EnableVSync relies on host-driven pacing with no extra gating.
	// When false, MaxFPS is enforced by skipping early ticks.
	EnableVSync bool
	// MaxFPS limits executed ticks per second when EnableVSync is false.
	// Zero means unlimited.
	MaxFPS float64

	engine *Engine

	state         SchedulerState
	lastTimestamp float64
	lastFrameTime float64
	hasTimestamp  bool

	frameCount     uint64
	framesInSample int
	fpsSampleStart float64
	fps            float64
}

func newFrameScheduler(e *Engine) *FrameScheduler {
	return &FrameScheduler{engine: e, EnableVSync: true}
}

// State returns the scheduler's current lifecycle state.
func (fs *FrameScheduler) State() SchedulerState {
	return fs.state
}

// FPS returns the rolling frames-per-second estimate, sampled roughly once
// per second. It is an estimate, not an exact rate.
func (fs *FrameScheduler) FPS() float64 {
	return fs.fps
}

// FrameCount returns the total number of executed ticks since Start.
func (fs *FrameScheduler) FrameCount() uint64 {
	return fs.frameCount
}

// Start transitions Stopped -> Running. Fails with ErrNoSceneLoaded when no
// scene is loaded; the scheduler stays stopped. Starting while already
// running or paused is a no-op.
func (fs *FrameScheduler) Start() error {
	if fs.engine.scene == nil {
		return ErrNoSceneLoaded
	}
	if fs.state != SchedulerStopped {
		return nil
	}
	fs.state = SchedulerRunning
	fs.hasTimestamp = false
	fs.frameCount = 0
	fs.framesInSample = 0
	fs.fpsSampleStart = 0
	fs.fps = 0
	return nil
}

// Pause transitions Running -> Paused. No-op in any other state.
func (fs *FrameScheduler) Pause() {
	if fs.state == SchedulerRunning {
		fs.state = SchedulerPaused
	}
}

// Resume transitions Paused -> Running. No-op in any other state.
func (fs *FrameScheduler) Resume() {
	if fs.state == SchedulerPaused {
		fs.state = SchedulerRunning
	}
}

// Stop transitions to Stopped from any state. The host cancels its pending
// callback; there is no in-flight work to cancel because ticks are fully
// synchronous.
func (fs *FrameScheduler) Stop() {
	fs.state = SchedulerStopped
}

// Tick executes one frame at the given monotonic millisecond timestamp.
// Returns true if the tick executed, false if it was skipped (not running,
// or gated by MaxFPS).
//
// A MaxFPS skip does not advance the last timestamp: the skipped interval
// folds into the next executed tick's delta (still capped at MaxDeltaTime)
// rather than being discarded.
func (fs *FrameScheduler) Tick(timestampMs float64) bool {
	if fs.state != SchedulerRunning {
		return false
	}

	if !fs.EnableVSync && fs.MaxFPS > 0 && fs.hasTimestamp {
		if timestampMs-fs.lastFrameTime < 1000/fs.MaxFPS {
			return false
		}
	}

	dt := 0.0
	if fs.hasTimestamp {
		dt = math.Min((timestampMs-fs.lastTimestamp)/1000, MaxDeltaTime)
		if dt < 0 {
			dt = 0
		}
	} else {
		fs.fpsSampleStart = timestampMs
	}
	fs.lastTimestamp = timestampMs
	fs.lastFrameTime = timestampMs
	fs.hasTimestamp = true

	fs.frameCount++
	fs.framesInSample++
	if timestampMs-fs.fpsSampleStart >= 1000 {
		fs.fps = float64(fs.framesInSample)
		fs.framesInSample = 0
		fs.fpsSampleStart = timestampMs
	}

	fs.engine.step(dt)
	return true
}

// --- Per-callback panic isolation ---
//
// The isolation boundary is a single node-callback invocation, not a phase:
// a panic in one node's hook is recovered and logged, and the tick continues
// with the remaining nodes.

func safePhase(n *Node, phase string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			warnf("node %q: %s callback panicked: %v", n.Name, phase, r)
		}
	}()
	fn()
}

func safeOnDestroy(n *Node, b GameBehavior) {
	safePhase(n, "onDestroy", b.OnDestroy)
}
