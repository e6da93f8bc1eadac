package darkmatter

import (
	"fmt"
	"os"
	"time"
)

// warnf prints a diagnostic to stderr. Diagnostics report degraded-but-
// recovered conditions (out-of-bounds decals, recovered callback panics,
// skipped render passes); none of them abort the loop.
func warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[darkmatter] warning: "+format+"\n", args...)
}

// warnDecalOutOfBounds reports a decal whose chunk-local coordinates fall
// outside [0, chunkSize). The decal is still stored; placement is never
// clamped or reassigned.
func warnDecalOutOfBounds(c *DecalChunk, localX, localY, size float64) {
	warnf("decal local position (%.1f, %.1f) outside chunk (%d, %d) bounds [0, %.0f)",
		localX, localY, c.ChunkX, c.ChunkY, size)
}

// debugMaxTreeDepth is the tree depth past which a warning is printed.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		warnf("tree depth %d exceeds %d (node %q)", depth, debugMaxTreeDepth, n.Name)
	}
}

// frameStats holds per-frame render metrics. Only populated in debug mode.
type frameStats struct {
	renderTime time.Duration
	nodeCount  int
	chunkCount int
}

// debugLogFrame prints render metrics to stderr.
func (e *Engine) debugLogFrame() {
	_, _ = fmt.Fprintf(os.Stderr,
		"[darkmatter] render: %v | nodes: %d | chunks: %d | fps: %.0f\n",
		e.stats.renderTime, e.stats.nodeCount, e.stats.chunkCount, e.Scheduler.fps)
}
