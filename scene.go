package darkmatter

// SceneDescriptor is the opaque, already-validated structure the excluded
// editor/loader hands to the engine. The runtime only reads the fields
// listed here. JSON tags match the serialized scene format.
type SceneDescriptor struct {
	Name string `json:"name"`

	// Initial viewport settings.
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Zoom       float64 `json:"zoom"`
	Angle      float64 `json:"angle"`
	PixelScale int     `json:"pixelScale"`

	// Decal streaming overrides. Zero means the engine default.
	ChunkSize     int `json:"chunkSize,omitempty"`
	PreloadRadius int `json:"preloadRadius,omitempty"`

	// Root scene nodes, already constructed by the instantiation layer.
	Nodes []*Node `json:"-"`
}

// Scene owns the root node list and the structural-mutation queue. Root
// nodes are owned by the scene; every other node is owned by its parent.
type Scene struct {
	Name string

	roots []*Node

	// locked is true while a tick traverses the tree; structural mutations
	// requested during that window queue until the tick ends.
	locked  bool
	pending []func()

	debug bool

	// Reused traversal buffers.
	updateBuf []*Node
	drawBuf   []*Node
}

// newScene builds a scene from a descriptor's root nodes.
func newScene(name string, roots []*Node) *Scene {
	s := &Scene{Name: name, roots: roots}
	for _, n := range roots {
		attachToScene(n, s)
	}
	return s
}

// Roots returns the root node list. The returned slice MUST NOT be mutated
// by the caller.
func (s *Scene) Roots() []*Node {
	return s.roots
}

// AddRoot adds a node as a scene root. During a tick the attach is deferred
// to the end of the tick.
func (s *Scene) AddRoot(node *Node) {
	if node == nil {
		panic("darkmatter: cannot add nil root")
	}
	if s.locked {
		s.enqueue(func() { s.addRootNow(node) })
		return
	}
	s.addRootNow(node)
}

func (s *Scene) addRootNow(node *Node) {
	if node.disposed {
		return
	}
	if node.Parent != nil {
		node.Parent.removeChildByPtr(node)
		node.Parent = nil
	}
	s.roots = append(s.roots, node)
	attachToScene(node, s)
	s.startSubtree(node)
}

// startSubtree runs Start hooks for nodes attached after scene load.
// Runtime-spawned nodes skip Preload; slow setup belongs to scene load.
func (s *Scene) startSubtree(root *Node) {
	Traverse([]*Node{root}, func(n *Node) {
		if n.started {
			return
		}
		n.started = true
		for _, b := range n.Behaviors {
			bb := b
			safePhase(n, "start", bb.Start)
		}
	})
}

// removeRoot detaches a root node without disposing it.
func (s *Scene) removeRoot(node *Node) {
	for i, n := range s.roots {
		if n == node {
			copy(s.roots[i:], s.roots[i+1:])
			s.roots[len(s.roots)-1] = nil
			s.roots = s.roots[:len(s.roots)-1]
			return
		}
	}
}

// enqueue defers a structural mutation until the current tick ends.
func (s *Scene) enqueue(fn func()) {
	s.pending = append(s.pending, fn)
}

// applyPending runs queued structural mutations. Called by the scheduler
// between ticks, never mid-traversal. The queue is detached before running
// so an op that enqueues more work cannot write into the list being
// iterated; newly enqueued ops wait for the next flush.
func (s *Scene) applyPending() {
	if len(s.pending) == 0 {
		return
	}
	ops := s.pending
	s.pending = nil
	for _, fn := range ops {
		fn()
	}
}

// snapshotActive rebuilds and returns the flattened list of active nodes.
// The update phases iterate this snapshot, so structural changes made by
// callbacks cannot affect the current pass.
func (s *Scene) snapshotActive() []*Node {
	s.updateBuf = collectActive(s.roots, s.updateBuf[:0])
	return s.updateBuf
}

// snapshotDrawable rebuilds and returns the flattened active+visible node
// list, stable-sorted by Depth descending for painting.
func (s *Scene) snapshotDrawable() []*Node {
	s.drawBuf = collectDrawable(s.roots, s.drawBuf[:0])
	sortByDepth(s.drawBuf)
	return s.drawBuf
}

// destroy disposes every root subtree, invoking OnDestroy hooks.
func (s *Scene) destroy() {
	roots := s.roots
	s.roots = nil
	for _, n := range roots {
		n.dispose()
	}
	s.pending = nil
}
