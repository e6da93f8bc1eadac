package darkmatter

// nodeIDCounter is a plain counter; the runtime is single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is a scene graph element. Nodes form trees rooted at the scene's root
// list; each node is exclusively owned by its parent. Behaviors attached to a
// node receive the lifecycle hooks; the node itself carries only identity,
// position, paint depth, and flags.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// X and Y are the node's world position. The traversal does not compose
	// parent transforms; world placement is the node's own responsibility.
	X, Y float64

	// Depth controls paint order only (not tree depth). Higher depth is
	// drawn first, i.e. farther back. Ties preserve traversal order.
	Depth float64

	// Active gates the update phases; inactive subtrees are skipped.
	Active bool
	// Visible gates the draw pass; invisible subtrees are skipped.
	Visible bool

	// Behaviors is the node's typed hook list, run in order.
	Behaviors []GameBehavior

	// UserData is an arbitrary caller payload.
	UserData any

	scene    *Scene // set while attached to a scene
	disposed bool
	started  bool
}

// NewNode creates a detached node with the given name, active and visible.
func NewNode(name string) *Node {
	return &Node{
		ID:      nextNodeID(),
		Name:    name,
		Active:  true,
		Visible: true,
	}
}

// AddBehavior appends a behavior to the node's hook list.
func (n *Node) AddBehavior(b GameBehavior) *Node {
	n.Behaviors = append(n.Behaviors, b)
	return n
}

// --- Tree manipulation ---
//
// Structural changes requested while a tick is traversing the tree are
// queued on the scene and applied between ticks; the traversal itself
// always operates on a snapshot taken at tick start.

// AddChild appends child to this node's children. If child already has a
// parent, it is removed from that parent first. Panics if child is nil or is
// an ancestor of this node (cycle). During a tick the attach is deferred to
// the end of the tick.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("darkmatter: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("darkmatter: adding child would create a cycle")
	}
	if n.scene != nil && n.scene.locked {
		n.scene.enqueue(func() { n.addChildNow(child) })
		return
	}
	n.addChildNow(child)
}

func (n *Node) addChildNow(child *Node) {
	if child.disposed || n.disposed {
		return
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	attachToScene(child, n.scene)
	if n.scene != nil {
		n.scene.startSubtree(child)
		if n.scene.debug {
			debugCheckTreeDepth(child)
		}
	}
}

// RemoveChild detaches child from this node. Panics if child's parent is not
// this node. During a tick the detach is deferred to the end of the tick.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("darkmatter: child's parent is not this node")
	}
	if n.scene != nil && n.scene.locked {
		n.scene.enqueue(func() { n.removeChildNow(child) })
		return
	}
	n.removeChildNow(child)
}

func (n *Node) removeChildNow(child *Node) {
	if child.Parent != n {
		return // already moved or removed by an earlier queued op
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	attachToScene(child, nil)
}

// RemoveFromParent detaches this node from its parent. No-op if detached.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// --- Destruction ---

// Destroy detaches this node and recursively destroys its subtree, invoking
// each behavior's OnDestroy hook. During a tick the destruction is deferred
// to the end of the tick.
func (n *Node) Destroy() {
	if n.disposed {
		return
	}
	if n.scene != nil && n.scene.locked {
		s := n.scene
		s.enqueue(func() { n.destroyNow() })
		return
	}
	n.destroyNow()
}

func (n *Node) destroyNow() {
	if n.disposed {
		return
	}
	if n.Parent != nil {
		n.Parent.removeChildByPtr(n)
		n.Parent = nil
	} else if n.scene != nil {
		n.scene.removeRoot(n)
	}
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, b := range n.Behaviors {
		safeOnDestroy(n, b)
	}
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Behaviors = nil
	n.UserData = nil
	n.scene = nil
	n.ID = 0
}

// IsDisposed reports whether this node has been destroyed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing
// child.Parent. Uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// attachToScene sets the scene pointer on node and all its descendants.
func attachToScene(node *Node, s *Scene) {
	node.scene = s
	for _, child := range node.children {
		attachToScene(child, s)
	}
}
