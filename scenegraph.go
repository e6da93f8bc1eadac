package darkmatter

import "sort"

// Traverse visits every node in nodes and its descendants depth-first, in
// array order (pre-order). The traversal does not compose transforms and
// does not filter on flags; callers that care about Active/Visible check
// them in visit or use the collect helpers.
func Traverse(nodes []*Node, visit func(*Node)) {
	for _, n := range nodes {
		traverseNode(n, visit)
	}
}

func traverseNode(n *Node, visit func(*Node)) {
	visit(n)
	for _, child := range n.children {
		traverseNode(child, visit)
	}
}

// collectActive appends every node in an active subtree to out, pre-order.
// An inactive node prunes its whole subtree. The returned slice reuses out's
// backing array.
func collectActive(nodes []*Node, out []*Node) []*Node {
	for _, n := range nodes {
		out = collectActiveNode(n, out)
	}
	return out
}

func collectActiveNode(n *Node, out []*Node) []*Node {
	if !n.Active || n.disposed {
		return out
	}
	out = append(out, n)
	for _, child := range n.children {
		out = collectActiveNode(child, out)
	}
	return out
}

// collectDrawable appends every active and visible node to out, pre-order.
// An invisible node prunes its whole subtree from the draw pass.
func collectDrawable(nodes []*Node, out []*Node) []*Node {
	for _, n := range nodes {
		out = collectDrawableNode(n, out)
	}
	return out
}

func collectDrawableNode(n *Node, out []*Node) []*Node {
	if !n.Active || !n.Visible || n.disposed {
		return out
	}
	out = append(out, n)
	for _, child := range n.children {
		out = collectDrawableNode(child, out)
	}
	return out
}

// sortByDepth stable-sorts a flattened draw list by Depth descending: higher
// depth is drawn first, i.e. farther back. Ties keep traversal order.
func sortByDepth(list []*Node) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Depth > list[j].Depth
	})
}
