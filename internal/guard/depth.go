package guard

// Depth returns the maximum nesting depth of an expanded tree. The
// top-level selection set is depth 1; each nested field selection adds
// one level; an empty tree is depth 0. The input is cycle-free by
// construction, so the walk needs no visited set.
func Depth(tree []*Selection) int {
	deepest := 0
	for _, node := range tree {
		if d := 1 + Depth(node.Children); d > deepest {
			deepest = d
		}
	}
	return deepest
}
