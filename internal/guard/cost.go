package guard

// Cost returns the weighted sum of all fields in an expanded tree.
// Each field contributes its registry weight (or the default) plus the
// cost of its children.
//
// Two simplifications are kept on purpose: a list-valued field costs
// the same as a single-valued one (pagination arguments are never
// read), and a field on an interface or union is costed as the single
// branch it was written on, not across possible concrete types.
func Cost(tree []*Selection, weights *WeightRegistry) int {
	total := 0
	for _, node := range tree {
		total += weights.Weight(node.OwnerType, node.Name)
		total += Cost(node.Children, weights)
	}
	return total
}
