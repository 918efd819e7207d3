package guard

import (
	"fmt"

	language "github.com/apollosolutions/graphguard/internal/language"
	schema "github.com/apollosolutions/graphguard/internal/schema"
)

// Selection is a single field in the expanded, fragment-free operation
// tree. Fragment spreads and inline fragments never appear here; their
// fields have been inlined. Immutable once built, owned by one request.
type Selection struct {
	Name         string
	Alias        string
	HasArguments bool

	// OwnerType is the type the field was selected on, used for
	// weight lookups. Fragment type conditions re-anchor it.
	OwnerType string

	// TypeName is the field's declared return type, or "" when the
	// field is not in the schema index.
	TypeName string

	// IsList records whether the declared return type is list-valued.
	// Informational only: list fields are costed like single-valued
	// ones.
	IsList bool

	Children []*Selection
}

type resolver struct {
	fragments language.FragmentDefinitionList
	index     *schema.FieldIndex
	maxNodes  int

	nodes  int
	active map[string]struct{} // fragment names currently being expanded
}

// Resolve expands a raw selection set into a tree containing only
// fields. Fragment boundaries are transparent: they contribute no
// nesting level of their own, only the fields inside them count.
// Type conditions are not evaluated; every branch is included and
// costed once.
//
// A fragment spread whose name is already on the active expansion chain
// fails with ErrFragmentCycle. When maxNodes > 0 the expansion fails
// with ErrExpansionTooLarge once more nodes than that have been
// produced, bounding the amplification a heavily reused (but acyclic)
// fragment graph can cause.
func Resolve(set language.SelectionSet, fragments language.FragmentDefinitionList, index *schema.FieldIndex, rootType string, maxNodes int) ([]*Selection, error) {
	r := &resolver{
		fragments: fragments,
		index:     index,
		maxNodes:  maxNodes,
		active:    make(map[string]struct{}),
	}
	return r.expand(set, rootType)
}

func (r *resolver) expand(set language.SelectionSet, ownerType string) ([]*Selection, error) {
	out := make([]*Selection, 0, len(set))
	for _, sel := range set {
		switch s := sel.(type) {
		case *language.Field:
			node, err := r.expandField(s, ownerType)
			if err != nil {
				return nil, err
			}
			out = append(out, node)

		case *language.FragmentSpread:
			expanded, err := r.expandSpread(s, ownerType)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)

		case *language.InlineFragment:
			owner := ownerType
			if s.TypeCondition != "" {
				owner = s.TypeCondition
			}
			expanded, err := r.expand(s.SelectionSet, owner)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		}
	}
	return out, nil
}

func (r *resolver) expandField(f *language.Field, ownerType string) (*Selection, error) {
	r.nodes++
	if r.maxNodes > 0 && r.nodes > r.maxNodes {
		return nil, fmt.Errorf("%w: more than %d fields after expansion", ErrExpansionTooLarge, r.maxNodes)
	}

	node := &Selection{
		Name:         f.Name,
		Alias:        f.Alias,
		HasArguments: len(f.Arguments) > 0,
		OwnerType:    ownerType,
	}
	if info, ok := r.index.Lookup(ownerType, f.Name); ok {
		node.TypeName = info.TypeName
		node.IsList = info.IsList
	}

	if len(f.SelectionSet) > 0 {
		children, err := r.expand(f.SelectionSet, node.TypeName)
		if err != nil {
			return nil, err
		}
		node.Children = children
	}
	return node, nil
}

func (r *resolver) expandSpread(s *language.FragmentSpread, ownerType string) ([]*Selection, error) {
	if _, ok := r.active[s.Name]; ok {
		return nil, fmt.Errorf("%w: fragment %q references itself", ErrFragmentCycle, s.Name)
	}
	def := r.fragments.ForName(s.Name)
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFragment, s.Name)
	}

	owner := ownerType
	if def.TypeCondition != "" {
		owner = def.TypeCondition
	}

	r.active[s.Name] = struct{}{}
	expanded, err := r.expand(def.SelectionSet, owner)
	delete(r.active, s.Name)
	if err != nil {
		return nil, err
	}
	return expanded, nil
}
