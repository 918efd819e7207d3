package guard

import (
	schema "github.com/apollosolutions/graphguard/internal/schema"
)

// MinDepthLimit is the lowest MaxDepth a configuration may carry. The
// introspection schema (__schema / __type and their nested type, field
// and argument descriptions) is itself nested to roughly this depth, so
// a lower limit would make every introspection query fail.
const MinDepthLimit = 14

// DefaultWeight is the cost of a field with no registry override.
const DefaultWeight = 1

// WeightRegistry maps "Type.field" coordinates to explicit cost
// weights. Immutable once built; configuration reload replaces the
// whole registry rather than mutating it.
type WeightRegistry struct {
	defaultWeight int
	overrides     map[string]int
}

// NewWeightRegistry copies overrides into a fresh registry. A negative
// default is clamped to zero; callers are expected to have validated
// the configuration before this point.
func NewWeightRegistry(defaultWeight int, overrides map[string]int) *WeightRegistry {
	if defaultWeight < 0 {
		defaultWeight = 0
	}
	r := &WeightRegistry{
		defaultWeight: defaultWeight,
		overrides:     make(map[string]int, len(overrides)),
	}
	for coord, w := range overrides {
		r.overrides[coord] = w
	}
	return r
}

// Weight returns the cost of selecting fieldName on typeName.
func (r *WeightRegistry) Weight(typeName, fieldName string) int {
	if w, ok := r.overrides[typeName+"."+fieldName]; ok {
		return w
	}
	return r.defaultWeight
}

// DefaultWeight returns the weight applied to fields without overrides.
func (r *WeightRegistry) DefaultWeight() int { return r.defaultWeight }

// Thresholds are the admission limits of one configuration generation.
type Thresholds struct {
	MaxDepth     int
	MaxCost      int
	DepthEnabled bool
	CostEnabled  bool

	// MaxNodes bounds the size of the expanded selection tree.
	// 0 disables the bound.
	MaxNodes int
}

// DefaultThresholds returns the limits used when no configuration file
// is given.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDepth:     MinDepthLimit,
		MaxCost:      1000,
		DepthEnabled: true,
		CostEnabled:  true,
		MaxNodes:     10000,
	}
}

// Snapshot bundles everything one analysis reads: the schema and its
// field index, the weight registry and the thresholds. A request
// captures one Snapshot at the start of analysis and uses it
// throughout; reload publishes a new Snapshot instead of mutating the
// old one, so a single analysis never observes a torn configuration.
type Snapshot struct {
	Schema  *schema.Schema
	Index   *schema.FieldIndex
	Weights *WeightRegistry
	Limits  Thresholds
}
