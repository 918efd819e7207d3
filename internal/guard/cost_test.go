package guard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCostDefaultWeights(t *testing.T) {
	snap := testSnapshot(t, DefaultThresholds(), nil)

	// Three selected fields at default weight 1.
	tree := mustResolve(t, snap, `{ a { b { c } } }`)
	require.Equal(t, 3, Cost(tree, snap.Weights))
}

func TestCostWithOverride(t *testing.T) {
	snap := testSnapshot(t, DefaultThresholds(), map[string]int{"A.b": 5})

	// 1(a) + 5(b) + 1(c)
	tree := mustResolve(t, snap, `{ a { b { c } } }`)
	require.Equal(t, 7, Cost(tree, snap.Weights))
}

func TestCostThroughFragments(t *testing.T) {
	snap := testSnapshot(t, DefaultThresholds(), map[string]int{"A.b": 5})

	// Fragment boundaries change nothing about costing.
	tree := mustResolve(t, snap, `
		fragment f on A { b { c } }
		{ a { ...f } }
	`)
	require.Equal(t, 7, Cost(tree, snap.Weights))
}

func TestCostListFieldIsNotMultiplied(t *testing.T) {
	snap := testSnapshot(t, DefaultThresholds(), nil)

	// A list-returning field costs the same as a scalar sibling:
	// cardinality is never estimated.
	list := mustResolve(t, snap, `{ things { id } }`)
	single := mustResolve(t, snap, `{ a { b } }`)
	require.Equal(t, Cost(single, snap.Weights), Cost(list, snap.Weights))
}

func TestCostIgnoresArguments(t *testing.T) {
	snap := testSnapshot(t, DefaultThresholds(), nil)

	with := mustResolve(t, snap, `{ things(first: 1000) { id } }`)
	without := mustResolve(t, snap, `{ things { id } }`)
	require.Equal(t, Cost(without, snap.Weights), Cost(with, snap.Weights))
}

func TestCostMonotonicUnderFieldAddition(t *testing.T) {
	weights := map[string]int{"A.b": 5, "Query.hello": 0, "Thing.name": 3}
	snap := testSnapshot(t, DefaultThresholds(), weights)

	// Each query extends the previous one by one field somewhere;
	// with non-negative weights cost must never decrease.
	queries := []string{
		`{ a }`,
		`{ a { b } }`,
		`{ a { b { c } } }`,
		`{ a { b { c } } hello }`,
		`{ a { b { c } } hello things { id } }`,
		`{ a { b { c } } hello things { id name } }`,
	}
	prev := -1
	for _, q := range queries {
		tree := mustResolve(t, snap, q)
		cost := Cost(tree, snap.Weights)
		require.GreaterOrEqual(t, cost, prev, "query %s", q)
		prev = cost
	}
}

func TestWeightRegistry(t *testing.T) {
	r := NewWeightRegistry(2, map[string]int{"Query.a": 7})
	require.Equal(t, 7, r.Weight("Query", "a"))
	require.Equal(t, 2, r.Weight("Query", "b"))
	require.Equal(t, 2, r.DefaultWeight())

	// The registry copies its input; later mutation has no effect.
	src := map[string]int{"Query.a": 1}
	r2 := NewWeightRegistry(1, src)
	src["Query.a"] = 100
	require.Equal(t, 1, r2.Weight("Query", "a"))
}
