package guard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepth(t *testing.T) {
	snap := testSnapshot(t, DefaultThresholds(), nil)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"single field", `{ hello }`, 1},
		{"three levels", `{ a { b { c } } }`, 3},
		{"siblings do not add up", `{ hello a { b { c } } things { id } }`, 3},
		{"leaf object field", `{ a { b } }`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustResolve(t, snap, tt.query)
			require.Equal(t, tt.want, Depth(tree))
		})
	}
}

func TestDepthEmptyTree(t *testing.T) {
	require.Equal(t, 0, Depth(nil))
}

func TestDepthFragmentBoundariesAreTransparent(t *testing.T) {
	snap := testSnapshot(t, DefaultThresholds(), nil)

	// The same selection written three ways must measure the same.
	inlined := mustResolve(t, snap, `{ a { b { c } } }`)
	spread := mustResolve(t, snap, `
		fragment f on A { b { c } }
		{ a { ...f } }
	`)
	inline := mustResolve(t, snap, `{ a { ... on A { b { c } } } }`)

	require.Equal(t, 3, Depth(inlined))
	require.Equal(t, Depth(inlined), Depth(spread))
	require.Equal(t, Depth(inlined), Depth(inline))
}

func TestDepthIntrospectionFitsUnderFloor(t *testing.T) {
	snap := testSnapshot(t, DefaultThresholds(), nil)

	// A representative slice of the standard introspection query;
	// nested type references push it close to the enforced floor.
	tree := mustResolve(t, snap, `
	{
	  __schema {
	    types {
	      fields {
	        args {
	          type {
	            ofType { ofType { ofType { name } } }
	          }
	        }
	      }
	    }
	  }
	}`)
	depth := Depth(tree)
	require.Equal(t, 9, depth)
	require.LessOrEqual(t, depth, MinDepthLimit)
}
