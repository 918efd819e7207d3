package guard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func permissive() Thresholds {
	return Thresholds{
		MaxDepth:     MinDepthLimit,
		MaxCost:      1000,
		DepthEnabled: true,
		CostEnabled:  true,
	}
}

func TestCheckAllows(t *testing.T) {
	snap := testSnapshot(t, permissive(), nil)
	res := Check(parseQuery(t, `{ a { b { c } } }`), "", snap)

	require.Equal(t, VerdictAllow, res.Verdict)
	require.Empty(t, res.Violations)
	require.Equal(t, 3, res.Depth)
	require.Equal(t, 3, res.Cost)
}

func TestCheckRejectsOnDepth(t *testing.T) {
	limits := permissive()
	limits.DepthEnabled = true
	limits.MaxDepth = 2
	// The floor applies to configuration loading; the engine itself
	// enforces whatever thresholds it was handed.
	snap := testSnapshot(t, limits, nil)

	res := Check(parseQuery(t, `{ a { b { c } } }`), "", snap)
	require.Equal(t, VerdictReject, res.Verdict)
	require.Len(t, res.Violations, 1)
	v := res.Violations[0]
	require.Equal(t, CodeDepthLimitExceeded, v.Code)
	require.Equal(t, 3, v.Measured)
	require.Equal(t, 2, v.Limit)
}

func TestCheckRejectsOnCost(t *testing.T) {
	limits := permissive()
	limits.MaxCost = 6
	snap := testSnapshot(t, limits, map[string]int{"A.b": 5})

	res := Check(parseQuery(t, `{ a { b { c } } }`), "", snap)
	require.Equal(t, VerdictReject, res.Verdict)
	require.Len(t, res.Violations, 1)
	v := res.Violations[0]
	require.Equal(t, CodeCostLimitExceeded, v.Code)
	require.Equal(t, 7, v.Measured)
	require.Equal(t, 6, v.Limit)
}

func TestCheckReportsBothViolationsDepthFirst(t *testing.T) {
	limits := permissive()
	limits.MaxDepth = 1
	limits.MaxCost = 1
	snap := testSnapshot(t, limits, nil)

	res := Check(parseQuery(t, `{ a { b { c } } }`), "", snap)
	require.Equal(t, VerdictReject, res.Verdict)
	require.Len(t, res.Violations, 2)
	require.Equal(t, CodeDepthLimitExceeded, res.Violations[0].Code)
	require.Equal(t, CodeCostLimitExceeded, res.Violations[1].Code)
}

func TestCheckDisabledAnalyzers(t *testing.T) {
	limits := permissive()
	limits.MaxDepth = 1
	limits.MaxCost = 1

	t.Run("depth disabled", func(t *testing.T) {
		l := limits
		l.DepthEnabled = false
		snap := testSnapshot(t, l, nil)
		res := Check(parseQuery(t, `{ a { b { c } } }`), "", snap)
		require.Equal(t, VerdictReject, res.Verdict)
		require.Len(t, res.Violations, 1)
		require.Equal(t, CodeCostLimitExceeded, res.Violations[0].Code)
		// A disabled analyzer never measures.
		require.Equal(t, 0, res.Depth)
	})

	t.Run("both disabled", func(t *testing.T) {
		l := limits
		l.DepthEnabled = false
		l.CostEnabled = false
		snap := testSnapshot(t, l, nil)
		res := Check(parseQuery(t, `{ a { b { c } } }`), "", snap)
		require.Equal(t, VerdictAllow, res.Verdict)
		require.Empty(t, res.Violations)
	})
}

func TestCheckFragmentCycleShortCircuits(t *testing.T) {
	snap := testSnapshot(t, permissive(), nil)
	res := Check(parseQuery(t, `
		fragment f on A { ...g }
		fragment g on A { ...f }
		{ a { ...f } }
	`), "", snap)

	require.Equal(t, VerdictReject, res.Verdict)
	require.Len(t, res.Violations, 1)
	require.Equal(t, CodeFragmentCycle, res.Violations[0].Code)
	// No measurements are produced for structurally broken documents.
	require.Equal(t, 0, res.Depth)
	require.Equal(t, 0, res.Cost)
}

func TestCheckOperationSelection(t *testing.T) {
	snap := testSnapshot(t, permissive(), nil)
	doc := parseQuery(t, `
		query One { hello }
		query Two { a { b { c } } }
	`)

	res := Check(doc, "Two", snap)
	require.Equal(t, VerdictAllow, res.Verdict)
	require.Equal(t, 3, res.Depth)

	res = Check(doc, "", snap)
	require.Equal(t, VerdictReject, res.Verdict)
	require.Equal(t, CodeOperationNotFound, res.Violations[0].Code)

	res = Check(doc, "Three", snap)
	require.Equal(t, VerdictReject, res.Verdict)
	require.Equal(t, CodeOperationNotFound, res.Violations[0].Code)
}

func TestCheckUnsupportedOperationKind(t *testing.T) {
	snap := testSnapshot(t, permissive(), nil)
	res := Check(parseQuery(t, `subscription { hello }`), "", snap)
	require.Equal(t, VerdictReject, res.Verdict)
	require.Equal(t, CodeOperationNotFound, res.Violations[0].Code)
}

func TestCheckDeterministic(t *testing.T) {
	limits := permissive()
	limits.MaxDepth = 2
	limits.MaxCost = 2
	snap := testSnapshot(t, limits, map[string]int{"A.b": 5})
	doc := parseQuery(t, `{ a { b { c } } }`)

	first := Check(doc, "", snap)
	for i := 0; i < 10; i++ {
		again := Check(doc, "", snap)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("analysis not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestCheckMutationRoot(t *testing.T) {
	snap := mutationSnapshot(t, permissive())
	res := Check(parseQuery(t, `mutation { rename(name: "x") }`), "", snap)
	require.Equal(t, VerdictAllow, res.Verdict)
	require.Equal(t, 1, res.Depth)
	require.Equal(t, 1, res.Cost)
}
