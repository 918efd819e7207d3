package guard

import (
	"testing"

	language "github.com/apollosolutions/graphguard/internal/language"
	schema "github.com/apollosolutions/graphguard/internal/schema"
	"github.com/stretchr/testify/require"
)

// testSchemaSDL is the schema most analyzer tests run against.
const testSchemaSDL = `
type Query {
	a: A
	hello: String
	things: [Thing!]!
	node: Node
}
type A {
	b: B
}
type B {
	c: Int
}
type Thing {
	id: ID!
	name: String
}
interface Node {
	id: ID!
}
`

func testSnapshot(t *testing.T, limits Thresholds, weights map[string]int) *Snapshot {
	t.Helper()
	doc, err := language.ParseSchema("test.graphql", testSchemaSDL)
	require.NoError(t, err)
	s, err := schema.BuildFromSDL(doc)
	require.NoError(t, err)
	return &Snapshot{
		Schema:  s,
		Index:   schema.BuildIndex(s),
		Weights: NewWeightRegistry(DefaultWeight, weights),
		Limits:  limits,
	}
}

func mutationSnapshot(t *testing.T, limits Thresholds) *Snapshot {
	t.Helper()
	doc, err := language.ParseSchema("test.graphql", testSchemaSDL+`
type Mutation {
	rename(name: String!): String
}
`)
	require.NoError(t, err)
	s, err := schema.BuildFromSDL(doc)
	require.NoError(t, err)
	return &Snapshot{
		Schema:  s,
		Index:   schema.BuildIndex(s),
		Weights: NewWeightRegistry(DefaultWeight, nil),
		Limits:  limits,
	}
}

func parseQuery(t *testing.T, src string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(src)
	require.NoError(t, err)
	return doc
}

func mustResolve(t *testing.T, snap *Snapshot, src string) []*Selection {
	t.Helper()
	doc := parseQuery(t, src)
	op := doc.Operations[0]
	root := snap.Schema.RootType(string(op.Operation))
	tree, err := Resolve(op.SelectionSet, doc.Fragments, snap.Index, root, snap.Limits.MaxNodes)
	require.NoError(t, err)
	return tree
}
