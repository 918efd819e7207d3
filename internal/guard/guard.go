// Package guard measures the structural depth and weighted cost of
// parsed GraphQL operations and decides whether they may execute.
// Fragment spreads are expanded (with cycle detection) before
// measurement; all analysis is a pure, request-local tree walk over
// one immutable configuration snapshot.
package guard

import (
	"errors"
	"fmt"
	"sync"

	language "github.com/apollosolutions/graphguard/internal/language"
)

// Check analyzes one operation of doc against snap and returns the
// verdict. operationName selects the operation; an empty name is
// accepted only when the document holds exactly one.
//
// Check never mutates doc or snap and holds no state between calls:
// analyzing the same document against the same snapshot twice yields
// identical results.
func Check(doc *language.QueryDocument, operationName string, snap *Snapshot) AnalysisResult {
	op := operationByName(doc, operationName)
	if op == nil {
		if operationName == "" {
			return rejection(CodeOperationNotFound, fmt.Errorf("%w: document defines %d operations and none was named", ErrOperationNotFound, len(doc.Operations)))
		}
		return rejection(CodeOperationNotFound, fmt.Errorf("%w: %q", ErrOperationNotFound, operationName))
	}

	rootType := snap.Schema.RootType(string(op.Operation))
	if rootType == "" || snap.Schema.Types[rootType] == nil {
		return rejection(CodeOperationNotFound, fmt.Errorf("%w: schema does not support %s operations", ErrOperationNotFound, op.Operation))
	}

	tree, err := Resolve(op.SelectionSet, doc.Fragments, snap.Index, rootType, snap.Limits.MaxNodes)
	if err != nil {
		return rejection(resolveCode(err), err)
	}

	// Both analyzers are read-only walks over the same immutable
	// tree, so they can run side by side.
	var depth, cost int
	var wg sync.WaitGroup
	if snap.Limits.DepthEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			depth = Depth(tree)
		}()
	}
	if snap.Limits.CostEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cost = Cost(tree, snap.Weights)
		}()
	}
	wg.Wait()

	return Decide(depth, cost, snap.Limits)
}

// operationByName returns the named operation, falling back to the
// only operation when no name is given.
func operationByName(doc *language.QueryDocument, name string) *language.OperationDefinition {
	if op := doc.Operations.ForName(name); op != nil {
		return op
	}
	if name == "" && len(doc.Operations) == 1 {
		return doc.Operations[0]
	}
	return nil
}

func resolveCode(err error) string {
	switch {
	case errors.Is(err, ErrFragmentCycle):
		return CodeFragmentCycle
	case errors.Is(err, ErrExpansionTooLarge):
		return CodeExpansionTooLarge
	case errors.Is(err, ErrUnknownFragment):
		return CodeUnknownFragment
	}
	return CodeOperationNotFound
}
