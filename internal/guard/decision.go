package guard

import "fmt"

// Verdict is the admission outcome of one analysis.
type Verdict string

const (
	VerdictAllow  Verdict = "ALLOW"
	VerdictReject Verdict = "REJECT"
)

// Violation is one reason an operation was rejected. Measured and
// Limit are zero for structural rejections (fragment cycles, unknown
// operations) where no measurement was taken.
type Violation struct {
	Code     string
	Message  string
	Measured int
	Limit    int
}

// AnalysisResult is the complete outcome returned to the host: the
// measurements, the ordered violations (empty when allowed) and the
// final verdict.
type AnalysisResult struct {
	Depth      int
	Cost       int
	Violations []Violation
	Verdict    Verdict
}

// Decide compares measurements against thresholds. It is a pure
// function of its inputs: the same depth, cost and limits always yield
// the same result. A disabled check never contributes a violation;
// both violations may be present at once, depth first.
func Decide(depth, cost int, limits Thresholds) AnalysisResult {
	res := AnalysisResult{Depth: depth, Cost: cost, Verdict: VerdictAllow}

	if limits.DepthEnabled && depth > limits.MaxDepth {
		res.Violations = append(res.Violations, Violation{
			Code:     CodeDepthLimitExceeded,
			Message:  fmt.Sprintf("operation depth %d exceeds the maximum allowed depth %d", depth, limits.MaxDepth),
			Measured: depth,
			Limit:    limits.MaxDepth,
		})
	}
	if limits.CostEnabled && cost > limits.MaxCost {
		res.Violations = append(res.Violations, Violation{
			Code:     CodeCostLimitExceeded,
			Message:  fmt.Sprintf("operation cost %d exceeds the maximum allowed cost %d", cost, limits.MaxCost),
			Measured: cost,
			Limit:    limits.MaxCost,
		})
	}
	if len(res.Violations) > 0 {
		res.Verdict = VerdictReject
	}
	return res
}

// rejection builds the result for a structural failure that
// short-circuits before any measurement.
func rejection(code string, err error) AnalysisResult {
	return AnalysisResult{
		Verdict:    VerdictReject,
		Violations: []Violation{{Code: code, Message: err.Error()}},
	}
}
