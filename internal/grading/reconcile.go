package grading

import "fmt"

// Reconciliation is the merged outcome of a fast and a detail pass.
type Reconciliation struct {
	// BandScore is the visible headline band: min(fast, detail). The
	// detail pass may only lower the first impression, never raise it.
	BandScore float64

	// CriteriaScores are the detail pass's sub-scores, authoritative
	// once detail exists, regardless of the headline ceiling.
	CriteriaScores map[string]float64

	// DowngradedFastScore is true iff the final band is strictly below
	// the original fast band.
	DowngradedFastScore bool

	// Fast is a copy of the fast result, annotated AdjustedByDetail when
	// its displayed headline was overwritten to the lower detail band.
	Fast *FastResult

	// ScoreChanged reports whether the visible score moved, which forces
	// taxonomy re-classification downstream.
	ScoreChanged bool
}

// Reconcile merges a stored fast result and a new detail result for the
// same submission. Pure and idempotent: replays and forced re-runs produce
// identical output for identical input.
func Reconcile(fast *FastResult, detail *DetailResult) (*Reconciliation, error) {
	if fast == nil {
		return nil, fmt.Errorf("reconcile: fast result is required")
	}
	if detail == nil {
		return nil, fmt.Errorf("reconcile: detail result is required")
	}
	if len(detail.Criteria) == 0 {
		return nil, fmt.Errorf("reconcile: detail result has no criteria")
	}
	if detail.BandScore < 0 || detail.BandScore > 9 {
		return nil, fmt.Errorf("reconcile: detail band %.1f outside [0,9]", detail.BandScore)
	}

	final := min(fast.BandScore, detail.BandScore)
	downgraded := detail.BandScore < fast.BandScore

	fastCopy := *fast
	fastCopy.AdjustedByDetail = downgraded

	return &Reconciliation{
		BandScore:           final,
		CriteriaScores:      detail.CriteriaScores(),
		DowngradedFastScore: downgraded,
		Fast:                &fastCopy,
		ScoreChanged:        final != fast.BandScore,
	}, nil
}
