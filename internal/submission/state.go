package submission

import (
	"fmt"
	"time"

	"github.com/skilldrill/gradecore/internal/grading"
	"github.com/skilldrill/gradecore/internal/taxonomy"
)

// TransitionError reports an illegal state change.
type TransitionError struct {
	Field string
	From  string
	To    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition %s → %s", e.Field, e.From, e.To)
}

// scoringTransitions is the legal scoring_state edge set. Re-entering
// detail_processing from detail_ready is a forced re-grade; entering it
// straight from idle covers submissions that never got a fast result.
var scoringTransitions = map[ScoringState][]ScoringState{
	ScoringIdle:             {ScoringFastReady, ScoringDetailProcessing},
	ScoringFastReady:        {ScoringFastReady, ScoringDetailProcessing},
	ScoringDetailProcessing: {ScoringDetailReady},
	ScoringDetailReady:      {ScoringDetailProcessing},
}

// taxonomyTransitions is the legal taxonomy_state edge set. ready →
// processing is the unconditional re-entry after reconciliation, and
// ready → ready lets a forced re-classification complete in place.
var taxonomyTransitions = map[TaxonomyState][]TaxonomyState{
	TaxonomyIdle:       {TaxonomyProcessing},
	TaxonomyProcessing: {TaxonomyProcessing, TaxonomyReady},
	TaxonomyReady:      {TaxonomyProcessing, TaxonomyReady},
}

func (s *Submission) transitionScoring(to ScoringState) error {
	for _, legal := range scoringTransitions[s.ScoringState] {
		if legal == to {
			s.ScoringState = to
			return nil
		}
	}
	return &TransitionError{Field: "scoring_state", From: string(s.ScoringState), To: string(to)}
}

func (s *Submission) transitionTaxonomy(to TaxonomyState) error {
	for _, legal := range taxonomyTransitions[s.TaxonomyState] {
		if legal == to {
			s.TaxonomyState = to
			return nil
		}
	}
	return &TransitionError{Field: "taxonomy_state", From: string(s.TaxonomyState), To: string(to)}
}

// ApplyFastResult records the provisional grade. The caller gets its
// response immediately after this; detail grading has not started.
func (s *Submission) ApplyFastResult(fast *grading.FastResult) error {
	if fast == nil {
		return fmt.Errorf("fast result is required")
	}
	if err := s.transitionScoring(ScoringFastReady); err != nil {
		return err
	}
	s.Status = StatusProcessing
	s.FastResult = fast
	s.Score = fast.BandScore
	s.touch()
	return nil
}

// MarkProcessing moves a submission into processing without a fast result,
// the degraded path when fast grading failed or was not configured.
func (s *Submission) MarkProcessing() {
	s.Status = StatusProcessing
	s.touch()
}

// BeginDetail marks the detail pass in flight.
func (s *Submission) BeginDetail() error {
	if err := s.transitionScoring(ScoringDetailProcessing); err != nil {
		return err
	}
	s.Status = StatusProcessing
	s.touch()
	return nil
}

// ApplyReconciliation records the merged final grade and re-enters
// taxonomy processing unconditionally: the visible score may have moved
// and classification must reflect the authoritative detail issues.
func (s *Submission) ApplyReconciliation(rec *grading.Reconciliation, detail *grading.DetailResult) error {
	if err := s.transitionScoring(ScoringDetailReady); err != nil {
		return err
	}
	if err := s.transitionTaxonomy(TaxonomyProcessing); err != nil {
		return err
	}
	s.Status = StatusScored
	s.FastResult = rec.Fast
	s.DetailResult = detail
	s.Score = rec.BandScore
	s.touch()
	return nil
}

// AdoptDetail records a detail grade for a submission that never produced
// a fast result; with no first impression to cap it, the detail band is
// the visible score.
func (s *Submission) AdoptDetail(detail *grading.DetailResult) error {
	if err := s.transitionScoring(ScoringDetailReady); err != nil {
		return err
	}
	if err := s.transitionTaxonomy(TaxonomyProcessing); err != nil {
		return err
	}
	s.Status = StatusScored
	s.DetailResult = detail
	s.Score = detail.BandScore
	s.touch()
	return nil
}

// FailDetail marks the attempt failed. The fast result stays visible as
// the last known good provisional value.
func (s *Submission) FailDetail() {
	s.Status = StatusFailed
	s.touch()
}

// CompleteTaxonomy records classification output.
func (s *Submission) CompleteTaxonomy(codes []taxonomy.CodeCount) error {
	if err := s.transitionTaxonomy(TaxonomyReady); err != nil {
		return err
	}
	s.TaxonomyCodes = codes
	s.touch()
	return nil
}

func (s *Submission) touch() {
	s.UpdatedAt = time.Now().UTC()
}
