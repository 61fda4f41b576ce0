package submission

import (
	"errors"
	"testing"

	"github.com/skilldrill/gradecore/internal/grading"
	"github.com/skilldrill/gradecore/internal/taxonomy"
)

func newSub() *Submission {
	return &Submission{
		ID:            "sub-1",
		Skill:         grading.SkillWriting,
		Status:        StatusPending,
		ScoringState:  ScoringIdle,
		TaxonomyState: TaxonomyIdle,
	}
}

func fastResult(band float64) *grading.FastResult {
	return &grading.FastResult{BandScore: band, CriteriaScores: map[string]float64{grading.CriterionGrammar: band}}
}

func detailResult(band float64) *grading.DetailResult {
	return &grading.DetailResult{
		BandScore: band,
		Criteria:  map[string]grading.CriterionDetail{grading.CriterionGrammar: {Score: band}},
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	s := newSub()

	if err := s.ApplyFastResult(fastResult(7.0)); err != nil {
		t.Fatal(err)
	}
	if s.ScoringState != ScoringFastReady || s.Status != StatusProcessing {
		t.Fatalf("after fast: scoring=%s status=%s", s.ScoringState, s.Status)
	}
	if s.Score != 7.0 {
		t.Errorf("score = %.1f, want provisional 7.0", s.Score)
	}

	if err := s.BeginDetail(); err != nil {
		t.Fatal(err)
	}
	if s.ScoringState != ScoringDetailProcessing {
		t.Fatalf("after begin: scoring=%s", s.ScoringState)
	}

	detail := detailResult(5.5)
	rec, err := grading.Reconcile(s.FastResult, detail)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyReconciliation(rec, detail); err != nil {
		t.Fatal(err)
	}
	if s.ScoringState != ScoringDetailReady || s.Status != StatusScored {
		t.Fatalf("after reconcile: scoring=%s status=%s", s.ScoringState, s.Status)
	}
	if s.TaxonomyState != TaxonomyProcessing {
		t.Fatalf("taxonomy = %s, want processing after reconciliation", s.TaxonomyState)
	}
	if s.Score != 5.5 {
		t.Errorf("score = %.1f, want reconciled 5.5", s.Score)
	}
	if !s.FastResult.AdjustedByDetail {
		t.Error("stored fast result should be annotated")
	}

	if err := s.CompleteTaxonomy([]taxonomy.CodeCount{{Code: "spelling", Count: 2}}); err != nil {
		t.Fatal(err)
	}
	if s.TaxonomyState != TaxonomyReady {
		t.Fatalf("taxonomy = %s, want ready", s.TaxonomyState)
	}

	// A forced re-classification can complete again without re-entering
	// processing first.
	if err := s.CompleteTaxonomy([]taxonomy.CodeCount{{Code: "spelling", Count: 1}}); err != nil {
		t.Fatalf("re-completion from ready: %v", err)
	}
	if len(s.TaxonomyCodes) != 1 || s.TaxonomyCodes[0].Count != 1 {
		t.Errorf("codes = %v, want the re-run's output", s.TaxonomyCodes)
	}
}

func TestLifecycle_IllegalTransitions(t *testing.T) {
	s := newSub()

	// detail_ready cannot be reached from idle.
	rec, _ := grading.Reconcile(fastResult(6), detailResult(6))
	err := s.ApplyReconciliation(rec, detailResult(6))
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.Field != "scoring_state" {
		t.Errorf("field = %q, want scoring_state", te.Field)
	}

	// Taxonomy cannot complete before it ever started.
	if err := s.CompleteTaxonomy(nil); err == nil {
		t.Error("expected error completing taxonomy from idle")
	}
}

func TestLifecycle_FastAfterFastIsLegal(t *testing.T) {
	// Forced re-submission before detail starts replaces the fast result.
	s := newSub()
	if err := s.ApplyFastResult(fastResult(6.0)); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyFastResult(fastResult(6.5)); err != nil {
		t.Fatalf("fast_ready must be re-enterable: %v", err)
	}
	if s.Score != 6.5 {
		t.Errorf("score = %.1f, want 6.5", s.Score)
	}
}

func TestLifecycle_ReGradeFromDetailReady(t *testing.T) {
	s := newSub()
	if err := s.ApplyFastResult(fastResult(7)); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginDetail(); err != nil {
		t.Fatal(err)
	}
	rec, _ := grading.Reconcile(s.FastResult, detailResult(6))
	if err := s.ApplyReconciliation(rec, detailResult(6)); err != nil {
		t.Fatal(err)
	}

	// Forced re-grade re-enters detail_processing.
	if err := s.BeginDetail(); err != nil {
		t.Fatalf("forced re-grade: %v", err)
	}
	rec, _ = grading.Reconcile(s.FastResult, detailResult(6))
	if err := s.ApplyReconciliation(rec, detailResult(6)); err != nil {
		t.Fatal(err)
	}
	if s.TaxonomyState != TaxonomyProcessing {
		t.Error("re-reconciliation must re-enter taxonomy processing")
	}
}

func TestLifecycle_DetailWithoutFast(t *testing.T) {
	s := newSub()
	s.MarkProcessing()

	if err := s.BeginDetail(); err != nil {
		t.Fatalf("idle → detail_processing must be legal: %v", err)
	}
	if err := s.AdoptDetail(detailResult(6.5)); err != nil {
		t.Fatal(err)
	}
	if s.Score != 6.5 {
		t.Errorf("score = %.1f, want detail band with no ceiling", s.Score)
	}
	if s.FastResult != nil {
		t.Error("no fast result should appear out of nowhere")
	}
}

func TestLifecycle_FailDetailPreservesFast(t *testing.T) {
	s := newSub()
	if err := s.ApplyFastResult(fastResult(7)); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginDetail(); err != nil {
		t.Fatal(err)
	}

	s.FailDetail()
	if s.Status != StatusFailed {
		t.Errorf("status = %s, want failed", s.Status)
	}
	if s.FastResult == nil || s.Score != 7 {
		t.Error("fast result must remain visible after a detail failure")
	}
}
