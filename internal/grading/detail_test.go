package grading

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/skilldrill/gradecore/internal/llm"
)

func detailJSON(t *testing.T, criteria map[string]CriterionDetail, band float64) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(map[string]any{"band_score": band, "criteria": criteria})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func fullCriteria(score float64) map[string]CriterionDetail {
	out := make(map[string]CriterionDetail, len(WritingCriteria))
	for _, k := range WritingCriteria {
		out[k] = CriterionDetail{Score: score}
	}
	return out
}

func TestDetailAdapter_TrimsSnippets(t *testing.T) {
	criteria := fullCriteria(6.0)
	criteria[CriterionGrammar] = CriterionDetail{
		Score: 5.5,
		Issues: []Issue{{
			TextSnippet: "the government have been implementing many new policies recently",
			Explanation: "subject-verb agreement",
			ErrorCode:   "subject_verb_agreement",
		}},
	}
	mock := llm.NewMockProvider(llm.MockResponse{Content: detailJSON(t, criteria, 6.0)})
	a := NewDetailAdapter(mock, DefaultDetailConfig())

	res, err := a.Grade(context.Background(), essay())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issues := res.Criteria[CriterionGrammar].Issues
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if n := len(strings.Fields(issues[0].TextSnippet)); n > 4 {
		t.Errorf("snippet has %d words, want at most 4: %q", n, issues[0].TextSnippet)
	}
	if issues[0].ErrorCode != "subject_verb_agreement" {
		t.Errorf("error code lost: %q", issues[0].ErrorCode)
	}
}

func TestDetailAdapter_ShallowCriteriaFoldIssues(t *testing.T) {
	criteria := fullCriteria(6.0)
	criteria[CriterionCoherence] = CriterionDetail{
		Score: 6.0,
		Issues: []Issue{
			{TextSnippet: "a", Explanation: "paragraph two lacks a topic sentence"},
			{TextSnippet: "b", Explanation: "abrupt transition into the conclusion"},
			{TextSnippet: "c", Explanation: "overuse of however"},
		},
	}
	mock := llm.NewMockProvider(llm.MockResponse{Content: detailJSON(t, criteria, 6.0)})
	a := NewDetailAdapter(mock, DefaultDetailConfig())

	res, err := a.Grade(context.Background(), essay())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := res.Criteria[CriterionCoherence]
	if len(c.Issues) != 0 {
		t.Errorf("shallow criterion kept %d issues, want 0", len(c.Issues))
	}
	if len(c.Notes) != 2 {
		t.Errorf("shallow notes = %d, want capped at 2", len(c.Notes))
	}
}

func TestDetailAdapter_MissingCriterionIsFatal(t *testing.T) {
	criteria := fullCriteria(6.0)
	delete(criteria, CriterionLexical)
	mock := llm.NewMockProvider(llm.MockResponse{Content: detailJSON(t, criteria, 6.0)})
	a := NewDetailAdapter(mock, DefaultDetailConfig())

	_, err := a.Grade(context.Background(), essay())
	if err == nil {
		t.Fatal("expected error for missing criterion")
	}
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Errorf("error type = %T, want *llm.ErrInvalidResponse", err)
	}
}

func TestDetailAdapter_QuantizesScores(t *testing.T) {
	criteria := fullCriteria(6.0)
	criteria[CriterionLexical] = CriterionDetail{Score: 6.3}
	mock := llm.NewMockProvider(llm.MockResponse{Content: detailJSON(t, criteria, 6.24)})
	a := NewDetailAdapter(mock, DefaultDetailConfig())

	res, err := a.Grade(context.Background(), essay())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BandScore != 6.0 {
		t.Errorf("band = %.2f, want 6.0", res.BandScore)
	}
	if res.Criteria[CriterionLexical].Score != 6.5 {
		t.Errorf("lexical = %.2f, want 6.5", res.Criteria[CriterionLexical].Score)
	}
}
