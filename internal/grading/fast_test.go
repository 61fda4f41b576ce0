package grading

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/skilldrill/gradecore/internal/llm"
)

func essay() EssayInput {
	return EssayInput{
		EssayText: "Many people believe that technology improves education.",
		TaskType:  "essay",
		Skill:     SkillWriting,
	}
}

func fastJSON(band float64, grammar float64) json.RawMessage {
	payload := map[string]any{
		"band_score": band,
		"criteria_scores": map[string]float64{
			"task_response":              band,
			"coherence_cohesion":         band,
			"lexical_resource":           band,
			"grammatical_range_accuracy": grammar,
		},
	}
	b, _ := json.Marshal(payload)
	return b
}

func TestFastAdapter_MergesHigherOfTwoPasses(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: fastJSON(6.0, 6.0)},
		llm.MockResponse{Content: fastJSON(6.5, 6.5)},
	)
	a := NewFastAdapter(mock, MaxBand, FastConfig{Passes: 2})

	res, err := a.Grade(context.Background(), essay())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BandScore != 6.5 {
		t.Errorf("band = %.1f, want 6.5 (higher of the two passes)", res.BandScore)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestFastAdapter_ToleratesOneFailedPass(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Content: fastJSON(6.0, 6.0)},
	)
	a := NewFastAdapter(mock, MaxBand, FastConfig{Passes: 2})

	res, err := a.Grade(context.Background(), essay())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BandScore != 6.0 {
		t.Errorf("band = %.1f, want 6.0", res.BandScore)
	}
}

func TestFastAdapter_AllPassesFail(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
	)
	a := NewFastAdapter(mock, MaxBand, FastConfig{Passes: 2})

	if _, err := a.Grade(context.Background(), essay()); err == nil {
		t.Fatal("expected error when every pass fails")
	}
}

func TestFastAdapter_StripsUnknownFields(t *testing.T) {
	// Models that ignore the schema sometimes emit verbose extras. Only the
	// compact payload shape may reach the stored result.
	raw := json.RawMessage(`{
		"band_score": 6.2,
		"criteria_scores": {
			"task_response": 6.0,
			"coherence_cohesion": 6.0,
			"lexical_resource": 6.0,
			"grammatical_range_accuracy": 6.0,
			"made_up_criterion": 9.0
		},
		"sample_essay": "A full rewritten essay...",
		"issues": [{"text_snippet": "whole paragraph"}]
	}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	a := NewFastAdapter(mock, MaxBand, FastConfig{Passes: 1})

	res, err := a.Grade(context.Background(), essay())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.CriteriaScores["made_up_criterion"]; ok {
		t.Error("unknown criterion key survived sanitization")
	}
	if res.BandScore != 6.0 {
		t.Errorf("band = %.1f, want quantized 6.0", res.BandScore)
	}

	out, _ := json.Marshal(res)
	if strings.Contains(string(out), "sample_essay") || strings.Contains(string(out), "rewritten essay") {
		t.Error("sample answer text leaked into the fast result")
	}
}

func TestFastAdapter_CapsNoteLength(t *testing.T) {
	long := strings.Repeat("x", maxFastNoteLen+100)
	raw, _ := json.Marshal(map[string]any{
		"band_score":      6.0,
		"criteria_scores": map[string]float64{"task_response": 6.0},
		"notes":           map[string]string{"task_response": long},
	})
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	a := NewFastAdapter(mock, MaxBand, FastConfig{Passes: 1})

	res, err := a.Grade(context.Background(), essay())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(res.Notes["task_response"]); got != maxFastNoteLen {
		t.Errorf("note length = %d, want %d", got, maxFastNoteLen)
	}
}

func TestFastAdapter_NoteTruncationKeepsRunesIntact(t *testing.T) {
	// A run of multi-byte characters whose byte length straddles the cap.
	long := strings.Repeat("é", maxFastNoteLen)
	raw, _ := json.Marshal(map[string]any{
		"band_score":      6.0,
		"criteria_scores": map[string]float64{"task_response": 6.0},
		"notes":           map[string]string{"task_response": long},
	})
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	a := NewFastAdapter(mock, MaxBand, FastConfig{Passes: 1})

	res, err := a.Grade(context.Background(), essay())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	note := res.Notes["task_response"]
	if len(note) > maxFastNoteLen {
		t.Errorf("note length = %d, want at most %d", len(note), maxFastNoteLen)
	}
	if !utf8.ValidString(note) {
		t.Error("truncated note contains a split rune")
	}
}

func TestQuantizeBand(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{6.2, 6.0},
		{6.3, 6.5},
		{6.75, 7.0},
		{-1, 0},
		{9.8, 9},
		{6.5, 6.5},
	}
	for _, c := range cases {
		if got := QuantizeBand(c.in); got != c.want {
			t.Errorf("QuantizeBand(%.2f) = %.2f, want %.2f", c.in, got, c.want)
		}
	}
}

func TestMaxBand_PicksWholeCandidate(t *testing.T) {
	a := &FastResult{BandScore: 6.0, CriteriaScores: map[string]float64{CriterionLexical: 7.0}}
	b := &FastResult{BandScore: 6.5, CriteriaScores: map[string]float64{CriterionLexical: 6.0}}

	got := MaxBand([]*FastResult{a, b})
	if got.BandScore != 6.5 {
		t.Fatalf("band = %.1f, want 6.5", got.BandScore)
	}
	// The winner is taken wholesale, not merged per criterion.
	if got.CriteriaScores[CriterionLexical] != 6.0 {
		t.Errorf("criterion = %.1f, want winner's 6.0", got.CriteriaScores[CriterionLexical])
	}
}
