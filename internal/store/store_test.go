package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilldrill/gradecore/internal/grading"
	"github.com/skilldrill/gradecore/internal/llm"
	"github.com/skilldrill/gradecore/internal/submission"
	"github.com/skilldrill/gradecore/internal/taxonomy"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSubmission() *submission.Submission {
	now := time.Now().UTC().Truncate(time.Second)
	return &submission.Submission{
		ID:            "sub-1",
		Skill:         grading.SkillWriting,
		QuestionType:  "essay",
		Answers:       []submission.Answer{{TaskID: "t1", Text: "An essay about cities."}},
		Status:        submission.StatusProcessing,
		ScoringState:  submission.ScoringFastReady,
		TaxonomyState: submission.TaxonomyIdle,
		FastResult: &grading.FastResult{
			BandScore:      6.5,
			CriteriaScores: map[string]float64{grading.CriterionGrammar: 6.5},
			Model:          "mock",
		},
		Score:       6.5,
		ContentHash: grading.ContentHash("An essay about cities."),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestSubmissionRepo_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.Submissions()
	ctx := context.Background()

	want := sampleSubmission()
	require.NoError(t, repo.Put(ctx, want))

	got, err := repo.Get(ctx, "sub-1")
	require.NoError(t, err)

	assert.Equal(t, want.Skill, got.Skill)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.ScoringState, got.ScoringState)
	assert.Equal(t, 6.5, got.Score)
	require.NotNil(t, got.FastResult)
	assert.Equal(t, 6.5, got.FastResult.BandScore)
	assert.Equal(t, 6.5, got.FastResult.CriteriaScores[grading.CriterionGrammar])
	assert.Nil(t, got.DetailResult)
	require.Len(t, got.Answers, 1)
	assert.Equal(t, want.Answers[0].Text, got.Answers[0].Text)
}

func TestSubmissionRepo_UpsertLastWriteWins(t *testing.T) {
	s := openTestStore(t)
	repo := s.Submissions()
	ctx := context.Background()

	sub := sampleSubmission()
	require.NoError(t, repo.Put(ctx, sub))

	sub.Status = submission.StatusScored
	sub.ScoringState = submission.ScoringDetailReady
	sub.Score = 5.5
	sub.DetailResult = &grading.DetailResult{
		BandScore: 5.5,
		Criteria:  map[string]grading.CriterionDetail{grading.CriterionGrammar: {Score: 5.5}},
	}
	sub.TaxonomyCodes = []taxonomy.CodeCount{{Code: "spelling", Count: 3}}
	require.NoError(t, repo.Put(ctx, sub))

	got, err := repo.Get(ctx, "sub-1")
	require.NoError(t, err)

	assert.Equal(t, 5.5, got.Score)
	assert.Equal(t, submission.ScoringDetailReady, got.ScoringState)
	require.NotNil(t, got.DetailResult)
	assert.Equal(t, 5.5, got.DetailResult.Criteria[grading.CriterionGrammar].Score)
	require.Len(t, got.TaxonomyCodes, 1)
	assert.Equal(t, 3, got.TaxonomyCodes[0].Count)
}

func TestSubmissionRepo_GetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Submissions().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionRepo_ListByScoringState(t *testing.T) {
	s := openTestStore(t)
	repo := s.Submissions()
	ctx := context.Background()

	a := sampleSubmission()
	a.ID = "sub-a"
	a.ScoringState = submission.ScoringDetailProcessing
	b := sampleSubmission()
	b.ID = "sub-b"

	require.NoError(t, repo.Put(ctx, a))
	require.NoError(t, repo.Put(ctx, b))

	ids, err := repo.ListByScoringState(ctx, submission.ScoringDetailProcessing, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-a"}, ids)
}

func TestEventLog_RecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	log := s.Events()
	ctx := context.Background()

	events := []llm.RequestEvent{
		{Provider: "mock", Model: "mock", Purpose: "fast-grading", InputTokens: 100, OutputTokens: 40, LatencyMs: 250, Success: true},
		{Provider: "mock", Model: "mock", Purpose: "detail-grading", Success: false, ErrorMessage: "timeout"},
	}
	for _, ev := range events {
		require.NoError(t, log.RecordLLMRequest(ctx, ev))
	}

	got, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, "detail-grading", got[0].Purpose)
	assert.False(t, got[0].Success)
	assert.Equal(t, 100, got[1].InputTokens)
}
