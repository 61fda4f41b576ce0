package submission

import (
	"time"

	"github.com/skilldrill/gradecore/internal/grading"
	"github.com/skilldrill/gradecore/internal/taxonomy"
)

// Status is the submission's top-level lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusScored     Status = "scored"
	StatusFailed     Status = "failed"
)

// ScoringState tracks progress through the fast/detail grading stages.
type ScoringState string

const (
	ScoringIdle             ScoringState = "idle"
	ScoringFastReady        ScoringState = "fast_ready"
	ScoringDetailProcessing ScoringState = "detail_processing"
	ScoringDetailReady      ScoringState = "detail_ready"
)

// TaxonomyState tracks the asynchronous classification stage.
type TaxonomyState string

const (
	TaxonomyIdle       TaxonomyState = "idle"
	TaxonomyProcessing TaxonomyState = "processing"
	TaxonomyReady      TaxonomyState = "ready"
)

// Answer is one task response inside a submission.
type Answer struct {
	TaskID      string  `json:"task_id"`
	Text        string  `json:"text,omitempty"`
	AudioRef    string  `json:"audio_ref,omitempty"`
	WordCount   int     `json:"word_count,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
}

// Submission is one writing or speaking attempt moving through the
// grading pipeline. It is created at submit time and mutated only by the
// pipeline stages; deletion is an external administrative operation.
type Submission struct {
	ID           string        `json:"id"`
	Skill        grading.Skill `json:"skill"`
	QuestionType string        `json:"question_type,omitempty"`
	Answers      []Answer      `json:"answers,omitempty"`

	Status        Status        `json:"status"`
	ScoringState  ScoringState  `json:"scoring_state"`
	TaxonomyState TaxonomyState `json:"taxonomy_state"`

	// FastResult is the provisional grade; never erased by later failures.
	FastResult *grading.FastResult `json:"ai_fast_result,omitempty"`

	// DetailResult is the authoritative grade once the detail pass ran.
	DetailResult *grading.DetailResult `json:"ai_result,omitempty"`

	// Score is the single visible headline band, always ceiling-reconciled:
	// once a fast result exists it never exceeds the fast band.
	Score float64 `json:"score"`

	// ContentHash identifies the graded content for re-submission dedupe.
	ContentHash string `json:"content_hash,omitempty"`

	TaxonomyCodes []taxonomy.CodeCount `json:"taxonomy_codes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrimaryText returns the text being graded: the essay for writing, the
// transcript for speech.
func (s *Submission) PrimaryText() string {
	if len(s.Answers) == 0 {
		return ""
	}
	return s.Answers[0].Text
}
