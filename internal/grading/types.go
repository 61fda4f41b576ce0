package grading

import (
	"math"
	"time"
)

// Skill selects the criterion set for a submission.
type Skill string

const (
	SkillWriting  Skill = "writing"
	SkillSpeaking Skill = "speaking"
)

// Criterion keys. Writing and speaking share lexical resource; the other
// three differ by modality.
const (
	CriterionTaskResponse  = "task_response"
	CriterionCoherence     = "coherence_cohesion"
	CriterionLexical       = "lexical_resource"
	CriterionGrammar       = "grammatical_range_accuracy"
	CriterionFluency       = "fluency_coherence"
	CriterionPronunciation = "pronunciation"
)

// WritingCriteria is the fixed criterion set for essay grading.
var WritingCriteria = []string{
	CriterionTaskResponse,
	CriterionCoherence,
	CriterionLexical,
	CriterionGrammar,
}

// SpeakingCriteria is the fixed criterion set for speech grading.
var SpeakingCriteria = []string{
	CriterionFluency,
	CriterionGrammar,
	CriterionLexical,
	CriterionPronunciation,
}

// CriteriaFor returns the criterion set for a skill.
func CriteriaFor(skill Skill) []string {
	if skill == SkillSpeaking {
		return SpeakingCriteria
	}
	return WritingCriteria
}

// FastResult is the provisional grade. It carries compact per-criterion
// notes only, never issue lists or generated sample answers.
type FastResult struct {
	BandScore      float64            `json:"band_score"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	Notes          map[string]string  `json:"notes,omitempty"`

	// AdjustedByDetail is set when reconciliation overwrote the headline
	// this result displays to match a lower detail band.
	AdjustedByDetail bool `json:"adjusted_by_detail,omitempty"`

	Model    string    `json:"model,omitempty"`
	GradedAt time.Time `json:"graded_at,omitzero"`
}

// Issue is one annotated problem found by the detail pass.
type Issue struct {
	TextSnippet string `json:"text_snippet"`
	Explanation string `json:"explanation"`
	Improved    string `json:"improved,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`
}

// CriterionDetail is the detail pass's verdict for one criterion.
type CriterionDetail struct {
	Score  float64  `json:"score"`
	Issues []Issue  `json:"issues,omitempty"`
	Notes  []string `json:"notes,omitempty"`
}

// DetailResult is the authoritative, fully-annotated grade.
type DetailResult struct {
	BandScore float64                    `json:"band_score"`
	Criteria  map[string]CriterionDetail `json:"criteria"`
	Model     string                     `json:"model,omitempty"`
	GradedAt  time.Time                  `json:"graded_at,omitzero"`
}

// CriteriaScores projects the per-criterion scores from the detail result.
func (d *DetailResult) CriteriaScores() map[string]float64 {
	out := make(map[string]float64, len(d.Criteria))
	for k, c := range d.Criteria {
		out[k] = c.Score
	}
	return out
}

// Issues flattens all criterion issue lists, tagging each with its
// criterion key, for downstream taxonomy classification.
func (d *DetailResult) Issues() []Issue {
	var out []Issue
	for _, key := range []string{CriterionLexical, CriterionGrammar, CriterionTaskResponse, CriterionCoherence, CriterionFluency, CriterionPronunciation} {
		c, ok := d.Criteria[key]
		if !ok {
			continue
		}
		out = append(out, c.Issues...)
	}
	return out
}

// QuantizeBand clamps to [0,9] and rounds to the nearest half band.
func QuantizeBand(x float64) float64 {
	if x < 0 {
		x = 0
	}
	if x > 9 {
		x = 9
	}
	return math.Round(x*2) / 2
}
