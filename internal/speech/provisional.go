package speech

import (
	"fmt"
	"time"

	"github.com/skilldrill/gradecore/internal/grading"
)

// BuildProvisionalAnalysis converts a feature set into a provisional
// speaking grade with per-criterion feedback notes. No external calls; the
// result is available the moment the transcript is.
func BuildProvisionalAnalysis(fs *FeatureSet) *grading.FastResult {
	bands := ScoreBands(fs)

	confNote := "ASR confidence: N/A"
	if fs.ASRConfidence != nil {
		confNote = fmt.Sprintf("ASR confidence: %.2f", *fs.ASRConfidence)
	}

	return &grading.FastResult{
		BandScore: bands.Overall,
		CriteriaScores: map[string]float64{
			grading.CriterionFluency:       bands.Fluency,
			grading.CriterionGrammar:       bands.Grammar,
			grading.CriterionLexical:       bands.Lexical,
			grading.CriterionPronunciation: bands.Pronunciation,
		},
		Notes: map[string]string{
			grading.CriterionFluency: fmt.Sprintf(
				"Speech rate %.0f wpm, %.1f pauses per 100 words (avg %.0f ms), %d filler words.",
				fs.WPM, fs.PausePer100Words, fs.AvgPauseMs, fs.FillerCount),
			grading.CriterionGrammar: fmt.Sprintf(
				"%d probable grammar slips across %d sentences.",
				fs.GrammarErrorCount, fs.SentenceCount),
			grading.CriterionLexical: fmt.Sprintf(
				"Vocabulary variety %.2f over %d words.",
				fs.LexicalDiversity, fs.WordCount),
			grading.CriterionPronunciation: confNote,
		},
		Model:    "heuristic",
		GradedAt: time.Now().UTC(),
	}
}
