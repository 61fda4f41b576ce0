package speech

import (
	"math"

	"github.com/tidwall/gjson"
)

// ASRMetadata carries the transcription provider's self-reported signals,
// used as a proxy for pronunciation and audio quality.
type ASRMetadata struct {
	DurationSec     float64
	WordConfidences []float64
	SegmentLogProbs []float64
}

// ParseASRMetadata extracts duration, per-word confidence values and
// per-segment avg_logprob from the provider's raw JSON metadata. Providers
// disagree on payload shape, so this tolerates missing fields; absent
// fields simply leave the corresponding slice empty.
func ParseASRMetadata(raw []byte) *ASRMetadata {
	if len(raw) == 0 {
		return nil
	}

	meta := &ASRMetadata{
		DurationSec: gjson.GetBytes(raw, "duration").Float(),
	}

	for _, w := range gjson.GetBytes(raw, "words").Array() {
		if c := w.Get("confidence"); c.Exists() {
			meta.WordConfidences = append(meta.WordConfidences, c.Float())
		}
	}

	for _, s := range gjson.GetBytes(raw, "segments").Array() {
		if lp := s.Get("avg_logprob"); lp.Exists() {
			meta.SegmentLogProbs = append(meta.SegmentLogProbs, lp.Float())
		}
	}

	return meta
}

// Confidence derives a single 0–1 confidence. Per-word confidence means
// are preferred; otherwise exp of the mean segment log-probability is
// used. Returns false when neither signal exists.
func (m *ASRMetadata) Confidence() (float64, bool) {
	if m == nil {
		return 0, false
	}

	if len(m.WordConfidences) > 0 {
		return clamp(mean(m.WordConfidences), 0, 1), true
	}

	if len(m.SegmentLogProbs) > 0 {
		return clamp(math.Exp(mean(m.SegmentLogProbs)), 0, 1), true
	}

	return 0, false
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
