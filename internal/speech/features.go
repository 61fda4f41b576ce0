package speech

import (
	"math"
	"regexp"
	"strings"
)

// DefaultFillerWords are the filler tokens counted toward filler density.
var DefaultFillerWords = []string{"um", "uh", "like", "you know", "actually", "basically"}

// ExtractorConfig configures feature extraction.
type ExtractorConfig struct {
	// FillerWords overrides DefaultFillerWords when non-empty. Entries may
	// be multi-word phrases; matching is whole-word and case-insensitive.
	FillerWords []string
}

// PauseMetrics carries caller-measured pause data for a recording.
type PauseMetrics struct {
	PauseCount   int
	TotalPauseMs float64
	// AvgPauseMs is used only when PauseCount is zero but the caller
	// measured an average some other way.
	AvgPauseMs float64
}

// FeatureSet is the fixed set of numeric features derived from one
// transcript. It is computed once per attempt and never mutated after;
// the band scorer is its only consumer.
type FeatureSet struct {
	WordCount     int     `json:"word_count"`
	SentenceCount int     `json:"sentence_count"`
	WPM           float64 `json:"wpm"`

	PauseCount       int     `json:"pause_count"`
	TotalPauseMs     float64 `json:"total_pause_ms"`
	AvgPauseMs       float64 `json:"avg_pause_ms"`
	PausePer100Words float64 `json:"pause_per_100_words"`

	FillerCount   int     `json:"filler_count"`
	FillerDensity float64 `json:"filler_density"`

	GrammarErrorCount int     `json:"grammar_proxy_error_count"`
	GrammarErrorRate  float64 `json:"grammar_proxy_error_rate"`

	LexicalDiversity float64 `json:"lexical_diversity"`

	// ASRConfidence is nil when the transcription carried no usable signal.
	ASRConfidence *float64 `json:"asr_confidence"`
}

// Extractor derives a FeatureSet from a transcript plus timing metrics.
type Extractor struct {
	fillerRe *regexp.Regexp
}

// NewExtractor builds an extractor from config.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	words := cfg.FillerWords
	if len(words) == 0 {
		words = DefaultFillerWords
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	re := regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	return &Extractor{fillerRe: re}
}

// Extract computes the feature set. wpm is the caller-supplied
// words-per-minute (0 when unknown); durationSec is the recording duration
// from transcription metadata (0 when unknown); meta carries the
// transcription provider's confidence signals (nil when unavailable).
func (e *Extractor) Extract(transcript string, pauses PauseMetrics, wpm float64, durationSec float64, meta *ASRMetadata) *FeatureSet {
	lowered := strings.ToLower(transcript)
	tokens := tokenize(lowered)
	sentences := splitSentences(transcript)

	fs := &FeatureSet{
		WordCount:     len(tokens),
		SentenceCount: len(sentences),
		PauseCount:    pauses.PauseCount,
		TotalPauseMs:  pauses.TotalPauseMs,
	}
	if fs.SentenceCount < 1 {
		fs.SentenceCount = 1
	}

	if meta != nil && durationSec == 0 {
		durationSec = meta.DurationSec
	}

	switch {
	case wpm > 0:
		fs.WPM = wpm
	case durationSec > 0 && fs.WordCount > 0:
		fs.WPM = float64(fs.WordCount) / durationSec * 60
	}

	switch {
	case pauses.PauseCount > 0:
		fs.AvgPauseMs = pauses.TotalPauseMs / float64(pauses.PauseCount)
	case pauses.AvgPauseMs > 0:
		fs.AvgPauseMs = pauses.AvgPauseMs
	}

	if fs.WordCount > 0 {
		fs.PausePer100Words = float64(fs.PauseCount) / float64(fs.WordCount) * 100
		fs.FillerCount = len(e.fillerRe.FindAllString(lowered, -1))
		fs.FillerDensity = float64(fs.FillerCount) / float64(fs.WordCount)
	}

	fs.LexicalDiversity = lexicalDiversity(tokens)

	fs.GrammarErrorCount = countGrammarProxyErrors(lowered, sentences)
	fs.GrammarErrorRate = float64(fs.GrammarErrorCount) / float64(fs.SentenceCount)

	if meta != nil {
		if conf, ok := meta.Confidence(); ok {
			fs.ASRConfidence = &conf
		}
	}

	return fs
}

var nonWordRe = regexp.MustCompile(`[^a-z0-9']+`)

// tokenize lower-cases, strips non-alphanumeric/apostrophe characters and
// splits on whitespace. Input must already be lower-cased.
func tokenize(lowered string) []string {
	fields := strings.Fields(lowered)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		t := nonWordRe.ReplaceAllString(f, "")
		t = strings.Trim(t, "'")
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// splitSentences splits on terminal punctuation runs, trimming empties.
func splitSentences(transcript string) []string {
	parts := sentenceSplitRe.Split(transcript, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// lexicalDiversity is the type-token ratio with a length-normalization
// boost of clamp(sqrt(max(n,1)/30), 0.6, 1.25), clamped to [0,1]. Raw TTR
// inflates short transcripts; the boost compensates.
func lexicalDiversity(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	ttr := float64(len(unique)) / float64(len(tokens))

	boost := math.Sqrt(float64(max(len(tokens), 1)) / 30)
	boost = clamp(boost, 0.6, 1.25)

	return clamp(ttr*boost, 0, 1)
}

// Fixed subject-verb mismatch patterns. A proxy counter, not a parser.
var mismatchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bi (is|are|were)\b`),
	regexp.MustCompile(`\bhe (are|were|am)\b`),
	regexp.MustCompile(`\bshe (are|were|am)\b`),
	regexp.MustCompile(`\bit (are|were|am)\b`),
	regexp.MustCompile(`\bwe (is|was|am)\b`),
	regexp.MustCompile(`\bthey (is|was|am)\b`),
	regexp.MustCompile(`\bdoesn't \w+ed\b`),
	regexp.MustCompile(`\bdidn't \w+ed\b`),
}

// verbHints is the closed list used to decide whether a long sentence
// contains anything verb-like.
var verbHints = map[string]struct{}{
	"is": {}, "are": {}, "was": {}, "were": {}, "am": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"can": {}, "could": {}, "will": {}, "would": {}, "should": {}, "must": {}, "may": {}, "might": {},
	"go": {}, "went": {}, "get": {}, "got": {}, "make": {}, "made": {}, "take": {}, "took": {},
	"think": {}, "know": {}, "want": {}, "like": {}, "need": {}, "say": {}, "said": {},
	"see": {}, "saw": {}, "come": {}, "came": {}, "feel": {}, "felt": {}, "live": {}, "work": {},
}

// countGrammarProxyErrors sums mismatch pattern hits, immediately-repeated
// words, and one penalty per six-plus-word sentence with no verb hint.
func countGrammarProxyErrors(lowered string, sentences []string) int {
	count := 0

	for _, re := range mismatchPatterns {
		count += len(re.FindAllString(lowered, -1))
	}

	count += countImmediateRepeats(tokenize(lowered))

	for _, sentence := range sentences {
		tokens := tokenize(strings.ToLower(sentence))
		if len(tokens) < 6 {
			continue
		}
		hasVerb := false
		for _, t := range tokens {
			if _, ok := verbHints[t]; ok {
				hasVerb = true
				break
			}
		}
		if !hasVerb {
			count++
		}
	}

	return count
}

// countImmediateRepeats counts tokens identical to their predecessor.
func countImmediateRepeats(tokens []string) int {
	count := 0
	for i := 1; i < len(tokens); i++ {
		if tokens[i] == tokens[i-1] {
			count++
		}
	}
	return count
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
