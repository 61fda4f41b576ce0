package speech

import (
	"math"
	"strings"
	"testing"
)

func TestExtract_BasicMetrics(t *testing.T) {
	e := NewExtractor(ExtractorConfig{})
	transcript := "Well I think that the city should actually invest more in public transport because you know it helps."

	fs := e.Extract(transcript, PauseMetrics{PauseCount: 6, TotalPauseMs: 4200}, 132, 0, nil)

	if fs.WordCount != 18 {
		t.Errorf("word count = %d, want 18", fs.WordCount)
	}
	if fs.WPM != 132 {
		t.Errorf("wpm = %.1f, want caller-supplied 132", fs.WPM)
	}
	if fs.AvgPauseMs != 700 {
		t.Errorf("avg pause = %.1f ms, want 4200/6 = 700", fs.AvgPauseMs)
	}
	if want := 6.0 / 18.0 * 100; math.Abs(fs.PausePer100Words-want) > 1e-9 {
		t.Errorf("pauses per 100 words = %.2f, want %.2f", fs.PausePer100Words, want)
	}
	if fs.FillerCount != 2 {
		t.Errorf("filler count = %d, want 2 (actually, you know)", fs.FillerCount)
	}
	if fs.ASRConfidence != nil {
		t.Error("no metadata given, confidence must be nil")
	}
}

func TestExtract_WPMFromDuration(t *testing.T) {
	e := NewExtractor(ExtractorConfig{})
	fs := e.Extract("one two three four five six.", PauseMetrics{}, 0, 3, nil)

	if fs.WordCount != 6 {
		t.Fatalf("word count = %d, want 6", fs.WordCount)
	}
	if fs.WPM != 120 {
		t.Errorf("wpm = %.1f, want 6 words / 3s = 120", fs.WPM)
	}
}

func TestExtract_GrammarProxyErrors(t *testing.T) {
	e := NewExtractor(ExtractorConfig{})
	fs := e.Extract("He are happy. I is going to the the market.", PauseMetrics{}, 0, 0, nil)

	// "he are" + "i is" mismatches, plus one immediate repeat ("the the").
	if fs.GrammarErrorCount != 3 {
		t.Errorf("grammar proxy errors = %d, want 3", fs.GrammarErrorCount)
	}
	if fs.SentenceCount != 2 {
		t.Errorf("sentences = %d, want 2", fs.SentenceCount)
	}
	if fs.GrammarErrorRate != 1.5 {
		t.Errorf("error rate = %.2f, want 1.5", fs.GrammarErrorRate)
	}
}

func TestExtract_NoVerbPenalty(t *testing.T) {
	e := NewExtractor(ExtractorConfig{})

	// Six-plus words, nothing verb-like.
	fs := e.Extract("the red car near the old bridge.", PauseMetrics{}, 0, 0, nil)
	if fs.GrammarErrorCount != 1 {
		t.Errorf("errors = %d, want 1 (verbless long sentence)", fs.GrammarErrorCount)
	}

	// Short fragments are left alone.
	fs = e.Extract("the red car.", PauseMetrics{}, 0, 0, nil)
	if fs.GrammarErrorCount != 0 {
		t.Errorf("errors = %d, want 0 for a short fragment", fs.GrammarErrorCount)
	}
}

func TestExtract_EmptyTranscript(t *testing.T) {
	e := NewExtractor(ExtractorConfig{})
	fs := e.Extract("", PauseMetrics{}, 0, 0, nil)

	if fs.WordCount != 0 {
		t.Errorf("word count = %d, want 0", fs.WordCount)
	}
	if fs.SentenceCount != 1 {
		t.Errorf("sentence count = %d, want floor of 1", fs.SentenceCount)
	}
	if fs.LexicalDiversity != 0 {
		t.Errorf("diversity = %.2f, want 0", fs.LexicalDiversity)
	}
}

func TestLexicalDiversity_Bounds(t *testing.T) {
	// Maximally repetitive: diversity near the bottom.
	low := lexicalDiversity(strings.Fields(strings.Repeat("word ", 60)))
	// Sixty distinct tokens: diversity at the top.
	uniq := make([]string, 60)
	for i := range uniq {
		uniq[i] = strings.Repeat("a", i+1)
	}
	high := lexicalDiversity(uniq)

	if low < 0 || low > 1 || high < 0 || high > 1 {
		t.Fatalf("diversity out of [0,1]: low=%.3f high=%.3f", low, high)
	}
	if low >= high {
		t.Errorf("repetitive (%.3f) should score below varied (%.3f)", low, high)
	}
	if high != 1 {
		t.Errorf("all-unique long sample = %.3f, want clamped 1", high)
	}
}

func TestExtract_CustomFillerWords(t *testing.T) {
	e := NewExtractor(ExtractorConfig{FillerWords: []string{"so", "well"}})
	fs := e.Extract("So well I um think so.", PauseMetrics{}, 0, 0, nil)

	// "um" is not in the custom list; "so" twice plus "well" once.
	if fs.FillerCount != 3 {
		t.Errorf("filler count = %d, want 3", fs.FillerCount)
	}
}

func TestTokenize_StripsPunctuation(t *testing.T) {
	got := tokenize("it's fine, really! (yes)")
	want := []string{"it's", "fine", "really", "yes"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
