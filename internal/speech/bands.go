package speech

import "math"

// Sub-criterion weights inside the fluency composite.
const (
	speechRateWeight = 0.45
	pauseRateWeight  = 0.35
	fillerWeight     = 0.20
)

// Headline blend weights across the four sub-criteria.
const (
	fluencyBlendWeight       = 0.30
	grammarBlendWeight       = 0.25
	lexicalBlendWeight       = 0.25
	pronunciationBlendWeight = 0.20
)

// BandBreakdown holds the four sub-criterion bands and the headline band,
// each in [0,9] quantized to 0.5 steps.
type BandBreakdown struct {
	Fluency       float64
	Grammar       float64
	Lexical       float64
	Pronunciation float64
	Overall       float64

	// ConfidenceUsed reports whether the pronunciation band had an ASR
	// confidence signal or fell back to the fluency/lexical blend.
	ConfidenceUsed bool
}

// Quantize clamps to [0,9] and rounds to the nearest 0.5 band step.
func Quantize(x float64) float64 {
	return math.Round(clamp(x, 0, 9)*2) / 2
}

// ScoreBands maps a feature set to sub-criterion bands and a headline band.
// Pure and total: any feature set yields a usable band.
func ScoreBands(fs *FeatureSet) BandBreakdown {
	fluency := Quantize(speechRateWeight*speechRateBand(fs.WPM) +
		pauseRateWeight*pauseRateBand(fs.PausePer100Words) +
		fillerWeight*fillerBand(fs.FillerDensity))

	grammar := Quantize(grammarBand(fs.GrammarErrorRate))
	lexical := Quantize(lexicalBand(fs.LexicalDiversity))

	var pronunciation float64
	confidenceUsed := false
	if fs.ASRConfidence != nil {
		confScore := clamp(2+7*(*fs.ASRConfidence), 0, 9)
		pronunciation = Quantize(0.55*confScore + 0.25*fluency + 0.20*lexical)
		confidenceUsed = true
	} else {
		// Graceful degradation: no audio signal, lean on what the
		// transcript shows.
		pronunciation = Quantize(0.60*fluency + 0.40*lexical)
	}

	overall := Quantize(fluencyBlendWeight*fluency +
		grammarBlendWeight*grammar +
		lexicalBlendWeight*lexical +
		pronunciationBlendWeight*pronunciation)

	return BandBreakdown{
		Fluency:        fluency,
		Grammar:        grammar,
		Lexical:        lexical,
		Pronunciation:  pronunciation,
		Overall:        overall,
		ConfidenceUsed: confidenceUsed,
	}
}

// speechRateBand peaks in a mid-range window; too slow and too fast are
// both penalized.
func speechRateBand(wpm float64) float64 {
	switch {
	case wpm <= 0:
		return 4.0
	case wpm < 60:
		return 3.5
	case wpm < 90:
		return 5.0
	case wpm < 110:
		return 6.0
	case wpm <= 170:
		return 7.5
	case wpm <= 190:
		return 6.5
	case wpm <= 220:
		return 5.5
	default:
		return 4.5
	}
}

// pauseRateBand decreases monotonically with pauses per 100 words.
func pauseRateBand(per100 float64) float64 {
	switch {
	case per100 <= 2:
		return 8.5
	case per100 <= 5:
		return 7.5
	case per100 <= 9:
		return 6.5
	case per100 <= 14:
		return 5.5
	case per100 <= 20:
		return 4.5
	default:
		return 3.5
	}
}

// fillerBand decreases monotonically with filler density.
func fillerBand(density float64) float64 {
	switch {
	case density <= 0.01:
		return 8.5
	case density <= 0.03:
		return 7.5
	case density <= 0.06:
		return 6.5
	case density <= 0.10:
		return 5.0
	case density <= 0.15:
		return 4.0
	default:
		return 3.0
	}
}

// grammarBand decreases monotonically with proxy errors per sentence.
func grammarBand(errorRate float64) float64 {
	switch {
	case errorRate <= 0.05:
		return 8.0
	case errorRate <= 0.15:
		return 7.0
	case errorRate <= 0.30:
		return 6.0
	case errorRate <= 0.50:
		return 5.0
	case errorRate <= 0.80:
		return 4.0
	default:
		return 3.0
	}
}

// lexicalBand increases with normalized type-token diversity.
func lexicalBand(diversity float64) float64 {
	switch {
	case diversity >= 0.85:
		return 8.0
	case diversity >= 0.70:
		return 7.0
	case diversity >= 0.55:
		return 6.5
	case diversity >= 0.45:
		return 6.0
	case diversity >= 0.35:
		return 5.0
	case diversity >= 0.25:
		return 4.0
	default:
		return 3.0
	}
}
