package speech

import (
	"context"
	"time"

	"github.com/skilldrill/gradecore/internal/grading"
)

// PipelineConfig configures the provisional speech pipeline.
type PipelineConfig struct {
	// TranscribeTimeout time-boxes the transcription call. Default: 15s.
	TranscribeTimeout time.Duration

	Extractor ExtractorConfig
}

// DefaultPipelineConfig returns sensible defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{TranscribeTimeout: 15 * time.Second}
}

// Input is one speech attempt to score provisionally.
type Input struct {
	Audio    []byte
	MimeType string

	// FallbackTranscript is the caller-supplied transcript used when the
	// transcription provider fails, times out, or is not configured.
	FallbackTranscript string

	Pauses PauseMetrics

	// WPM is the caller-measured words per minute (0 when unknown).
	WPM float64

	// DurationSec is the recording length (0 when unknown).
	DurationSec float64
}

// Result is the pipeline's output. Fast is nil when no transcript could be
// obtained; that is a valid outcome, not an error.
type Result struct {
	Fast       *grading.FastResult
	Features   *FeatureSet
	Transcript string

	// Source is "asr" or "fallback".
	Source string
}

// Pipeline produces provisional speech grades. transcriber may be nil when
// no provider is configured; the pipeline then relies on fallback
// transcripts alone.
type Pipeline struct {
	transcriber Transcriber
	extractor   *Extractor
	cfg         PipelineConfig
}

// NewPipeline creates the provisional speech pipeline.
func NewPipeline(transcriber Transcriber, cfg PipelineConfig) *Pipeline {
	if cfg.TranscribeTimeout <= 0 {
		cfg.TranscribeTimeout = DefaultPipelineConfig().TranscribeTimeout
	}
	return &Pipeline{
		transcriber: transcriber,
		extractor:   NewExtractor(cfg.Extractor),
		cfg:         cfg,
	}
}

// Provisional runs transcription (time-boxed) and heuristic banding.
// Provider failures never surface to the caller: the fallback transcript
// is used when available, and (nil, nil) is returned when it isn't.
func (p *Pipeline) Provisional(ctx context.Context, in Input) (*Result, error) {
	transcript, meta, source := p.obtainTranscript(ctx, in)
	if transcript == "" {
		return nil, nil
	}

	fs := p.extractor.Extract(transcript, in.Pauses, in.WPM, in.DurationSec, meta)

	return &Result{
		Fast:       BuildProvisionalAnalysis(fs),
		Features:   fs,
		Transcript: transcript,
		Source:     source,
	}, nil
}

func (p *Pipeline) obtainTranscript(ctx context.Context, in Input) (string, *ASRMetadata, string) {
	if p.transcriber == nil || len(in.Audio) == 0 {
		return in.FallbackTranscript, nil, "fallback"
	}

	tctx, cancel := context.WithTimeout(ctx, p.cfg.TranscribeTimeout)
	defer cancel()

	tr, err := p.transcriber.Transcribe(tctx, in.Audio, in.MimeType)
	if err != nil || tr == nil || tr.Transcript == "" {
		return in.FallbackTranscript, nil, "fallback"
	}

	return tr.Transcript, ParseASRMetadata(tr.RawMetadata), "asr"
}
