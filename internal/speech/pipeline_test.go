package speech

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPipeline_ASRTranscript(t *testing.T) {
	mock := NewMockTranscriber(MockTranscription{
		Result: &Transcription{
			Transcript:  "I really enjoy learning new languages every single day.",
			RawMetadata: []byte(`{"duration": 4.5, "words": [{"confidence": 0.9}, {"confidence": 0.8}]}`),
		},
	})
	p := NewPipeline(mock, PipelineConfig{})

	res, err := p.Provisional(context.Background(), Input{Audio: []byte{1}, MimeType: "audio/wav"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil || res.Fast == nil {
		t.Fatal("expected a provisional result")
	}
	if res.Source != "asr" {
		t.Errorf("source = %q, want asr", res.Source)
	}
	if res.Features.ASRConfidence == nil {
		t.Error("word confidences present, expected a confidence value")
	}
	if res.Features.WPM == 0 {
		t.Error("duration present, expected WPM derived from it")
	}
}

func TestPipeline_FallsBackOnProviderError(t *testing.T) {
	mock := NewMockTranscriber(MockTranscription{Err: errors.New("asr down")})
	p := NewPipeline(mock, PipelineConfig{})

	res, err := p.Provisional(context.Background(), Input{
		Audio:              []byte{1},
		FallbackTranscript: "this is the fallback transcript for the attempt.",
	})
	if err != nil {
		t.Fatalf("provider failure must not surface: %v", err)
	}
	if res == nil || res.Fast == nil {
		t.Fatal("expected a provisional result from the fallback transcript")
	}
	if res.Source != "fallback" {
		t.Errorf("source = %q, want fallback", res.Source)
	}
}

func TestPipeline_TimeBoxesSlowProvider(t *testing.T) {
	mock := NewMockTranscriber(MockTranscription{Block: true})
	p := NewPipeline(mock, PipelineConfig{TranscribeTimeout: 20 * time.Millisecond})

	start := time.Now()
	res, err := p.Provisional(context.Background(), Input{
		Audio:              []byte{1},
		FallbackTranscript: "fallback after the timeout fired.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("pipeline did not time-box the transcription call")
	}
	if res == nil || res.Source != "fallback" {
		t.Fatalf("expected fallback result, got %+v", res)
	}
}

func TestPipeline_NoTranscriptAtAll(t *testing.T) {
	p := NewPipeline(nil, PipelineConfig{})

	res, err := p.Provisional(context.Background(), Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil {
		t.Fatalf("no transcript obtainable: want nil result, got %+v", res)
	}
}

func TestParseASRMetadata(t *testing.T) {
	meta := ParseASRMetadata([]byte(`{
		"duration": 12.5,
		"words": [{"confidence": 0.9}, {"confidence": 0.7}],
		"segments": [{"avg_logprob": -0.3}]
	}`))

	if meta.DurationSec != 12.5 {
		t.Errorf("duration = %.1f, want 12.5", meta.DurationSec)
	}
	conf, ok := meta.Confidence()
	if !ok {
		t.Fatal("expected confidence")
	}
	// Word confidences win over (exp of) segment log-probs.
	if conf != 0.8 {
		t.Errorf("confidence = %.2f, want word mean 0.80", conf)
	}
}

func TestParseASRMetadata_SegmentsOnly(t *testing.T) {
	meta := ParseASRMetadata([]byte(`{"segments": [{"avg_logprob": 0.0}]}`))

	conf, ok := meta.Confidence()
	if !ok {
		t.Fatal("expected confidence from segment log-probs")
	}
	if conf != 1.0 {
		t.Errorf("confidence = %.2f, want exp(0) = 1.0", conf)
	}
}

func TestParseASRMetadata_Empty(t *testing.T) {
	if meta := ParseASRMetadata(nil); meta != nil {
		t.Fatalf("nil payload: want nil metadata, got %+v", meta)
	}

	meta := ParseASRMetadata([]byte(`{}`))
	if _, ok := meta.Confidence(); ok {
		t.Error("no signals: Confidence must report false")
	}
}
