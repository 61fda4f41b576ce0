package speech

import (
	"context"
	"sync"
)

// Transcription is the transcription collaborator's output: the transcript
// plus the provider's raw JSON metadata (duration, segments, words).
type Transcription struct {
	Transcript  string
	RawMetadata []byte
}

// Transcriber is the boundary to the external transcription service.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*Transcription, error)
}

// MockTranscriber is a deterministic Transcriber for tests. Responses are
// returned FIFO; calls are recorded.
type MockTranscriber struct {
	mu        sync.Mutex
	responses []MockTranscription
	Calls     int
}

// MockTranscription is one canned Transcribe outcome.
type MockTranscription struct {
	Result *Transcription
	Err    error
	// Delay, when set, blocks until the context is done to simulate a
	// slow provider.
	Block bool
}

// NewMockTranscriber creates a mock with canned responses.
func NewMockTranscriber(responses ...MockTranscription) *MockTranscriber {
	return &MockTranscriber{responses: responses}
}

func (m *MockTranscriber) Transcribe(ctx context.Context, _ []byte, _ string) (*Transcription, error) {
	m.mu.Lock()
	m.Calls++
	var resp MockTranscription
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	if resp.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Result == nil {
		return &Transcription{}, nil
	}
	return resp.Result, nil
}
