package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/skilldrill/gradecore/internal/llm"
)

// maxFastNoteLen caps each fast-mode criterion note. Fast output is
// compact by contract.
const maxFastNoteLen = 280

// FastConfig configures the fast grading adapter.
type FastConfig struct {
	// Passes is the number of independent grading calls to race. Default 2.
	Passes int

	MaxTokens   int
	Temperature float64
}

// DefaultFastConfig returns sensible defaults.
func DefaultFastConfig() FastConfig {
	return FastConfig{
		Passes:      2,
		MaxTokens:   1024,
		Temperature: 0.3,
	}
}

// FastAdapter produces provisional grades for written submissions by
// racing independent passes and reducing them with a monotonic combinator.
type FastAdapter struct {
	provider llm.Provider
	combine  Combinator
	cfg      FastConfig
}

// NewFastAdapter creates a fast grading adapter. combine defaults to
// MaxBand when nil.
func NewFastAdapter(provider llm.Provider, combine Combinator, cfg FastConfig) *FastAdapter {
	if cfg.Passes <= 0 {
		cfg.Passes = DefaultFastConfig().Passes
	}
	if combine == nil {
		combine = MaxBand
	}
	return &FastAdapter{provider: provider, combine: combine, cfg: cfg}
}

// fastPayload is the provider response shape. Only these fields are copied
// into the FastResult; anything else the model emits is dropped.
type fastPayload struct {
	BandScore      float64            `json:"band_score"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	Notes          map[string]string  `json:"notes"`
}

// Grade runs the configured number of passes concurrently and merges the
// survivors. A single failed pass is tolerated; when every pass fails the
// adapter returns an error and the caller keeps the submission in its
// processing state rather than publishing a partial result.
func (a *FastAdapter) Grade(ctx context.Context, in EssayInput) (*FastResult, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeFastGrading)

	userMsg, err := buildUserMessage(in)
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		System:      fastSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      FastSchema(in.Skill),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}

	results := make([]*FastResult, a.cfg.Passes)
	errs := make([]error, a.cfg.Passes)

	var wg sync.WaitGroup
	for i := range a.cfg.Passes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = a.gradeOnce(ctx, req, in.Skill)
		}()
	}
	wg.Wait()

	candidates := make([]*FastResult, 0, a.cfg.Passes)
	for _, r := range results {
		if r != nil {
			candidates = append(candidates, r)
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("all %d fast grading passes failed: %w", a.cfg.Passes, errors.Join(errs...))
	}

	return a.combine(candidates), nil
}

func (a *FastAdapter) gradeOnce(ctx context.Context, req llm.Request, skill Skill) (*FastResult, error) {
	resp, err := a.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var payload fastPayload
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	return sanitizeFast(payload, skill, resp.Model), nil
}

// sanitizeFast builds a FastResult from the payload, quantizing bands,
// restricting criteria to the known set and trimming notes. Fields outside
// the payload shape (sample answers, issue lists) never survive this step.
func sanitizeFast(p fastPayload, skill Skill, model string) *FastResult {
	criteria := make(map[string]float64, len(p.CriteriaScores))
	for _, key := range CriteriaFor(skill) {
		if v, ok := p.CriteriaScores[key]; ok {
			criteria[key] = QuantizeBand(v)
		}
	}

	var notes map[string]string
	if len(p.Notes) > 0 {
		notes = make(map[string]string, len(p.Notes))
		for _, key := range CriteriaFor(skill) {
			n, ok := p.Notes[key]
			if !ok || n == "" {
				continue
			}
			notes[key] = truncateNote(n, maxFastNoteLen)
		}
	}

	return &FastResult{
		BandScore:      QuantizeBand(p.BandScore),
		CriteriaScores: criteria,
		Notes:          notes,
		Model:          model,
		GradedAt:       time.Now().UTC(),
	}
}

// truncateNote cuts s to at most max bytes without splitting a rune.
func truncateNote(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
