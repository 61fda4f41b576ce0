package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/skilldrill/gradecore/internal/llm"
)

// Snippet and note limits for detail post-processing. Lexical and grammar
// issues highlight short phrases in the UI; the shallow criteria carry at
// most two summary notes.
const (
	maxSnippetWords = 4
	maxShallowNotes = 2
)

// deepCriteria get full issue treatment; the rest are shallow.
var deepCriteria = map[string]bool{
	CriterionLexical: true,
	CriterionGrammar: true,
}

// DetailConfig configures the detail grading adapter.
type DetailConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultDetailConfig returns sensible defaults.
func DefaultDetailConfig() DetailConfig {
	return DetailConfig{
		MaxTokens:   4096,
		Temperature: 0.2,
	}
}

// DetailAdapter produces the authoritative, fully-annotated grade with a
// single provider call.
type DetailAdapter struct {
	provider llm.Provider
	cfg      DetailConfig
}

// NewDetailAdapter creates a detail grading adapter.
func NewDetailAdapter(provider llm.Provider, cfg DetailConfig) *DetailAdapter {
	return &DetailAdapter{provider: provider, cfg: cfg}
}

type detailPayload struct {
	BandScore float64                    `json:"band_score"`
	Criteria  map[string]CriterionDetail `json:"criteria"`
}

// Grade runs the detail pass. A response missing any required criterion is
// an error: the job attempt fails rather than publishing a partial result.
func (a *DetailAdapter) Grade(ctx context.Context, in EssayInput) (*DetailResult, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeDetailGrading)

	userMsg, err := buildUserMessage(in)
	if err != nil {
		return nil, err
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      detailSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      DetailSchema(in.Skill),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("detail grading call: %w", err)
	}

	var payload detailPayload
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	result := &DetailResult{
		BandScore: QuantizeBand(payload.BandScore),
		Criteria:  make(map[string]CriterionDetail, len(payload.Criteria)),
		Model:     resp.Model,
		GradedAt:  time.Now().UTC(),
	}

	for _, key := range CriteriaFor(in.Skill) {
		c, ok := payload.Criteria[key]
		if !ok {
			return nil, &llm.ErrInvalidResponse{
				Content: resp.Content,
				Err:     fmt.Errorf("detail result missing criterion %q", key),
			}
		}
		result.Criteria[key] = postProcessCriterion(key, c)
	}

	return result, nil
}

// postProcessCriterion applies the asymmetric depth policy: deep criteria
// keep their issue lists with snippets trimmed to short phrases; shallow
// criteria keep at most two notes and no issue enumeration.
func postProcessCriterion(key string, c CriterionDetail) CriterionDetail {
	out := CriterionDetail{Score: QuantizeBand(c.Score)}

	if deepCriteria[key] {
		out.Issues = make([]Issue, len(c.Issues))
		for i, issue := range c.Issues {
			issue.TextSnippet = trimSnippet(issue.TextSnippet)
			out.Issues[i] = issue
		}
		out.Notes = c.Notes
		return out
	}

	notes := c.Notes
	if len(notes) == 0 && len(c.Issues) > 0 {
		// Fold a verbose issue list into summary notes.
		for _, issue := range c.Issues {
			notes = append(notes, issue.Explanation)
		}
	}
	if len(notes) > maxShallowNotes {
		notes = notes[:maxShallowNotes]
	}
	out.Notes = notes
	return out
}

// trimSnippet cuts a snippet down to at most four words so UI highlighting
// stays on the problematic phrase, not the whole sentence.
func trimSnippet(s string) string {
	words := strings.Fields(s)
	if len(words) <= maxSnippetWords {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:maxSnippetWords], " ")
}
