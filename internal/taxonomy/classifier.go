package taxonomy

import (
	"context"

	"github.com/skilldrill/gradecore/internal/grading"
)

// Request is one classification job: the detail pass's issues for a
// submission, keyed by skill domain and question type.
type Request struct {
	SubmissionID string
	Skill        string
	QuestionType string
	Issues       []grading.Issue
}

// CodeCount is one normalized error code and how often it occurred.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Result is the classification outcome for a submission.
type Result struct {
	SubmissionID string      `json:"submission_id"`
	Codes        []CodeCount `json:"codes"`
}

// Classifier is the classification-service boundary. The production
// implementation lives behind the job queue; InlineClassifier is the
// in-process fallback.
type Classifier interface {
	Classify(ctx context.Context, req Request) (*Result, error)
}

// InlineClassifier normalizes issue error codes against the registry. It
// is deterministic and cheap, the best-effort path when the queue is
// unavailable.
type InlineClassifier struct {
	registry Registry
}

// NewInlineClassifier creates the fallback classifier.
func NewInlineClassifier(reg Registry) *InlineClassifier {
	return &InlineClassifier{registry: reg}
}

// Classify counts issues per normalized code.
func (c *InlineClassifier) Classify(_ context.Context, req Request) (*Result, error) {
	counts := make(map[string]int)
	order := make([]string, 0, len(req.Issues))

	for _, issue := range req.Issues {
		code := Normalize(c.registry, issue.ErrorCode)
		if counts[code] == 0 {
			order = append(order, code)
		}
		counts[code]++
	}

	result := &Result{SubmissionID: req.SubmissionID}
	for _, code := range order {
		result.Codes = append(result.Codes, CodeCount{Code: code, Count: counts[code]})
	}
	return result, nil
}
