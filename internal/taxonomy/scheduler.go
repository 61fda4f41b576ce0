package taxonomy

import (
	"context"
	"fmt"

	"github.com/skilldrill/gradecore/internal/queue"
)

// JobPayload is the enqueued classification job.
type JobPayload struct {
	SubmissionID string `json:"submission_id"`
	Skill        string `json:"skill"`
	QuestionType string `json:"question_type"`
	Force        bool   `json:"force"`
}

// Outcome reports what the scheduler did for one invocation. Enqueued and
// Inline are mutually exclusive.
type Outcome struct {
	Enqueued bool
	JobID    string

	// Inline is true when the queue was unavailable and classification
	// ran synchronously instead.
	Inline bool

	// Result is set only on the inline path.
	Result *Result
}

// Scheduler decides, after reconciliation, how taxonomy enrichment runs:
// through the queue when it is up, inline best-effort when it is not.
type Scheduler struct {
	queue  *queue.Keyed
	inline Classifier
}

// NewScheduler creates the enrichment scheduler. inline may be nil, in
// which case queue failure leaves the submission awaiting a later re-run.
func NewScheduler(q *queue.Keyed, inline Classifier) *Scheduler {
	return &Scheduler{queue: q, inline: inline}
}

// Schedule enqueues a classification job for the submission. force must be
// set whenever the visible score changed, so a previously completed
// classification is redone against the authoritative detail issues. When
// the queue is not ready or rejects the job, one synchronous inline
// attempt runs instead.
func (s *Scheduler) Schedule(ctx context.Context, req Request, force bool) (Outcome, error) {
	payload := JobPayload{
		SubmissionID: req.SubmissionID,
		Skill:        req.Skill,
		QuestionType: req.QuestionType,
		Force:        force,
	}

	if s.queue != nil && s.queue.IsReady() {
		receipt, err := s.queue.Enqueue(ctx, queue.JobTaxonomyEnrich, req.SubmissionID, payload, force)
		if err == nil {
			return Outcome{Enqueued: receipt.Queued, JobID: receipt.JobID}, nil
		}
		// Fall through to the inline path.
	}

	if s.inline == nil {
		return Outcome{}, fmt.Errorf("taxonomy queue unavailable and no inline classifier configured")
	}

	result, err := s.inline.Classify(ctx, req)
	if err != nil {
		return Outcome{Inline: true}, fmt.Errorf("inline taxonomy classification: %w", err)
	}
	return Outcome{Inline: true, Result: result}, nil
}
