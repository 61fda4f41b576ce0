package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/skilldrill/gradecore/internal/grading"
	"github.com/skilldrill/gradecore/internal/queue"
	"github.com/skilldrill/gradecore/internal/speech"
	"github.com/skilldrill/gradecore/internal/taxonomy"
)

// Repo is the document-store boundary: submissions read and written by
// id, last write wins.
type Repo interface {
	Get(ctx context.Context, id string) (*Submission, error)
	Put(ctx context.Context, sub *Submission) error
}

// FastGrader is the fast writing-grader boundary.
type FastGrader interface {
	Grade(ctx context.Context, in grading.EssayInput) (*grading.FastResult, error)
}

// DetailGrader is the detail writing-grader boundary.
type DetailGrader interface {
	Grade(ctx context.Context, in grading.EssayInput) (*grading.DetailResult, error)
}

// Config configures the pipeline service.
type Config struct {
	// FastTimeout bounds the synchronous fast pass on the submit path.
	// Default: 20s.
	FastTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{FastTimeout: 20 * time.Second}
}

// DetailJobPayload is the enqueued detail-grading job.
type DetailJobPayload struct {
	SubmissionID string `json:"submission_id"`
	Force        bool   `json:"force"`
}

// Service coordinates the grading pipeline: synchronous fast scoring on
// submit, asynchronous detail grading and taxonomy enrichment behind the
// queue, reconciliation in between.
type Service struct {
	repo       Repo
	fast       FastGrader // nil when no provider is configured
	detail     DetailGrader
	speech     *speech.Pipeline // nil when speech is not configured
	jobs       *queue.Keyed
	taxonomy   *taxonomy.Scheduler
	classifier taxonomy.Classifier
	cache      *grading.FastCache
	cfg        Config
}

// NewService wires the pipeline. fast and speech may be nil; the pipeline
// then degrades to detail-only grading for the respective modality.
func NewService(repo Repo, fast FastGrader, detail DetailGrader, sp *speech.Pipeline,
	jobs *queue.Keyed, sched *taxonomy.Scheduler, classifier taxonomy.Classifier, cfg Config) *Service {

	if cfg.FastTimeout <= 0 {
		cfg.FastTimeout = DefaultConfig().FastTimeout
	}
	return &Service{
		repo:       repo,
		fast:       fast,
		detail:     detail,
		speech:     sp,
		jobs:       jobs,
		taxonomy:   sched,
		classifier: classifier,
		cache:      grading.NewFastCache(),
		cfg:        cfg,
	}
}

// SubmitWriting runs the fast pass synchronously and returns as soon as a
// provisional result (or a degraded processing state) is persisted. Detail
// grading is enqueued, never awaited.
func (s *Service) SubmitWriting(ctx context.Context, sub *Submission, in grading.EssayInput, force bool) (*Submission, error) {
	s.initSubmission(sub, grading.SkillWriting)
	if len(sub.Answers) == 0 {
		sub.Answers = []Answer{{Text: in.EssayText}}
	}
	sub.ContentHash = grading.ContentHash(in.EssayText)

	s.runFastPass(ctx, sub, in, force)

	if err := s.repo.Put(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	s.enqueueDetail(ctx, sub, force)
	return sub, nil
}

// SubmitSpeech runs the provisional speech pipeline. An absent provisional
// result is a valid outcome: the submission stays in processing and the
// detail pass still runs against whatever transcript exists.
func (s *Service) SubmitSpeech(ctx context.Context, sub *Submission, in speech.Input, force bool) (*Submission, error) {
	s.initSubmission(sub, grading.SkillSpeaking)

	if s.speech != nil {
		result, err := s.speech.Provisional(ctx, in)
		if err == nil && result != nil {
			if len(sub.Answers) == 0 {
				sub.Answers = []Answer{{}}
			}
			sub.Answers[0].Text = result.Transcript
			sub.Answers[0].WordCount = result.Features.WordCount
			sub.ContentHash = grading.ContentHash(result.Transcript)
			if err := sub.ApplyFastResult(result.Fast); err != nil {
				return nil, err
			}
		}
	}
	if sub.FastResult == nil {
		if len(sub.Answers) == 0 && in.FallbackTranscript != "" {
			sub.Answers = []Answer{{Text: in.FallbackTranscript}}
		}
		sub.MarkProcessing()
	}

	if err := s.repo.Put(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	if sub.PrimaryText() != "" {
		s.enqueueDetail(ctx, sub, force)
	}
	return sub, nil
}

func (s *Service) initSubmission(sub *Submission, skill grading.Skill) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.Skill == "" {
		sub.Skill = skill
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	if sub.ScoringState == "" {
		sub.ScoringState = ScoringIdle
	}
	if sub.TaxonomyState == "" {
		sub.TaxonomyState = TaxonomyIdle
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
}

// runFastPass fills sub.FastResult from cache or a bounded provider call.
// Fast-pass failure is degraded, never fatal: the submission just stays in
// processing without a provisional band.
func (s *Service) runFastPass(ctx context.Context, sub *Submission, in grading.EssayInput, force bool) {
	key := grading.CacheKey{EntityID: sub.ID, ContentHash: sub.ContentHash}

	if !force {
		if cached, ok := s.cache.Get(key); ok {
			if err := sub.ApplyFastResult(cached); err == nil {
				return
			}
		}
	}

	if s.fast == nil {
		// No provider credentials: fast pipeline is a no-op.
		sub.MarkProcessing()
		return
	}

	fctx, cancel := context.WithTimeout(ctx, s.cfg.FastTimeout)
	defer cancel()

	fast, err := s.fast.Grade(fctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: fast grading failed for %s: %v\n", sub.ID, err)
		sub.MarkProcessing()
		return
	}

	if err := sub.ApplyFastResult(fast); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not apply fast result for %s: %v\n", sub.ID, err)
		sub.MarkProcessing()
		return
	}
	s.cache.Put(key, fast)
}

// enqueueDetail submits the detail job, keyed by submission id so
// re-submission of an in-flight submission is a no-op unless forced. When
// the queue is down the submission simply waits for a later re-trigger;
// detail grading is too expensive to run inline.
func (s *Service) enqueueDetail(ctx context.Context, sub *Submission, force bool) {
	if sub.ScoringState == ScoringDetailProcessing && !force {
		return
	}
	if s.jobs == nil || !s.jobs.IsReady() {
		fmt.Fprintf(os.Stderr, "warning: detail queue unavailable for %s; submission stays pending detail\n", sub.ID)
		return
	}

	payload := DetailJobPayload{SubmissionID: sub.ID, Force: force}
	receipt, err := s.jobs.Enqueue(ctx, queue.JobDetailGrading, sub.ID, payload, force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: enqueue detail job for %s: %v\n", sub.ID, err)
		return
	}
	if !receipt.Queued {
		// A detail job for this submission is already in flight.
		return
	}

	if err := sub.BeginDetail(); err == nil {
		if perr := s.repo.Put(ctx, sub); perr != nil {
			fmt.Fprintf(os.Stderr, "warning: persist detail_processing for %s: %v\n", sub.ID, perr)
		}
	}
}

// HandleDetailJob is the queue worker entry for detail grading: grade,
// reconcile, persist, then schedule taxonomy enrichment.
func (s *Service) HandleDetailJob(ctx context.Context, raw []byte) error {
	var payload DetailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode detail job payload: %w", err)
	}
	if s.jobs != nil {
		defer s.jobs.Done(queue.JobDetailGrading, payload.SubmissionID)
	}

	sub, err := s.repo.Get(ctx, payload.SubmissionID)
	if err != nil {
		return fmt.Errorf("load submission %s: %w", payload.SubmissionID, err)
	}

	// Completed work is not redone unless the caller forces it.
	if sub.ScoringState == ScoringDetailReady && !payload.Force {
		return nil
	}

	if s.detail == nil {
		return fmt.Errorf("no detail grader configured for %s", sub.ID)
	}

	if sub.ScoringState != ScoringDetailProcessing {
		if err := sub.BeginDetail(); err != nil {
			return err
		}
	}

	in := grading.EssayInput{
		EssayText: sub.PrimaryText(),
		TaskType:  sub.QuestionType,
		Skill:     sub.Skill,
	}

	detail, err := s.detail.Grade(ctx, in)
	if err != nil {
		sub.FailDetail()
		if perr := s.repo.Put(ctx, sub); perr != nil {
			fmt.Fprintf(os.Stderr, "warning: persist failed submission %s: %v\n", sub.ID, perr)
		}
		return fmt.Errorf("detail grading for %s: %w", sub.ID, err)
	}

	scoreChanged := false
	if sub.FastResult == nil {
		if err := sub.AdoptDetail(detail); err != nil {
			return err
		}
		scoreChanged = true
	} else {
		rec, err := grading.Reconcile(sub.FastResult, detail)
		if err != nil {
			// Invariant violation: fatal for this attempt, fast preserved.
			sub.FailDetail()
			if perr := s.repo.Put(ctx, sub); perr != nil {
				fmt.Fprintf(os.Stderr, "warning: persist failed submission %s: %v\n", sub.ID, perr)
			}
			return fmt.Errorf("reconcile %s: %w", sub.ID, err)
		}
		if err := sub.ApplyReconciliation(rec, detail); err != nil {
			return err
		}
		scoreChanged = rec.ScoreChanged
	}

	if err := s.repo.Put(ctx, sub); err != nil {
		return fmt.Errorf("persist reconciled submission %s: %w", sub.ID, err)
	}

	s.scheduleTaxonomy(ctx, sub, scoreChanged)
	return nil
}

// scheduleTaxonomy enqueues classification, forcing re-classification
// whenever the visible score changed. When the scheduler fell back to an
// inline attempt, its result is applied right here.
func (s *Service) scheduleTaxonomy(ctx context.Context, sub *Submission, scoreChanged bool) {
	if s.taxonomy == nil {
		return
	}

	req := taxonomy.Request{
		SubmissionID: sub.ID,
		Skill:        string(sub.Skill),
		QuestionType: sub.QuestionType,
		Issues:       sub.DetailResult.Issues(),
	}

	outcome, err := s.taxonomy.Schedule(ctx, req, scoreChanged)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: taxonomy scheduling for %s: %v\n", sub.ID, err)
		return
	}

	if outcome.Inline && outcome.Result != nil {
		if err := sub.CompleteTaxonomy(outcome.Result.Codes); err == nil {
			if perr := s.repo.Put(ctx, sub); perr != nil {
				fmt.Fprintf(os.Stderr, "warning: persist taxonomy result for %s: %v\n", sub.ID, perr)
			}
		}
	}
}

// HandleTaxonomyJob is the queue worker entry for taxonomy enrichment.
func (s *Service) HandleTaxonomyJob(ctx context.Context, raw []byte) error {
	var payload taxonomy.JobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode taxonomy job payload: %w", err)
	}
	if s.jobs != nil {
		defer s.jobs.Done(queue.JobTaxonomyEnrich, payload.SubmissionID)
	}

	sub, err := s.repo.Get(ctx, payload.SubmissionID)
	if err != nil {
		return fmt.Errorf("load submission %s: %w", payload.SubmissionID, err)
	}

	if sub.TaxonomyState == TaxonomyReady && !payload.Force {
		return nil
	}
	if sub.DetailResult == nil {
		return fmt.Errorf("submission %s has no detail result to classify", sub.ID)
	}

	result, err := s.classifier.Classify(ctx, taxonomy.Request{
		SubmissionID: sub.ID,
		Skill:        payload.Skill,
		QuestionType: payload.QuestionType,
		Issues:       sub.DetailResult.Issues(),
	})
	if err != nil {
		return fmt.Errorf("classify %s: %w", sub.ID, err)
	}

	if err := sub.CompleteTaxonomy(result.Codes); err != nil {
		return err
	}
	if err := s.repo.Put(ctx, sub); err != nil {
		return fmt.Errorf("persist taxonomy result %s: %w", sub.ID, err)
	}
	return nil
}
