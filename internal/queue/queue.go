package queue

import (
	"context"
	"sync"
)

// Job types understood by the worker.
const (
	JobDetailGrading  = "detail_grading"
	JobTaxonomyEnrich = "taxonomy_enrich"
)

// Receipt is the queue's answer to an enqueue attempt.
type Receipt struct {
	Queued bool
	JobID  string
}

// Queue is the job-transport collaborator. Callers gate on IsReady before
// enqueueing; a not-ready queue triggers the caller's fallback policy.
type Queue interface {
	Enqueue(ctx context.Context, jobType string, payload any) (Receipt, error)
	IsReady() bool
}

// Keyed wraps a Queue so that at most one job per (jobType, key) is in
// flight. Duplicate enqueues are idempotent no-ops returning the existing
// job id, unless force re-enqueues over the top.
type Keyed struct {
	inner Queue

	mu       sync.Mutex
	inflight map[string]string // jobType+"/"+key → jobID
}

// NewKeyed wraps a queue with per-key dedupe.
func NewKeyed(inner Queue) *Keyed {
	return &Keyed{inner: inner, inflight: make(map[string]string)}
}

// Enqueue submits a job keyed by key. Returns Queued=false when a job for
// the key is already in flight and force is unset; JobID carries the
// existing job's id, or "" when that job is still being submitted.
func (k *Keyed) Enqueue(ctx context.Context, jobType, key string, payload any, force bool) (Receipt, error) {
	mapKey := jobType + "/" + key

	// Reserve the slot before releasing the lock so concurrent enqueues
	// for the same key dedupe against this attempt, not just against
	// already-registered jobs.
	k.mu.Lock()
	if existing, ok := k.inflight[mapKey]; ok && !force {
		k.mu.Unlock()
		return Receipt{Queued: false, JobID: existing}, nil
	}
	k.inflight[mapKey] = ""
	k.mu.Unlock()

	receipt, err := k.inner.Enqueue(ctx, jobType, payload)

	k.mu.Lock()
	if err != nil {
		delete(k.inflight, mapKey)
	} else {
		k.inflight[mapKey] = receipt.JobID
	}
	k.mu.Unlock()

	return receipt, err
}

// Done releases the in-flight slot for a key after its job completes or
// fails terminally.
func (k *Keyed) Done(jobType, key string) {
	k.mu.Lock()
	delete(k.inflight, jobType+"/"+key)
	k.mu.Unlock()
}

// IsReady reports whether the underlying transport can accept jobs.
func (k *Keyed) IsReady() bool {
	return k.inner.IsReady()
}
