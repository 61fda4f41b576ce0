package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nats-io/nuid"
)

// Handler processes one job payload.
type Handler func(ctx context.Context, payload []byte) error

// Memory is an in-process queue with a single dispatch goroutine. It backs
// tests and single-binary deployments where no broker is available.
type Memory struct {
	mu       sync.Mutex
	handlers map[string]Handler
	jobs     chan memoryJob
	done     chan struct{}
	started  bool
	closed   bool
}

type memoryJob struct {
	id      string
	jobType string
	payload []byte
}

// NewMemory creates an in-process queue with the given buffer size.
func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 64
	}
	return &Memory{
		handlers: make(map[string]Handler),
		jobs:     make(chan memoryJob, buffer),
		done:     make(chan struct{}),
	}
}

// RegisterHandler binds a handler to a job type. Must be called before Start.
func (m *Memory) RegisterHandler(jobType string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[jobType] = h
}

// Start launches the dispatch loop.
func (m *Memory) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-m.jobs:
				if !ok {
					return
				}
				m.dispatch(ctx, job)
			}
		}
	}()
}

func (m *Memory) dispatch(ctx context.Context, job memoryJob) {
	m.mu.Lock()
	h, ok := m.handlers[job.jobType]
	m.mu.Unlock()
	if !ok {
		fmt.Fprintf(os.Stderr, "warning: no handler for job type %q (job %s)\n", job.jobType, job.id)
		return
	}
	if err := h(ctx, job.payload); err != nil {
		fmt.Fprintf(os.Stderr, "warning: job %s (%s) failed: %v\n", job.id, job.jobType, err)
	}
}

// Enqueue marshals the payload and hands it to the dispatch loop.
func (m *Memory) Enqueue(_ context.Context, jobType string, payload any) (Receipt, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal job payload: %w", err)
	}

	job := memoryJob{id: nuid.Next(), jobType: jobType, payload: data}

	// The readiness check and the send sit under one lock, and Close
	// closes the channel under the same lock, so a racing Close cannot
	// turn this send into a panic.
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started || m.closed {
		return Receipt{}, fmt.Errorf("memory queue not started")
	}

	select {
	case m.jobs <- job:
		return Receipt{Queued: true, JobID: job.id}, nil
	default:
		return Receipt{}, fmt.Errorf("memory queue full")
	}
}

// IsReady reports whether the dispatch loop is running.
func (m *Memory) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started && !m.closed
}

// Close stops accepting jobs and waits for the loop to drain.
func (m *Memory) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.jobs)
	started := m.started
	m.mu.Unlock()
	if started {
		<-m.done
	}
}
