package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nuid"
)

const defaultSubjectPrefix = "gradecore.jobs"

// envelope is the wire format published to the broker.
type envelope struct {
	JobID   string          `json:"job_id"`
	JobType string          `json:"job_type"`
	Payload json.RawMessage `json:"payload"`
}

// NATS is a broker-backed queue publishing jobs to
// "<prefix>.<job_type>" subjects.
type NATS struct {
	conn   *nats.Conn
	prefix string
}

// NewNATS connects to the broker at url.
func NewNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.Name("gradecore"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &NATS{conn: conn, prefix: defaultSubjectPrefix}, nil
}

// Enqueue publishes the job envelope to the type's subject.
func (n *NATS) Enqueue(_ context.Context, jobType string, payload any) (Receipt, error) {
	if !n.IsReady() {
		return Receipt{}, fmt.Errorf("NATS connection not ready")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal job payload: %w", err)
	}

	env := envelope{
		JobID:   nuid.Next(),
		JobType: jobType,
		Payload: data,
	}
	msg, err := json.Marshal(env)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal job envelope: %w", err)
	}

	if err := n.conn.Publish(n.subject(jobType), msg); err != nil {
		return Receipt{}, fmt.Errorf("publish job: %w", err)
	}

	return Receipt{Queued: true, JobID: env.JobID}, nil
}

// IsReady reports whether the connection is established.
func (n *NATS) IsReady() bool {
	return n.conn != nil && n.conn.Status() == nats.CONNECTED
}

// Subscribe binds a handler to a job type's subject. Used by worker
// processes; handler errors are reported through the returned
// subscription's error handler, not retried here.
func (n *NATS) Subscribe(ctx context.Context, jobType string, h Handler) (*nats.Subscription, error) {
	return n.conn.QueueSubscribe(n.subject(jobType), "gradecore-workers", func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			return
		}
		_ = h(ctx, env.Payload)
	})
}

// Close drains and closes the connection.
func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

func (n *NATS) subject(jobType string) string {
	return n.prefix + "." + jobType
}
