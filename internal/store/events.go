package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/skilldrill/gradecore/internal/llm"
)

// EventLog records LLM request events. It implements llm.EventRecorder.
type EventLog struct {
	db *sql.DB
}

// StoredEvent is one persisted LLM request event.
type StoredEvent struct {
	ID int64
	llm.RequestEvent
	Timestamp time.Time
}

// RecordLLMRequest appends one request event.
func (e *EventLog) RecordLLMRequest(ctx context.Context, ev llm.RequestEvent) error {
	_, err := e.db.ExecContext(ctx, `
		INSERT INTO llm_events (
			provider, model, purpose, input_tokens, output_tokens,
			latency_ms, success, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Provider, ev.Model, ev.Purpose, ev.InputTokens, ev.OutputTokens,
		ev.LatencyMs, ev.Success, ev.ErrorMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record llm event: %w", err)
	}
	return nil
}

// Recent returns the newest events, most recent first.
func (e *EventLog) Recent(ctx context.Context, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := e.db.QueryContext(ctx, `
		SELECT id, provider, model, purpose, input_tokens, output_tokens,
		       latency_ms, success, error_message, created_at
		FROM llm_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var ev StoredEvent
		if err := rows.Scan(&ev.ID, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success,
			&ev.ErrorMessage, &ev.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
