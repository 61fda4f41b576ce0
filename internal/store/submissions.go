package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/skilldrill/gradecore/internal/grading"
	"github.com/skilldrill/gradecore/internal/submission"
)

// ErrNotFound is returned when no submission exists for the given id.
var ErrNotFound = errors.New("submission not found")

// SubmissionRepo reads and writes submissions. Structured fields are stored
// as JSON columns; the last write wins.
type SubmissionRepo struct {
	db *sql.DB
}

// Get loads a submission by id.
func (r *SubmissionRepo) Get(ctx context.Context, id string) (*submission.Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, skill, question_type, status, scoring_state, taxonomy_state,
		       score, content_hash, answers, ai_fast_result, ai_result,
		       taxonomy_codes, created_at, updated_at
		FROM submissions WHERE id = ?`, id)

	var (
		sub              submission.Submission
		answersJSON      string
		fastJSON         sql.NullString
		detailJSON       sql.NullString
		codesJSON        sql.NullString
		score            sql.NullFloat64
		created, updated time.Time
	)
	err := row.Scan(&sub.ID, &sub.Skill, &sub.QuestionType, &sub.Status,
		&sub.ScoringState, &sub.TaxonomyState, &score, &sub.ContentHash,
		&answersJSON, &fastJSON, &detailJSON, &codesJSON, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission %s: %w", id, err)
	}

	if score.Valid {
		sub.Score = score.Float64
	}
	sub.CreatedAt = created
	sub.UpdatedAt = updated

	if err := json.Unmarshal([]byte(answersJSON), &sub.Answers); err != nil {
		return nil, fmt.Errorf("decode answers for %s: %w", id, err)
	}
	if fastJSON.Valid && fastJSON.String != "" {
		sub.FastResult = &grading.FastResult{}
		if err := json.Unmarshal([]byte(fastJSON.String), sub.FastResult); err != nil {
			return nil, fmt.Errorf("decode fast result for %s: %w", id, err)
		}
	}
	if detailJSON.Valid && detailJSON.String != "" {
		sub.DetailResult = &grading.DetailResult{}
		if err := json.Unmarshal([]byte(detailJSON.String), sub.DetailResult); err != nil {
			return nil, fmt.Errorf("decode detail result for %s: %w", id, err)
		}
	}
	if codesJSON.Valid && codesJSON.String != "" {
		if err := json.Unmarshal([]byte(codesJSON.String), &sub.TaxonomyCodes); err != nil {
			return nil, fmt.Errorf("decode taxonomy codes for %s: %w", id, err)
		}
	}
	return &sub, nil
}

// Put upserts a submission.
func (r *SubmissionRepo) Put(ctx context.Context, sub *submission.Submission) error {
	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	fastJSON, err := marshalNullable(sub.FastResult == nil, sub.FastResult)
	if err != nil {
		return fmt.Errorf("encode fast result: %w", err)
	}
	detailJSON, err := marshalNullable(sub.DetailResult == nil, sub.DetailResult)
	if err != nil {
		return fmt.Errorf("encode detail result: %w", err)
	}
	var codesJSON sql.NullString
	if len(sub.TaxonomyCodes) > 0 {
		codesJSON, err = marshalNullable(false, sub.TaxonomyCodes)
		if err != nil {
			return fmt.Errorf("encode taxonomy codes: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO submissions (
			id, skill, question_type, status, scoring_state, taxonomy_state,
			score, content_hash, answers, ai_fast_result, ai_result,
			taxonomy_codes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			skill = excluded.skill,
			question_type = excluded.question_type,
			status = excluded.status,
			scoring_state = excluded.scoring_state,
			taxonomy_state = excluded.taxonomy_state,
			score = excluded.score,
			content_hash = excluded.content_hash,
			answers = excluded.answers,
			ai_fast_result = excluded.ai_fast_result,
			ai_result = excluded.ai_result,
			taxonomy_codes = excluded.taxonomy_codes,
			updated_at = excluded.updated_at`,
		sub.ID, string(sub.Skill), sub.QuestionType, string(sub.Status),
		string(sub.ScoringState), string(sub.TaxonomyState), sub.Score,
		sub.ContentHash, string(answersJSON), fastJSON, detailJSON,
		codesJSON, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert submission %s: %w", sub.ID, err)
	}
	return nil
}

// ListByScoringState returns submission ids in the given scoring state,
// oldest first. The worker uses it to re-drive stalled detail jobs.
func (r *SubmissionRepo) ListByScoringState(ctx context.Context, state submission.ScoringState, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM submissions
		WHERE scoring_state = ?
		ORDER BY updated_at ASC
		LIMIT ?`, string(state), limit)
	if err != nil {
		return nil, fmt.Errorf("list by scoring state: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func marshalNullable(isNil bool, v any) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
