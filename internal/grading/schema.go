package grading

import "github.com/skilldrill/gradecore/internal/llm"

// criteriaScoresSchema builds the criteria_scores object definition for a
// criterion set, every key required.
func criteriaScoresSchema(criteria []string) map[string]any {
	props := make(map[string]any, len(criteria))
	required := make([]any, len(criteria))
	for i, c := range criteria {
		props[c] = map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 9,
		}
		required[i] = c
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// FastSchema is the expected shape of a fast-pass grading response.
// Deliberately small: a band, per-criterion scores, compact notes. There is
// no sample-answer field, so one can never leak into fast output.
func FastSchema(skill Skill) *llm.Schema {
	criteria := CriteriaFor(skill)

	noteProps := make(map[string]any, len(criteria))
	for _, c := range criteria {
		noteProps[c] = map[string]any{"type": "string"}
	}

	return &llm.Schema{
		Name:        "fast-grading-" + string(skill),
		Description: "Provisional band estimate with one short note per criterion",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"band_score": map[string]any{
					"type":    "number",
					"minimum": 0,
					"maximum": 9,
				},
				"criteria_scores": criteriaScoresSchema(criteria),
				"notes": map[string]any{
					"type":       "object",
					"properties": noteProps,
				},
			},
			"required": []any{"band_score", "criteria_scores"},
		},
	}
}

// DetailSchema is the expected shape of a detail-pass grading response:
// per-criterion scores with issue lists and notes.
func DetailSchema(skill Skill) *llm.Schema {
	criteria := CriteriaFor(skill)

	issueSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text_snippet": map[string]any{"type": "string"},
			"explanation":  map[string]any{"type": "string"},
			"improved":     map[string]any{"type": "string"},
			"error_code":   map[string]any{"type": "string"},
		},
		"required": []any{"text_snippet", "explanation"},
	}

	criterionSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 9,
			},
			"issues": map[string]any{
				"type":  "array",
				"items": issueSchema,
			},
			"notes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"score"},
	}

	critProps := make(map[string]any, len(criteria))
	required := make([]any, len(criteria))
	for i, c := range criteria {
		critProps[c] = criterionSchema
		required[i] = c
	}

	return &llm.Schema{
		Name:        "detail-grading-" + string(skill),
		Description: "Authoritative criterion-level grade with annotated issues",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"band_score": map[string]any{
					"type":    "number",
					"minimum": 0,
					"maximum": 9,
				},
				"criteria": map[string]any{
					"type":       "object",
					"properties": critProps,
					"required":   required,
				},
			},
			"required": []any{"band_score", "criteria"},
		},
	}
}
