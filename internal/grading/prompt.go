package grading

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// EssayInput is one submission handed to a grading adapter. For speech
// submissions EssayText carries the transcript.
type EssayInput struct {
	PromptContext string
	EssayText     string
	TaskType      string
	Skill         Skill
}

const fastSystemPrompt = `You are an examiner estimating a band score (0-9, half steps) for a learner's language submission. Score quickly against the four criteria you are given. Keep each note to one short sentence. Do not write a sample answer.`

const detailSystemPrompt = `You are a senior examiner producing a full criterion-level assessment of a learner's language submission. Score each criterion 0-9 in half steps. For lexical resource and grammatical range, list concrete issues: quote the problematic phrase, explain the problem, and give an improved version, with an error code when one fits. For the remaining criteria a couple of summary notes suffice.`

var userMessageTmpl = template.Must(template.New("grading").Parse(
	`Task type: {{.TaskType}}
Prompt:
{{.PromptContext}}

Criteria: {{.Criteria}}

Submission:
{{.EssayText}}`))

func buildUserMessage(in EssayInput) (string, error) {
	data := struct {
		TaskType      string
		PromptContext string
		Criteria      string
		EssayText     string
	}{
		TaskType:      in.TaskType,
		PromptContext: in.PromptContext,
		Criteria:      strings.Join(CriteriaFor(in.Skill), ", "),
		EssayText:     in.EssayText,
	}

	var b bytes.Buffer
	if err := userMessageTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render grading prompt: %w", err)
	}
	return b.String(), nil
}
