package llm

import "context"

// Purpose labels a request for the event log so token spend can be split
// by grading stage.
const (
	PurposeFastGrading   = "fast-grading"
	PurposeDetailGrading = "detail-grading"
)

type purposeKey struct{}

// WithPurpose tags the context with a purpose label.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom reads the purpose label back, or "unknown" if absent.
func PurposeFrom(ctx context.Context) string {
	v, _ := ctx.Value(purposeKey{}).(string)
	if v == "" {
		return "unknown"
	}
	return v
}
