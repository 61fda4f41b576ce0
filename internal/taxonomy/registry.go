package taxonomy

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Unclassified is returned when a raw code matches nothing in the registry.
const Unclassified = "unclassified"

// maxNormalizeDistance bounds how far a raw code may drift from a registry
// code and still be snapped to it.
const maxNormalizeDistance = 2

// ErrorCode is one entry of the error-code registry. Registry contents are
// owned by the classification collaborator; this core only looks codes up.
type ErrorCode struct {
	Code  string
	Label string
}

// Registry is the lookup boundary to the external code registry.
type Registry interface {
	Lookup(code string) (ErrorCode, bool)
	Codes() []string
}

// StaticRegistry is an in-memory Registry, used for tests and inline
// fallback classification.
type StaticRegistry struct {
	byCode map[string]ErrorCode
	codes  []string
}

// DefaultRegistry returns a registry seeded with the built-in writing and
// speaking error codes. Deployments with an external registry replace it.
func DefaultRegistry() *StaticRegistry {
	return NewStaticRegistry([]ErrorCode{
		{Code: "subject_verb_agreement", Label: "Subject-verb agreement"},
		{Code: "verb_tense", Label: "Verb tense"},
		{Code: "article_usage", Label: "Article usage"},
		{Code: "preposition_choice", Label: "Preposition choice"},
		{Code: "word_choice", Label: "Word choice"},
		{Code: "collocation", Label: "Collocation"},
		{Code: "word_form", Label: "Word form"},
		{Code: "spelling", Label: "Spelling"},
		{Code: "run_on_sentence", Label: "Run-on sentence"},
		{Code: "sentence_fragment", Label: "Sentence fragment"},
		{Code: "punctuation", Label: "Punctuation"},
		{Code: "informal_register", Label: "Informal register"},
		{Code: "redundancy", Label: "Redundancy"},
		{Code: "pronoun_reference", Label: "Pronoun reference"},
		{Code: "plural_form", Label: "Plural form"},
	})
}

// NewStaticRegistry builds a registry from the given entries.
func NewStaticRegistry(entries []ErrorCode) *StaticRegistry {
	r := &StaticRegistry{byCode: make(map[string]ErrorCode, len(entries))}
	for _, e := range entries {
		if _, dup := r.byCode[e.Code]; dup {
			continue
		}
		r.byCode[e.Code] = e
		r.codes = append(r.codes, e.Code)
	}
	return r
}

// Lookup returns the entry for an exact code.
func (r *StaticRegistry) Lookup(code string) (ErrorCode, bool) {
	e, ok := r.byCode[code]
	return e, ok
}

// Codes returns all registered codes.
func (r *StaticRegistry) Codes() []string {
	return r.codes
}

// Normalize maps a raw model-emitted code onto the registry. Exact matches
// win; otherwise the nearest code within the edit-distance bound is used;
// anything further is Unclassified. LLMs emit near-miss spellings
// ("sub_verb_agrmnt") often enough that exact-only matching loses signal.
func Normalize(reg Registry, raw string) string {
	code := strings.ToLower(strings.TrimSpace(raw))
	if code == "" {
		return Unclassified
	}

	if _, ok := reg.Lookup(code); ok {
		return code
	}

	best := ""
	bestDist := maxNormalizeDistance + 1
	for _, candidate := range reg.Codes() {
		d := levenshtein.DistanceForStrings([]rune(code), []rune(candidate), levenshtein.DefaultOptions)
		if d < bestDist {
			bestDist = d
			best = candidate
		}
	}

	if best == "" {
		return Unclassified
	}
	return best
}
