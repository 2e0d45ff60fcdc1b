package review

import (
	"strings"

	"reviewd/internal/domain"
)

// SynonymTable maps lowercased raw backend status words onto the canonical
// taxonomy. Backends have grown several vocabularies for the same concepts;
// the table absorbs all of them.
type SynonymTable map[string]domain.Status

// DefaultSynonyms returns the compiled-in synonym table. Operators can
// extend it from the status_synonyms table (see cmd/seedsynonyms).
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"success":    domain.StatusPassed,
		"succeeded":  domain.StatusPassed,
		"passed":     domain.StatusPassed,
		"pass":       domain.StatusPassed,
		"ok":         domain.StatusPassed,
		"warning":    domain.StatusHasIssues,
		"warn":       domain.StatusHasIssues,
		"suggest":    domain.StatusHasIssues,
		"error":      domain.StatusError,
		"failed":     domain.StatusError,
		"fail":       domain.StatusError,
		"pending":    domain.StatusLoading,
		"processing": domain.StatusLoading,
		"running":    domain.StatusLoading,
		"queued":     domain.StatusLoading,
	}
}

// Merge overlays other onto t, returning t for chaining.
func (t SynonymTable) Merge(other SynonymTable) SynonymTable {
	for raw, status := range other {
		t[strings.ToLower(raw)] = status
	}
	return t
}

// Map resolves a raw backend status word to the canonical taxonomy.
// Unknown values map to passed. That optimistic default is deliberate and
// matches long-observed backend behavior: a missing or novel status has
// historically meant "nothing wrong", and defaulting to error here would
// flag clean materials wholesale. It does mean a genuinely new failure
// vocabulary is invisible until the synonym table learns it.
func (t SynonymTable) Map(raw string) domain.Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return domain.StatusPassed
	}
	if s, ok := t[key]; ok {
		return s
	}
	return domain.StatusPassed
}
