package domain

// RawResult is the outcome of a single provider fetch. A nil *RawResult in a
// ResultSet marks the provider as absent: unreachable, unknown subject, or
// unmet dependency. Absence is a first-class outcome, never an error, and
// must not abort aggregation of other providers.
type RawResult struct {
	// Score is the provider's raw, provider-scaled score.
	Score float64

	// Metadata carries provider-specific fields alongside the score, such
	// as the derived account id a dependent provider consumes.
	Metadata map[string]string
}

// ResultSet maps provider ids to their fetch outcomes. Every enabled
// provider appears as a key; absent providers map to nil.
type ResultSet map[string]*RawResult

// Present reports whether the given provider produced a usable result.
func (rs ResultSet) Present(providerID string) bool {
	r, ok := rs[providerID]
	return ok && r != nil
}

// Derived extracts a named metadata field from a provider's result.
// It returns false when the provider is absent or the field is missing,
// which callers must treat as an unmet dependency.
func (rs ResultSet) Derived(providerID, field string) (string, bool) {
	r, ok := rs[providerID]
	if !ok || r == nil {
		return "", false
	}
	v, ok := r.Metadata[field]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
