package legacyenc

import (
	"errors"
	"strings"
)

var errTrailingData = errors.New("legacyenc: trailing data after json value")

type Reason string

const (
	ReasonInvalidJSON    Reason = "invalid_json"
	ReasonJSONScalar     Reason = "json_scalar"
	ReasonDroppedElement Reason = "dropped_element"
	ReasonDuplicates     Reason = "duplicates_collapsed"
	ReasonUnknownKind    Reason = "unknown_kind"
)

type Note struct {
	Reason Reason
	Detail string
}

// Report describes how a Decode call degraded. A zero Report means the input
// was decoded in its declared form without loss.
type Report struct {
	// Kind is the encoding the caller declared.
	Kind Kind
	// Decoded is the form actually used; it differs from Kind after a fallback.
	Decoded      Kind
	FallbackKind Kind
	// Coerced counts JSON numbers converted to identifier strings. It is not
	// a degradation but the stored text is not in canonical form.
	Coerced int
	Notes   []Note
}

// Canonical reports whether the decoded text was already in the form Encode
// produces: a JSON array of strings decoded without loss.
func (r Report) Canonical() bool {
	return r.Decoded == KindJSONArray && r.Coerced == 0 && !r.Degraded()
}

func (r Report) Degraded() bool { return len(r.Notes) > 0 }

func (r Report) Has(reason Reason) bool {
	for _, n := range r.Notes {
		if n.Reason == reason {
			return true
		}
	}
	return false
}

func (r Report) Reasons() []string {
	out := make([]string, 0, len(r.Notes))
	for _, n := range r.Notes {
		out = append(out, string(n.Reason))
	}
	return out
}

func (r Report) String() string {
	if !r.Degraded() {
		return "ok"
	}
	parts := make([]string, 0, len(r.Notes))
	for _, n := range r.Notes {
		if n.Detail == "" {
			parts = append(parts, string(n.Reason))
			continue
		}
		parts = append(parts, string(n.Reason)+"("+n.Detail+")")
	}
	return strings.Join(parts, "; ")
}

func (r *Report) note(reason Reason, detail string) {
	r.Notes = append(r.Notes, Note{Reason: reason, Detail: detail})
}

func (r *Report) fallback(to Kind, reason Reason, detail string) {
	r.FallbackKind = to
	r.note(reason, detail)
}
