package selection

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ID is the canonical string form of an association identifier.
type ID string

func (id ID) String() string { return string(id) }

// Normalize returns the canonical form of a raw identifier: surrounding
// whitespace trimmed and UUIDs rendered lowercase-hyphenated. Integer keys are
// carried as their decimal text.
func Normalize(raw string) ID {
	raw = strings.TrimSpace(raw)
	if len(raw) == 36 {
		if u, err := uuid.Parse(raw); err == nil {
			return ID(u.String())
		}
	}
	return ID(raw)
}

func NormalizeAll(raw []string) []ID {
	out := make([]ID, 0, len(raw))
	for _, r := range raw {
		out = append(out, Normalize(r))
	}
	return out
}

// Set is an ordered set of identifiers with an optional designated primary.
// Set is a value: every mutating method returns a new Set and never shares
// backing storage with the receiver.
type Set struct {
	members      []ID
	primary      ID
	trackPrimary bool
}

// New builds a Set from ids in order, dropping blanks and duplicates. When
// trackPrimary is set the first member becomes primary.
func New(trackPrimary bool, ids ...ID) Set {
	s := Set{trackPrimary: trackPrimary}
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

func (s Set) Members() []ID       { return slices.Clone(s.members) }
func (s Set) Primary() ID         { return s.primary }
func (s Set) TracksPrimary() bool { return s.trackPrimary }
func (s Set) Len() int            { return len(s.members) }
func (s Set) IsEmpty() bool       { return len(s.members) == 0 }

func (s Set) Has(id ID) bool {
	id = Normalize(string(id))
	return id != "" && slices.Contains(s.members, id)
}

func (s Set) Strings() []string {
	out := make([]string, 0, len(s.members))
	for _, id := range s.members {
		out = append(out, string(id))
	}
	return out
}

// Toggle adds id when absent and removes it when present.
func (s Set) Toggle(id ID) Set {
	if s.Has(id) {
		return s.Remove(id)
	}
	return s.Add(id)
}

// Add appends id. Adding the first member of a primary-tracking set makes it
// primary. Adding an existing member is a no-op.
func (s Set) Add(id ID) Set {
	id = Normalize(string(id))
	if id == "" || slices.Contains(s.members, id) {
		return s
	}
	out := s.clone()
	out.members = append(out.members, id)
	if out.trackPrimary && out.primary == "" {
		out.primary = id
	}
	return out
}

// Remove drops id. Removing the primary promotes the first remaining member,
// or clears the primary when the set becomes empty.
func (s Set) Remove(id ID) Set {
	id = Normalize(string(id))
	idx := slices.Index(s.members, id)
	if id == "" || idx < 0 {
		return s
	}
	out := s.clone()
	out.members = slices.Delete(out.members, idx, idx+1)
	if out.primary == id {
		out.primary = ""
		if len(out.members) > 0 {
			out.primary = out.members[0]
		}
	}
	return out
}

// SetPrimary designates id as primary. id must already be a member.
func (s Set) SetPrimary(id ID) (Set, error) {
	if !s.trackPrimary {
		return s, ErrPrimaryNotTracked
	}
	id = Normalize(string(id))
	if id == "" || !slices.Contains(s.members, id) {
		return s, &InvalidPrimaryCandidateError{ID: id}
	}
	out := s.clone()
	out.primary = id
	return out, nil
}

// PrimaryFirst lists the members with the primary moved to position 0.
func (s Set) PrimaryFirst() []ID {
	out := slices.Clone(s.members)
	if idx := slices.Index(out, s.primary); idx > 0 {
		out = slices.Delete(out, idx, idx+1)
		out = slices.Insert(out, 0, s.primary)
	}
	return out
}

func (s Set) Equal(o Set) bool {
	return s.trackPrimary == o.trackPrimary && s.primary == o.primary && slices.Equal(s.members, o.members)
}

// Reconcile builds a Set from a decoded list and a separately stored primary
// field. A non-empty primary is moved (or inserted) to position 0; an empty
// primary defers to the first decoded member. Non-tracking sets ignore
// primary entirely.
func Reconcile(ids []ID, primary ID, trackPrimary bool) Set {
	s := New(trackPrimary, ids...)
	if !trackPrimary {
		return s
	}
	primary = Normalize(string(primary))
	if primary == "" {
		return s
	}
	members := s.members
	if idx := slices.Index(members, primary); idx >= 0 {
		members = slices.Delete(members, idx, idx+1)
	}
	s.members = slices.Insert(members, 0, primary)
	s.primary = primary
	return s
}

func (s Set) clone() Set {
	s.members = slices.Clone(s.members)
	return s
}
