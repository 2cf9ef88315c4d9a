package permset

import (
	"slices"
	"strings"

	"github.com/jacksonlee411/jobdesk/pkg/selection"
)

// Group is a set of permissions of which at most one may be granted at a
// time, e.g. "jobs.view_all" and "jobs.view_assigned".
type Group []string

func (g Group) Contains(p string) bool {
	return slices.Contains(g, strings.TrimSpace(p))
}

// Set is a flat permission set with mutually exclusive groups layered on top.
// Like selection.Set it is a value.
type Set struct {
	perms  selection.Set
	groups []Group
}

func New(groups []Group, perms ...string) Set {
	s := Set{perms: selection.New(false), groups: cloneGroups(groups)}
	for _, p := range perms {
		s = s.Grant(p)
	}
	return s
}

func (s Set) Has(p string) bool { return s.perms.Has(selection.ID(p)) }
func (s Set) Len() int          { return s.perms.Len() }
func (s Set) List() []string    { return s.perms.Strings() }

// Selection exposes the underlying ordered set for encoding.
func (s Set) Selection() selection.Set { return s.perms }

// Grant adds p. When p belongs to an exclusive group, every other member of
// the group is removed first.
func (s Set) Grant(p string) Set {
	p = strings.TrimSpace(p)
	if p == "" || s.Has(p) {
		return s
	}
	out := s
	if g, ok := s.groupOf(p); ok {
		for _, peer := range g {
			out.perms = out.perms.Remove(selection.ID(peer))
		}
	}
	out.perms = out.perms.Add(selection.ID(p))
	return out
}

func (s Set) Revoke(p string) Set {
	out := s
	out.perms = s.perms.Remove(selection.ID(p))
	return out
}

func (s Set) Toggle(p string) Set {
	if s.Has(p) {
		return s.Revoke(p)
	}
	return s.Grant(p)
}

// Choose grants p as the single member of group. An empty p clears the group;
// a p outside group leaves s unchanged.
func (s Set) Choose(group Group, p string) Set {
	p = strings.TrimSpace(p)
	if p != "" && !group.Contains(p) {
		return s
	}
	out := s
	for _, peer := range group {
		out.perms = out.perms.Remove(selection.ID(peer))
	}
	if p == "" {
		return out
	}
	return out.Grant(p)
}

// Chosen reports the granted member of group, if any.
func (s Set) Chosen(group Group) (string, bool) {
	for _, peer := range group {
		if s.Has(peer) {
			return peer, true
		}
	}
	return "", false
}

// Normalize enforces the exclusive groups on a set built from untrusted data:
// the first granted member of each group wins. It returns the dropped
// permissions.
func (s Set) Normalize() (Set, []string) {
	out := Set{perms: selection.New(false), groups: s.groups}
	var dropped []string
	for _, p := range s.List() {
		if g, ok := s.groupOf(p); ok {
			if _, taken := out.Chosen(g); taken {
				dropped = append(dropped, p)
				continue
			}
		}
		out.perms = out.perms.Add(selection.ID(p))
	}
	return out, dropped
}

// FromSelection wraps decoded identifiers without applying group rules; call
// Normalize afterwards.
func FromSelection(groups []Group, sel selection.Set) Set {
	return Set{perms: selection.New(false, sel.Members()...), groups: cloneGroups(groups)}
}

func (s Set) groupOf(p string) (Group, bool) {
	for _, g := range s.groups {
		if g.Contains(p) {
			return g, true
		}
	}
	return nil, false
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, slices.Clone(g))
	}
	return out
}
