package counties

import (
	"fmt"
	"sort"
	"strings"
)

// parseBorders loads "County: A, B" lines and checks the graph invariants:
// every name is a canonical county, no self loops, no duplicates, and every
// edge is listed from both ends.
func (r *Registry) parseBorders(lines []string) error {
	for _, line := range lines {
		head, tail, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("border line %q: missing ':'", line)
		}
		from, ok := r.byKey[normalize(head)]
		if !ok {
			return fmt.Errorf("border line %q: %w %q", line, ErrUnknownCounty, strings.TrimSpace(head))
		}
		if _, seen := r.neighbors[from.Name]; seen {
			return fmt.Errorf("border line %q: %s listed twice", line, from.Name)
		}
		set := make(map[string]struct{})
		for _, raw := range strings.Split(tail, ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			to, ok := r.byKey[normalize(raw)]
			if !ok {
				return fmt.Errorf("border line %q: %w %q", line, ErrUnknownCounty, strings.TrimSpace(raw))
			}
			if to.Name == from.Name {
				return fmt.Errorf("border line %q: %s borders itself", line, from.Name)
			}
			if _, dup := set[to.Name]; dup {
				return fmt.Errorf("border line %q: %s listed twice", line, to.Name)
			}
			set[to.Name] = struct{}{}
		}
		r.neighbors[from.Name] = set
	}

	for from, set := range r.neighbors {
		for to := range set {
			if _, ok := r.neighbors[to][from]; !ok {
				return fmt.Errorf("border %s-%s is not symmetric", from, to)
			}
		}
	}
	return nil
}

// IsAdjacent reports whether a and b share a land border. It is false when
// either name is empty or unknown, and when both resolve to the same county.
// Aliases resolve through their canonical name.
func (r *Registry) IsAdjacent(a, b string) bool {
	ca, ok := r.Lookup(a)
	if !ok {
		return false
	}
	cb, ok := r.Lookup(b)
	if !ok || ca.Name == cb.Name {
		return false
	}
	_, ok = r.neighbors[ca.Name][cb.Name]
	return ok
}

// Neighbors returns the sorted canonical neighbours of name.
func (r *Registry) Neighbors(name string) []string {
	c, ok := r.Lookup(name)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(r.neighbors[c.Name]))
	for n := range r.neighbors[c.Name] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
