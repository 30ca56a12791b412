package org

import (
	"fmt"
	"slices"
)

// Org is an organization that owns volunteer and student profiles.
type Org struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Validate checks the fields the membership index relies on.
func (o Org) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("org id is required")
	}
	for i, m := range o.Members {
		if m == "" {
			return fmt.Errorf("members[%d] is empty", i)
		}
	}
	return nil
}

// HasMember reports whether uid is listed as a member.
func (o Org) HasMember(uid string) bool {
	return slices.Contains(o.Members, uid)
}

// Memberships is the set of org IDs a caller belongs to.
// The zero value is an empty set (anonymous caller).
type Memberships struct {
	ids map[string]struct{}
}

// NewMemberships builds a set from org IDs, ignoring empty ones.
func NewMemberships(ids ...string) Memberships {
	m := Memberships{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			m.ids[id] = struct{}{}
		}
	}
	return m
}

// Contains reports whether id is in the set.
func (m Memberships) Contains(id string) bool {
	_, ok := m.ids[id]
	return ok
}

// Intersects reports whether any of ids is in the set.
func (m Memberships) Intersects(ids []string) bool {
	for _, id := range ids {
		if m.Contains(id) {
			return true
		}
	}
	return false
}

// Len returns the number of memberships.
func (m Memberships) Len() int { return len(m.ids) }

// IDs returns the org IDs in sorted order.
func (m Memberships) IDs() []string {
	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
