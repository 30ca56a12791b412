package search

import "github.com/tutorbook/tutorbook/internal/domain/search/hit"

// Merge concatenates hits in outcome order and keeps the first occurrence of
// each object ID. Failed outcomes contribute nothing.
func Merge(outcomes []Outcome) []hit.Hit {
	n := 0
	for _, o := range outcomes {
		n += len(o.Hits)
	}

	merged := make([]hit.Hit, 0, n)
	seen := make(map[string]struct{}, n)
	for _, o := range outcomes {
		if o.Failed() {
			continue
		}
		for _, h := range o.Hits {
			if _, dup := seen[h.ObjectID]; dup {
				continue
			}
			seen[h.ObjectID] = struct{}{}
			merged = append(merged, h)
		}
	}
	return merged
}
