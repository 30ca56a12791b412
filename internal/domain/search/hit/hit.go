package hit

import "encoding/json"

// Hit is one record returned by the search index: its object id plus the
// stored fields, left undecoded until hydration.
type Hit struct {
	ObjectID string
	Source   json.RawMessage
}

// New creates a hit.
func New(objectID string, source []byte) Hit {
	return Hit{ObjectID: objectID, Source: source}
}
