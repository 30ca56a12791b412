package db

import "strings"

// Keyspace lays out the Redis keys of one JSON index: documents live at
// <prefix><name>:<id> and the FT index is named <prefix><name>:idx.
type Keyspace struct {
	Prefix string
	Name   string
}

// DocPrefix returns the key prefix shared by every document.
func (k Keyspace) DocPrefix() string {
	return k.Prefix + k.Name + ":"
}

// Key returns the document key for id.
func (k Keyspace) Key(id string) string {
	return k.DocPrefix() + id
}

// Index returns the FT index name.
func (k Keyspace) Index() string {
	return k.Prefix + k.Name + ":idx"
}

// ID extracts the document id from a key.
func (k Keyspace) ID(key string) string {
	return strings.TrimPrefix(key, k.DocPrefix())
}
