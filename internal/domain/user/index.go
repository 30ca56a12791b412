package user

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotVettedTag marks users without any verification at indexing time.
const NotVettedTag = "not-vetted"

// FilterableAttributes are the record attributes the search index must be
// able to filter on. visible is numeric/boolean and needs no declaration.
var FilterableAttributes = []string{
	"orgs",
	"parents",
	"availability",
	"mentoring.subjects",
	"mentoring.searches",
	"tutoring.subjects",
	"tutoring.searches",
	"verifications.checks",
	"langs",
	"featured",
}

// Window is a timeslot stored as epoch milliseconds so the index can
// compare it numerically.
type Window struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// IndexRecord is the shape of a user inside the search index.
type IndexRecord struct {
	ObjectID      string         `json:"objectID"`
	Name          string         `json:"name"`
	Photo         string         `json:"photo"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Bio           string         `json:"bio"`
	Orgs          []string       `json:"orgs"`
	Parents       []string       `json:"parents"`
	Availability  []Window       `json:"availability"`
	Mentoring     Subjects       `json:"mentoring"`
	Tutoring      Subjects       `json:"tutoring"`
	Socials       []Social       `json:"socials"`
	Langs         []string       `json:"langs"`
	Verifications []Verification `json:"verifications"`
	Visible       bool           `json:"visible"`
	Featured      []Aspect       `json:"featured"`
	Tags          []string       `json:"_tags"`
}

// NewIndexRecord converts a profile into its index representation.
func NewIndexRecord(u *User) IndexRecord {
	windows := make([]Window, len(u.Availability))
	for i, t := range u.Availability {
		windows[i] = Window{From: t.From.UnixMilli(), To: t.To.UnixMilli()}
	}
	return IndexRecord{
		ObjectID:      u.ID,
		Name:          u.Name,
		Photo:         u.Photo,
		Email:         u.Email,
		Phone:         u.Phone,
		Bio:           u.Bio,
		Orgs:          nonNil(u.Orgs),
		Parents:       nonNil(u.Parents),
		Availability:  windows,
		Mentoring:     u.Mentoring,
		Tutoring:      u.Tutoring,
		Socials:       u.Socials,
		Langs:         nonNil(u.Langs),
		Verifications: u.Verifications,
		Visible:       u.Visible,
		Featured:      u.Featured,
		Tags:          indexTags(u),
	}
}

// User hydrates the record back into a profile.
func (r *IndexRecord) User() User {
	slots := make([]Timeslot, len(r.Availability))
	for i, w := range r.Availability {
		slots[i] = Timeslot{From: time.UnixMilli(w.From).UTC(), To: time.UnixMilli(w.To).UTC()}
	}
	return User{
		ID:            r.ObjectID,
		Name:          r.Name,
		Photo:         r.Photo,
		Email:         r.Email,
		Phone:         r.Phone,
		Bio:           r.Bio,
		Orgs:          r.Orgs,
		Parents:       r.Parents,
		Availability:  slots,
		Mentoring:     r.Mentoring,
		Tutoring:      r.Tutoring,
		Socials:       r.Socials,
		Langs:         r.Langs,
		Verifications: r.Verifications,
		Visible:       r.Visible,
		Featured:      r.Featured,
	}
}

// DecodeIndexRecord parses stored hit fields. objectID overrides whatever id
// the stored document carries.
func DecodeIndexRecord(objectID string, raw []byte) (IndexRecord, error) {
	var r IndexRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return IndexRecord{}, fmt.Errorf("decode index record %s: %w", objectID, err)
	}
	if objectID != "" {
		r.ObjectID = objectID
	}
	if r.ObjectID == "" {
		return IndexRecord{}, fmt.Errorf("decode index record: missing objectID")
	}
	return r, nil
}

func indexTags(u *User) []string {
	tags := []string{}
	if len(u.Verifications) == 0 {
		tags = append(tags, NotVettedTag)
	}
	return tags
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
