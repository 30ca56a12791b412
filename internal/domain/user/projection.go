package user

import "github.com/tutorbook/tutorbook/internal/domain/org"

// Record is a user as shown to a particular caller: either a FullRecord or a
// TruncatedRecord.
type Record interface {
	RecordID() string
	Truncated() bool
}

// FullRecord exposes every field, contact details included.
type FullRecord struct {
	User
}

// RecordID returns the user identifier.
func (r FullRecord) RecordID() string { return r.ID }

// Truncated is false for full records.
func (FullRecord) Truncated() bool { return false }

// TruncatedRecord is the public subset of a profile. It has no email, phone,
// parents or verifications.
type TruncatedRecord struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Photo        string     `json:"photo"`
	Bio          string     `json:"bio"`
	Orgs         []string   `json:"orgs"`
	Availability []Timeslot `json:"availability"`
	Mentoring    Subjects   `json:"mentoring"`
	Tutoring     Subjects   `json:"tutoring"`
	Socials      []Social   `json:"socials"`
	Langs        []string   `json:"langs"`
}

// RecordID returns the user identifier.
func (r TruncatedRecord) RecordID() string { return r.ID }

// Truncated is true for truncated records.
func (TruncatedRecord) Truncated() bool { return true }

// Project decides how much of u the caller may see. Visible users and users
// that share an org with the caller are returned in full; everyone else is
// truncated to first name and last initial plus public fields. Hidden users
// are returned truncated, not filtered out.
func Project(u User, memberships org.Memberships) Record {
	if u.Visible || memberships.Intersects(u.Orgs) {
		return FullRecord{User: u}
	}
	return TruncatedRecord{
		ID:           u.ID,
		Name:         FirstNameAndLastInitial(u.Name),
		Photo:        u.Photo,
		Bio:          u.Bio,
		Orgs:         nonNil(u.Orgs),
		Availability: u.Availability,
		Mentoring:    u.Mentoring,
		Tutoring:     u.Tutoring,
		Socials:      nonNilSocials(u.Socials),
		Langs:        nonNil(u.Langs),
	}
}

func nonNilSocials(s []Social) []Social {
	if s == nil {
		return []Social{}
	}
	return s
}
