// Package user holds the profile model shared by search, indexing and
// response projection.
package user

import (
	"fmt"
	"time"
)

// Aspect selects whether a profile is searched as a mentor or as a tutor.
type Aspect string

// Aspect constants.
const (
	Mentoring Aspect = "mentoring"
	Tutoring  Aspect = "tutoring"
)

// IsValid checks if the aspect is one of the supported values.
func (a Aspect) IsValid() bool {
	return a == Mentoring || a == Tutoring
}

// Timeslot is an open/close window.
type Timeslot struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Validate rejects windows that close before they open.
func (t Timeslot) Validate() error {
	if t.To.Before(t.From) {
		return fmt.Errorf("timeslot closes (%s) before it opens (%s)",
			t.To.Format(time.RFC3339), t.From.Format(time.RFC3339))
	}
	return nil
}

// Subjects lists what a user offers (subjects) and needs (searches) for one aspect.
type Subjects struct {
	Subjects []string `json:"subjects"`
	Searches []string `json:"searches"`
}

// Social is a link to an external profile.
type Social struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Verification records background checks an org ran on a user.
type Verification struct {
	User    string    `json:"user"`
	Org     string    `json:"org"`
	Checks  []string  `json:"checks"`
	Notes   string    `json:"notes,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// User is the source-of-truth profile record.
type User struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Photo         string         `json:"photo"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Bio           string         `json:"bio"`
	Orgs          []string       `json:"orgs"`
	Parents       []string       `json:"parents"`
	Availability  []Timeslot     `json:"availability"`
	Mentoring     Subjects       `json:"mentoring"`
	Tutoring      Subjects       `json:"tutoring"`
	Socials       []Social       `json:"socials"`
	Langs         []string       `json:"langs"`
	Verifications []Verification `json:"verifications"`
	Visible       bool           `json:"visible"`
	Featured      []Aspect       `json:"featured"`
}

// Validate checks the fields indexing depends on.
func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	for i, t := range u.Availability {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("availability[%d]: %w", i, err)
		}
	}
	for i, a := range u.Featured {
		if !a.IsValid() {
			return fmt.Errorf("featured[%d]: invalid aspect %q", i, a)
		}
	}
	return nil
}

// SubjectsFor returns the subject lists for the given aspect.
func (u *User) SubjectsFor(a Aspect) Subjects {
	if a == Tutoring {
		return u.Tutoring
	}
	return u.Mentoring
}
