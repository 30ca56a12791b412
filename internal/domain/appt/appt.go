// Package appt holds the appointment model and its search index record.
package appt

import (
	"fmt"

	"github.com/tutorbook/tutorbook/internal/domain/user"
)

// FilterableAttributes are the appointment record attributes the index
// filters on: dashboards list appointments by participant handle or org.
var FilterableAttributes = []string{"handles", "orgs"}

// Attendee is a participant of an appointment.
type Attendee struct {
	ID     string   `json:"id"`
	Handle string   `json:"handle"`
	Roles  []string `json:"roles"`
}

// Appt is a scheduled tutoring or mentoring session.
type Appt struct {
	ID        string         `json:"id"`
	Subjects  []string       `json:"subjects"`
	Attendees []Attendee     `json:"attendees"`
	Creator   Attendee       `json:"creator"`
	Message   string         `json:"message"`
	Venue     string         `json:"venue"`
	Time      *user.Timeslot `json:"time,omitempty"`
}

// Validate checks the fields indexing depends on.
func (a *Appt) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("appt id is required")
	}
	for i, at := range a.Attendees {
		if at.ID == "" {
			return fmt.Errorf("attendees[%d]: id is required", i)
		}
	}
	if a.Time != nil {
		if err := a.Time.Validate(); err != nil {
			return fmt.Errorf("time: %w", err)
		}
	}
	return nil
}

// AttendeeIDs returns the attendee user ids in order, without duplicates.
func (a *Appt) AttendeeIDs() []string {
	ids := make([]string, 0, len(a.Attendees))
	seen := make(map[string]struct{}, len(a.Attendees))
	for _, at := range a.Attendees {
		if _, ok := seen[at.ID]; ok {
			continue
		}
		seen[at.ID] = struct{}{}
		ids = append(ids, at.ID)
	}
	return ids
}

// Handles lists the creator's handle followed by every attendee handle.
// Empty handles are skipped.
func (a *Appt) Handles() []string {
	handles := make([]string, 0, len(a.Attendees)+1)
	if a.Creator.Handle != "" {
		handles = append(handles, a.Creator.Handle)
	}
	for _, at := range a.Attendees {
		if at.Handle != "" {
			handles = append(handles, at.Handle)
		}
	}
	return handles
}

// IndexRecord is the shape of an appointment inside the search index.
type IndexRecord struct {
	ObjectID  string       `json:"objectID"`
	Subjects  []string     `json:"subjects"`
	Attendees []Attendee   `json:"attendees"`
	Creator   Attendee     `json:"creator"`
	Message   string       `json:"message"`
	Venue     string       `json:"venue"`
	Time      *user.Window `json:"time,omitempty"`
	Handles   []string     `json:"handles"`
	Orgs      []string     `json:"orgs"`
}

// NewIndexRecord converts an appointment into its index representation.
// orgs are the orgs its attendees belong to.
func NewIndexRecord(a *Appt, orgs []string) IndexRecord {
	rec := IndexRecord{
		ObjectID:  a.ID,
		Subjects:  a.Subjects,
		Attendees: a.Attendees,
		Creator:   a.Creator,
		Message:   a.Message,
		Venue:     a.Venue,
		Handles:   a.Handles(),
		Orgs:      orgs,
	}
	if rec.Subjects == nil {
		rec.Subjects = []string{}
	}
	if rec.Attendees == nil {
		rec.Attendees = []Attendee{}
	}
	if rec.Orgs == nil {
		rec.Orgs = []string{}
	}
	if a.Time != nil {
		rec.Time = &user.Window{From: a.Time.From.UnixMilli(), To: a.Time.To.UnixMilli()}
	}
	return rec
}
