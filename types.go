package tutorbook

import (
	"github.com/tutorbook/tutorbook/internal/domain/appt"
	"github.com/tutorbook/tutorbook/internal/domain/org"
	"github.com/tutorbook/tutorbook/internal/domain/search/query"
	"github.com/tutorbook/tutorbook/internal/domain/user"
)

// Profile and search types shared with the service.
type (
	User            = user.User
	Aspect          = user.Aspect
	Timeslot        = user.Timeslot
	Subjects        = user.Subjects
	Social          = user.Social
	Verification    = user.Verification
	Record          = user.Record
	FullRecord      = user.FullRecord
	TruncatedRecord = user.TruncatedRecord
	Org             = org.Org
	Appt            = appt.Appt
	Attendee        = appt.Attendee
	SearchParams    = query.Params
	FilterOption    = query.Option
)

// Aspects.
const (
	Mentoring = user.Mentoring
	Tutoring  = user.Tutoring
)

// Options builds filter options whose label equals their value.
func Options(values ...string) []FilterOption {
	return query.Options(values...)
}
