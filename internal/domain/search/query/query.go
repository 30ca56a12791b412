package query

import (
	"fmt"

	"github.com/tutorbook/tutorbook/internal/domain/user"
)

// Search parameter limits.
const (
	DefaultHitsPerPage = 20
	MaxHitsPerPage     = 1000
	MaxOptions         = 64
	MaxTimeslots       = 32
)

// Option is a labeled filter value. Only Value reaches the index.
type Option struct {
	Label string
	Value string
}

// Options builds options whose label equals their value.
func Options(values ...string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Label: v, Value: v})
	}
	return out
}

// Params is the raw input of New.
type Params struct {
	Aspect       user.Aspect
	Subjects     []Option
	Langs        []Option
	Checks       []Option
	Orgs         []Option
	Tags         []Option
	Availability []user.Timeslot
	Visible      *bool
	Page         int
	HitsPerPage  int
}

// Query is a validated, immutable user search filter.
type Query struct {
	aspect       user.Aspect
	subjects     []Option
	langs        []Option
	checks       []Option
	orgs         []Option
	tags         []Option
	availability []user.Timeslot
	visible      *bool
	page         int
	hitsPerPage  int
}

// New validates and normalizes search parameters.
// Defaults: aspect=mentoring, page=0, hitsPerPage=20.
func New(p Params) (Query, error) {
	if p.Aspect == "" {
		p.Aspect = user.Mentoring
	}
	if !p.Aspect.IsValid() {
		return Query{}, fmt.Errorf("invalid aspect: %q", p.Aspect)
	}

	lists := []struct {
		name string
		opts []Option
	}{
		{"subjects", p.Subjects},
		{"langs", p.Langs},
		{"checks", p.Checks},
		{"orgs", p.Orgs},
		{"tags", p.Tags},
	}
	for _, l := range lists {
		if len(l.opts) > MaxOptions {
			return Query{}, fmt.Errorf("too many %s (max %d)", l.name, MaxOptions)
		}
		for i, o := range l.opts {
			if o.Value == "" {
				return Query{}, fmt.Errorf("%s[%d]: value is required", l.name, i)
			}
		}
	}

	if len(p.Availability) > MaxTimeslots {
		return Query{}, fmt.Errorf("too many timeslots (max %d)", MaxTimeslots)
	}
	for i, t := range p.Availability {
		if err := t.Validate(); err != nil {
			return Query{}, fmt.Errorf("availability[%d]: %w", i, err)
		}
	}

	if p.Page < 0 {
		return Query{}, fmt.Errorf("page must not be negative")
	}
	if p.HitsPerPage <= 0 {
		p.HitsPerPage = DefaultHitsPerPage
	}
	if p.HitsPerPage > MaxHitsPerPage {
		p.HitsPerPage = MaxHitsPerPage
	}

	var visible *bool
	if p.Visible != nil {
		v := *p.Visible
		visible = &v
	}

	return Query{
		aspect:       p.Aspect,
		subjects:     clone(p.Subjects),
		langs:        clone(p.Langs),
		checks:       clone(p.Checks),
		orgs:         clone(p.Orgs),
		tags:         clone(p.Tags),
		availability: clone(p.Availability),
		visible:      visible,
		page:         p.Page,
		hitsPerPage:  p.HitsPerPage,
	}, nil
}

// Aspect returns the searched aspect.
func (q *Query) Aspect() user.Aspect { return q.aspect }

// Subjects returns the subject options.
func (q *Query) Subjects() []Option { return q.subjects }

// Langs returns the language options.
func (q *Query) Langs() []Option { return q.langs }

// Checks returns the verification-check options.
func (q *Query) Checks() []Option { return q.checks }

// Orgs returns the organization options.
func (q *Query) Orgs() []Option { return q.orgs }

// Tags returns the index tag options.
func (q *Query) Tags() []Option { return q.tags }

// Availability returns the candidate timeslots.
func (q *Query) Availability() []user.Timeslot { return q.availability }

// Visible returns the visibility filter and whether it is set.
func (q *Query) Visible() (value, ok bool) {
	if q.visible == nil {
		return false, false
	}
	return *q.visible, true
}

// Page returns the zero-based page forwarded to every sub-query.
func (q *Query) Page() int { return q.page }

// HitsPerPage returns the page size forwarded to every sub-query.
func (q *Query) HitsPerPage() int { return q.hitsPerPage }

func clone[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
