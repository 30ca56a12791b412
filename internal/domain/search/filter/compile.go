package filter

import (
	"github.com/tutorbook/tutorbook/internal/domain/search/query"
)

// Index attributes the compiler filters on.
const (
	AttrVisible          = "visible"
	AttrLangs            = "langs"
	AttrChecks           = "verifications.checks"
	AttrOrgs             = "orgs"
	AttrTags             = "_tags"
	AttrAvailabilityFrom = "availability.from"
	AttrAvailabilityTo   = "availability.to"
	AttrFeatured         = "featured"
)

// Compile turns a query into one expression per availability timeslot, or a
// single expression when there is no availability. Every expression shares
// the same base clauses in a fixed order: visible, subjects, langs, checks,
// orgs, tags. Timeslots are alternatives, and the index cannot OR two AND
// groups, so each one becomes its own expression to be run separately and
// merged.
func Compile(q *query.Query) []Expression {
	base := baseExpression(q)

	slots := q.Availability()
	if len(slots) == 0 {
		return []Expression{base}
	}

	out := make([]Expression, 0, len(slots))
	for _, slot := range slots {
		// Overlap, not containment: the stored window opens before the
		// requested one closes and closes after it opens.
		overlap := Clause{op: And, grouped: true, terms: []Term{
			rangeTerm(AttrAvailabilityFrom, LTE, slot.To.UnixMilli()),
			rangeTerm(AttrAvailabilityTo, GTE, slot.From.UnixMilli()),
		}}
		out = append(out, base.With(overlap))
	}
	return out
}

// CompileStrings is Compile rendered to filter strings.
func CompileStrings(q *query.Query) []string {
	exprs := Compile(q)
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = e.String()
	}
	return out
}

// Optional returns ranking hints sent with every sub-query. They boost
// featured profiles for the searched aspect and never exclude results.
func Optional(q *query.Query) []string {
	return []string{AttrFeatured + ":" + string(q.Aspect())}
}

// SubjectsAttr returns the subjects attribute for the query's aspect.
func SubjectsAttr(q *query.Query) string {
	return string(q.Aspect()) + ".subjects"
}

func baseExpression(q *query.Query) Expression {
	var clauses []Clause

	if v, ok := q.Visible(); ok {
		clauses = append(clauses, Bare(Term{key: AttrVisible, kind: termBool, flag: v}))
	}

	lists := []struct {
		attr string
		opts []query.Option
	}{
		{SubjectsAttr(q), q.Subjects()},
		{AttrLangs, q.Langs()},
		{AttrChecks, q.Checks()},
		{AttrOrgs, q.Orgs()},
		{AttrTags, q.Tags()},
	}
	for _, l := range lists {
		if c, ok := anyOf(l.attr, l.opts); ok {
			clauses = append(clauses, c)
		}
	}

	return Expression{clauses: clauses}
}

// anyOf ORs the option values of one attribute.
func anyOf(attr string, opts []query.Option) (Clause, bool) {
	if len(opts) == 0 {
		return Clause{}, false
	}
	terms := make([]Term, len(opts))
	for i, o := range opts {
		terms[i] = matchTerm(attr, o.Value)
	}
	return Clause{op: Or, terms: terms, grouped: true}, true
}
