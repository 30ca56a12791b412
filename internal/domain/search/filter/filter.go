package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxTermsPerClause is the maximum number of terms per clause.
const MaxTermsPerClause = 64

// Op joins the terms of a clause.
type Op int

const (
	// And requires every term of the clause.
	And Op = iota
	// Or requires at least one term of the clause.
	Or
)

func (o Op) String() string {
	if o == Or {
		return "OR"
	}
	return "AND"
}

// Comparison is a numeric comparison operator.
type Comparison string

// Supported comparisons.
const (
	LTE Comparison = "<="
	GTE Comparison = ">="
)

type termKind int

const (
	termMatch termKind = iota
	termBool
	termRange
)

// Term is a single predicate on one attribute: an exact facet match, a
// boolean equality, or a numeric comparison.
type Term struct {
	key   string
	kind  termKind
	match string
	flag  bool
	cmp   Comparison
	bound int64
}

// NewMatch creates an exact facet match term.
func NewMatch(key, value string) (Term, error) {
	if key == "" {
		return Term{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Term{}, fmt.Errorf("match value is required for key %q", key)
	}
	return matchTerm(key, value), nil
}

// NewBool creates a boolean equality term.
func NewBool(key string, value bool) (Term, error) {
	if key == "" {
		return Term{}, fmt.Errorf("filter key is required")
	}
	return Term{key: key, kind: termBool, flag: value}, nil
}

// NewRange creates a numeric comparison term.
func NewRange(key string, cmp Comparison, bound int64) (Term, error) {
	if key == "" {
		return Term{}, fmt.Errorf("filter key is required")
	}
	if cmp != LTE && cmp != GTE {
		return Term{}, fmt.Errorf("unsupported comparison %q", cmp)
	}
	return rangeTerm(key, cmp, bound), nil
}

func matchTerm(key, value string) Term {
	return Term{key: key, kind: termMatch, match: value}
}

func rangeTerm(key string, cmp Comparison, bound int64) Term {
	return Term{key: key, kind: termRange, cmp: cmp, bound: bound}
}

// Key returns the attribute name.
func (t Term) Key() string { return t.key }

// Match returns the exact match value.
func (t Term) Match() string { return t.match }

// Bool returns the boolean value of a bool term.
func (t Term) Bool() bool { return t.flag }

// Comparison returns the operator of a range term.
func (t Term) Comparison() Comparison { return t.cmp }

// Bound returns the right-hand side of a range term.
func (t Term) Bound() int64 { return t.bound }

// IsMatch reports whether this is a match term.
func (t Term) IsMatch() bool { return t.kind == termMatch }

// IsBool reports whether this is a boolean term.
func (t Term) IsBool() bool { return t.kind == termBool }

// IsRange reports whether this is a range term.
func (t Term) IsRange() bool { return t.kind == termRange }

// String renders the term as attr:"value", attr=1 or attr <= n.
func (t Term) String() string {
	switch t.kind {
	case termBool:
		if t.flag {
			return t.key + "=1"
		}
		return t.key + "=0"
	case termRange:
		return t.key + " " + string(t.cmp) + " " + strconv.FormatInt(t.bound, 10)
	default:
		return t.key + `:"` + valueEscaper.Replace(t.match) + `"`
	}
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Clause is a group of terms joined by a single operator. A clause never
// contains another clause.
type Clause struct {
	op      Op
	terms   []Term
	grouped bool
}

// NewClause creates a parenthesized clause.
func NewClause(op Op, terms ...Term) (Clause, error) {
	if len(terms) == 0 {
		return Clause{}, fmt.Errorf("clause needs at least one term")
	}
	if len(terms) > MaxTermsPerClause {
		return Clause{}, fmt.Errorf("too many terms in clause (max %d)", MaxTermsPerClause)
	}
	return Clause{op: op, terms: terms, grouped: true}, nil
}

// Bare wraps a single term in a clause rendered without parentheses.
func Bare(t Term) Clause {
	return Clause{op: And, terms: []Term{t}}
}

// Op returns the operator joining the terms.
func (c Clause) Op() Op { return c.op }

// Terms returns the clause terms.
func (c Clause) Terms() []Term { return c.terms }

// Grouped reports whether the clause renders in parentheses.
func (c Clause) Grouped() bool { return c.grouped }

// String renders the clause, e.g. (langs:"en" OR langs:"fr").
func (c Clause) String() string {
	parts := make([]string, len(c.terms))
	for i, t := range c.terms {
		parts[i] = t.String()
	}
	s := strings.Join(parts, " "+c.op.String()+" ")
	if c.grouped {
		return "(" + s + ")"
	}
	return s
}

// Expression is a conjunction of clauses. Because clauses hold only terms,
// an expression can express (A OR B) AND (C AND D) but never
// (A AND B) OR (C AND D); that shape needs separate expressions.
type Expression struct {
	clauses []Clause
}

// NewExpression creates an expression from clauses.
func NewExpression(clauses ...Clause) Expression {
	return Expression{clauses: clauses}
}

// Clauses returns the AND-joined clauses.
func (e Expression) Clauses() []Clause { return e.clauses }

// IsEmpty reports whether the expression has no clauses (match all).
func (e Expression) IsEmpty() bool { return len(e.clauses) == 0 }

// With returns a copy of e with c appended.
func (e Expression) With(c Clause) Expression {
	clauses := make([]Clause, 0, len(e.clauses)+1)
	clauses = append(clauses, e.clauses...)
	clauses = append(clauses, c)
	return Expression{clauses: clauses}
}

// String renders the expression as a filter string. The empty expression
// renders as "".
func (e Expression) String() string {
	parts := make([]string, len(e.clauses))
	for i, c := range e.clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}
