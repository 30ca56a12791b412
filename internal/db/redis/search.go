package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/tutorbook/tutorbook/internal/db"
	"github.com/tutorbook/tutorbook/internal/domain/search/filter"
)

// SearchFilter runs a filter-only FT.SEARCH over a JSON index. Optional
// filters are ignored: RediSearch has no equivalent of ranking-only hints,
// and results keep index order.
func (s *Store) SearchFilter(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.HitsPerPage <= 0 {
		return nil, fmt.Errorf("hitsPerPage must be positive")
	}
	if q.Page < 0 {
		return nil, fmt.Errorf("page must not be negative")
	}

	args := []string{
		q.IndexName, buildQuery(q.Filter),
		"LIMIT", strconv.Itoa(q.Offset()), strconv.Itoa(q.HitsPerPage),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw)
}

// --- Result parsing ---

// parseSearchResult reads [total, key1, fields1, key2, fields2, ...]. For JSON
// indexes each fields array is ["$", "<document>"].
func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		doc, ok := parseFieldPairs(fields)["$"]
		if !ok {
			continue
		}

		entries = append(entries, db.SearchEntry{Key: key, Document: []byte(doc)})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery renders an expression in the RediSearch query dialect. Clauses
// are intersected by juxtaposition, OR terms are joined with "|", and the
// empty expression matches every document.
func buildQuery(expr filter.Expression) string {
	if expr.IsEmpty() {
		return "*"
	}

	parts := make([]string, 0, len(expr.Clauses()))
	for _, c := range expr.Clauses() {
		parts = append(parts, buildClause(c))
	}
	return strings.Join(parts, " ")
}

func buildClause(c filter.Clause) string {
	terms := c.Terms()
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, buildTerm(t))
	}

	sep := " "
	if c.Op() == filter.Or {
		sep = " | "
	}
	s := strings.Join(parts, sep)
	if len(parts) > 1 {
		return "(" + s + ")"
	}
	return s
}

func buildTerm(t filter.Term) string {
	field := "@" + db.FieldAlias(t.Key())
	switch {
	case t.IsBool():
		return field + ":{" + strconv.FormatBool(t.Bool()) + "}"
	case t.IsRange():
		return field + ":" + buildRange(t.Comparison(), t.Bound())
	default:
		return field + ":{" + tagEscaper.Replace(t.Match()) + "}"
	}
}

func buildRange(cmp filter.Comparison, bound int64) string {
	n := strconv.FormatInt(bound, 10)
	if cmp == filter.LTE {
		return "[-inf " + n + "]"
	}
	return "[" + n + " +inf]"
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)
