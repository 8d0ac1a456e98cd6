package query

import (
	"strconv"
	"strings"
)

// Where accumulates AND-ed predicates with PostgreSQL positional arguments.
// Clauses are written with "?" markers which are numbered as they are added.
type Where struct {
	clauses []string
	args    []any
}

// Add appends a predicate. Each "?" in clause consumes one of args.
func (w *Where) Add(clause string, args ...any) {
	var b strings.Builder
	i := 0
	for _, r := range clause {
		if r == '?' && i < len(args) {
			b.WriteString(w.Arg(args[i]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	w.clauses = append(w.clauses, b.String())
}

// Arg registers a value and returns its placeholder, for use outside the
// WHERE clause (ORDER BY expressions, LIMIT, OFFSET).
func (w *Where) Arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

// SQL renders "WHERE a AND b", or "" when there are no predicates.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns the positional arguments in placeholder order.
func (w *Where) Args() []any {
	return w.args
}

// Empty reports whether no predicates were added.
func (w *Where) Empty() bool {
	return len(w.clauses) == 0
}

// Clone copies the builder so a count query and a page query can diverge.
func (w *Where) Clone() *Where {
	return &Where{
		clauses: append([]string(nil), w.clauses...),
		args:    append([]any(nil), w.args...),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains wraps s for a case-insensitive substring ILIKE match.
func Contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
