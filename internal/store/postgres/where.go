package postgres

import (
	"fmt"
	"strings"
)

// WhereBuilder assembles a parameterized WHERE clause. Placeholders are
// numbered from $1 in the order conditions are added.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// AddSearch matches rows where any of cols contains term, ignoring case.
// LIKE wildcards in term match literally. An empty term adds nothing.
func (wb *WhereBuilder) AddSearch(term string, cols ...string) {
	if term == "" || len(cols) == 0 {
		return
	}

	placeholder := fmt.Sprintf("$%d", wb.argIndex)
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s ILIKE %s", quoteIdentifier(col), placeholder)
	}

	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
	wb.args = append(wb.args, "%"+escapeLike(term)+"%")
	wb.argIndex++
}

// Build returns the clause with a leading space, or "" when there are no
// conditions, together with its arguments.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex is the number of the next free placeholder.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes the LIKE metacharacters using the default backslash
// escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
