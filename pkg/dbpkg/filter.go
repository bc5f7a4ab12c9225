package dbpkg

import (
	"fmt"
	"strings"
)

// Filter builds the tail of a SELECT query: WHERE conditions joined with AND,
// an ORDER BY clause and LIMIT/OFFSET, keeping positional arguments in order.
//
// Column names must come from a fixed allowlist, never from user input.
type Filter struct {
	conds []string
	args  []any
}

// Eq adds the condition column = value.
func (f *Filter) Eq(column string, value any) {
	f.args = append(f.args, value)
	f.conds = append(f.conds, fmt.Sprintf("%s = $%d", column, len(f.args)))
}

// Where returns the WHERE clause or an empty string if there are no conditions.
func (f *Filter) Where() string {
	if len(f.conds) == 0 {
		return ""
	}

	return "WHERE " + strings.Join(f.conds, " AND ")
}

// OrderBy returns ORDER BY clause for the column with tiebreak as a secondary ascending key.
func (f *Filter) OrderBy(column string, desc bool, tiebreak string) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	if column == tiebreak {
		return fmt.Sprintf("ORDER BY %s %s", column, dir)
	}

	return fmt.Sprintf("ORDER BY %s %s, %s ASC", column, dir, tiebreak)
}

// Page returns LIMIT and OFFSET clause.
func (f *Filter) Page(limit, offset int32) string {
	f.args = append(f.args, limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(f.args)-1, len(f.args))
}

// Args returns the positional arguments collected so far.
func (f *Filter) Args() []any {
	return f.args
}
