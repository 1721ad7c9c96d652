package store

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates WHERE conditions with positional args, keeping the
// $n placeholders consistent when callers append LIMIT/OFFSET args afterward.
type WhereBuilder struct {
	conditions []string
	args       []interface{}
	argIndex   int
}

// NewWhereBuilder creates an empty builder. Placeholders start at $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends an equality condition. Nil and empty-string values are skipped
// so optional filters can be passed through unconditionally.
func (wb *WhereBuilder) Add(column string, value interface{}) {
	if value == nil {
		return
	}
	if s, ok := value.(string); ok && s == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", quoteIdentifier(column), wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddSearch appends a case-insensitive substring match across the given text
// columns, all sharing one placeholder. Empty queries are skipped.
func (wb *WhereBuilder) AddSearch(query string, columns []string) {
	if query == "" || len(columns) == 0 {
		return
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", quoteIdentifier(col), wb.argIndex)
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
	wb.args = append(wb.args, "%"+query+"%")
	wb.argIndex++
}

// Build returns the WHERE clause (with leading space) and its args, or empty
// values when no conditions were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the placeholder number the next added arg would get.
// Used when appending LIMIT/OFFSET after Build.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
