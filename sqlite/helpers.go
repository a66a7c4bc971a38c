package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// formatTime renders t the way timestamps are stored.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a stored timestamp; column names the field in errors.
func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", column, value, err)
	}
	return t, nil
}

// where collects filter conditions joined with AND.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, arg)
}

// writeTo appends the WHERE clause, if any conditions were added.
func (w *where) writeTo(query *strings.Builder) {
	if len(w.conds) == 0 {
		return
	}
	query.WriteString(" WHERE ")
	query.WriteString(strings.Join(w.conds, " AND "))
}

// page appends LIMIT and OFFSET for positive values. SQLite requires a LIMIT
// before OFFSET; -1 means no limit.
func page(query *strings.Builder, args []any, limit, offset int) []any {
	if limit <= 0 && offset <= 0 {
		return args
	}
	if limit <= 0 {
		limit = -1
	}
	query.WriteString(" LIMIT ?")
	args = append(args, limit)
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, offset)
	}
	return args
}
