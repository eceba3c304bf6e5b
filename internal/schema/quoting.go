package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

func quoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// quoteValue renders a Go value as a SQL literal. String escaping doubles
// single quotes; it does not guard against every injection vector, since
// the output is operator-reviewed DDL rather than user-facing queries.
func quoteValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case time.Time:
		return "'" + v.UTC().Format(time.RFC3339Nano) + "'"
	case fmt.Stringer:
		return "'" + strings.ReplaceAll(v.String(), "'", "''") + "'"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinColumnClauses(quote func(string) string, columns []dbshift.ColumnClause) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = quote(c.Name) + " " + c.Definition
	}
	return strings.Join(parts, ", ")
}

func joinQuoted(quote func(string) string, names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = quote(n)
	}
	return strings.Join(parts, ", ")
}
