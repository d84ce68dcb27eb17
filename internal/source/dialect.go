package source

import (
	"fmt"
	"strings"
	"time"

	apperrors "safetyreport/internal/errors"
)

// dialect captures the differences between the supported drivers
type dialect struct {
	driver string
	// placeholder returns the bind marker for the n-th argument, 1-based
	placeholder func(n int) string
	// dateExpr reduces a quoted column to its calendar date
	dateExpr func(column string) string
	// bindDate converts a bound date into a driver argument
	bindDate func(t time.Time) any
}

var dialects = map[string]dialect{
	"pgx": {
		driver:      "pgx",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		dateExpr:    func(column string) string { return "CAST(" + column + " AS date)" },
		bindDate:    func(t time.Time) any { return dateOnly(t) },
	},
	"sqlite": {
		driver:      "sqlite",
		placeholder: func(int) string { return "?" },
		dateExpr:    func(column string) string { return "date(" + column + ")" },
		bindDate:    func(t time.Time) any { return t.Format("2006-01-02") },
	},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, apperrors.NewConfigError(fmt.Sprintf("unsupported database driver %q", driver), nil)
	}
	return d, nil
}

// rangeQuery builds the inclusive date-ranged select over table
func (d dialect) rangeQuery(table, dateColumn string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE %s BETWEEN %s AND %s",
		quoteIdent(table),
		d.dateExpr(quoteIdent(dateColumn)),
		d.placeholder(1),
		d.placeholder(2),
	)
}

// quoteIdent quotes an SQL identifier. Column names such as "3Review Date"
// start with a digit and contain spaces.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
