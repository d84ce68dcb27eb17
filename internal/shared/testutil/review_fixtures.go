package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"safetyreport/internal/config"
)

// ReviewRow is one case review inserted by CreateReviewDB.
// Questions not listed in Answers are stored as NULL.
type ReviewRow struct {
	ReviewDate string // YYYY-MM-DD
	Region     any
	Answers    map[string]any
}

// ReviewColumns returns the fixture table columns in definition order
func ReviewColumns() []string {
	columns := []string{"ID", config.DefaultDateColumn, config.DefaultRegionColumn, "Reviewer"}
	return append(columns, config.QuestionColumns...)
}

// CreateReviewDB creates a sqlite database holding the review table and
// returns its DSN. The file lives in the test's temp directory.
func CreateReviewDB(t *testing.T, rows []ReviewRow) string {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "reviews.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	columns := ReviewColumns()
	defs := make([]string, len(columns))
	for i, c := range columns {
		typ := "TEXT"
		switch c {
		case "ID":
			typ = "INTEGER PRIMARY KEY"
		case config.DefaultDateColumn:
			typ = "DATE"
		}
		defs[i] = fmt.Sprintf("%s %s", quote(c), typ)
	}
	_, err = db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", quote(config.DefaultTable), strings.Join(defs, ", ")))
	require.NoError(t, err)

	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
		marks[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(config.DefaultTable), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	for i, row := range rows {
		args := []any{i + 1, row.ReviewDate, row.Region, "reviewer"}
		for _, q := range config.QuestionColumns {
			args = append(args, row.Answers[q])
		}
		_, err := db.Exec(insert, args...)
		require.NoError(t, err)
	}

	return dsn
}

// SQLiteConfig returns a database configuration pointing at dsn
func SQLiteConfig(dsn string) config.DatabaseConfig {
	cfg := config.Default().Database
	cfg.Driver = "sqlite"
	cfg.DSN = dsn
	return cfg
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
