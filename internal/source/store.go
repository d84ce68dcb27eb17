package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"safetyreport/internal/config"
	apperrors "safetyreport/internal/errors"
	"safetyreport/internal/infrastructure"
	"safetyreport/pkg/contracts/domain"
)

// Store reads review records from the configured database
type Store struct {
	db      *sql.DB
	dialect dialect
	cfg     config.DatabaseConfig
	logger  *slog.Logger
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, apperrors.NewConfigError("database DSN is empty", nil)
	}

	db, err := sql.Open(d.driver, cfg.DSN)
	if err != nil {
		return nil, apperrors.NewDatabaseError("open database", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, apperrors.NewDatabaseError("connect to database", err).
			WithContext("driver", cfg.Driver)
	}

	return &Store{
		db:      db,
		dialect: d,
		cfg:     cfg,
		logger:  infrastructure.WithComponent(nil, "source"),
	}, nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// FetchRange returns every record whose review date falls within [from, to].
// Columns keep the order of the table definition.
func (s *Store) FetchRange(ctx context.Context, from, to time.Time) (*domain.RecordSet, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("date range start %s is after end %s",
			from.Format(config.DateLayout), to.Format(config.DateLayout)))
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	query := s.dialect.rangeQuery(s.cfg.Table, s.cfg.DateColumn)
	s.logger.DebugContext(ctx, "Fetching review records",
		slog.String("query", query),
		slog.String("from", from.Format("2006-01-02")),
		slog.String("to", to.Format("2006-01-02")))

	rows, err := s.db.QueryContext(queryCtx, query, s.dialect.bindDate(from), s.dialect.bindDate(to))
	if err != nil {
		return nil, apperrors.NewDatabaseError("query review records", err).
			WithContext("table", s.cfg.Table)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewDatabaseError("read result columns", err)
	}

	rs := domain.NewRecordSet(columns, from, to)
	if err := checkColumns(rs, s.cfg.RegionColumn); err != nil {
		return nil, err
	}

	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewDatabaseError("scan review record", err).
				WithContext("row", rs.Len()+1)
		}
		values := make([]domain.Value, len(raw))
		for i, v := range raw {
			values[i] = toValue(v)
		}
		rs.Append(values)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate review records", err)
	}

	s.logger.InfoContext(ctx, "Review records fetched",
		slog.Int("records", rs.Len()),
		slog.Int("columns", len(columns)))

	return rs, nil
}

// checkColumns makes sure the result carries everything the report reads
func checkColumns(rs *domain.RecordSet, regionColumn string) error {
	if rs.ColumnIndex(regionColumn) < 0 {
		return apperrors.NewValidationError(fmt.Sprintf("region column %q is missing from the result", regionColumn))
	}
	if missing := rs.MissingColumns(config.QuestionColumns); len(missing) > 0 {
		return apperrors.NewValidationError(fmt.Sprintf("question columns missing from the result: %s",
			strings.Join(missing, ", ")))
	}
	return nil
}

// toValue converts a scanned driver value into a typed cell
func toValue(v any) domain.Value {
	switch val := v.(type) {
	case nil:
		return domain.NullValue()
	case []byte:
		return domain.StringValue(string(val))
	case string:
		return domain.StringValue(val)
	case bool:
		return domain.BoolValue(val)
	case int64:
		return domain.IntValue(val)
	case int32:
		return domain.IntValue(int64(val))
	case int:
		return domain.IntValue(int64(val))
	case float64:
		return domain.FloatValue(val)
	case float32:
		return domain.FloatValue(float64(val))
	case time.Time:
		return domain.TimeValue(val)
	default:
		return domain.StringValue(fmt.Sprint(val))
	}
}
