// Package source extracts case-review records for a date range.
//
// Two database/sql drivers are supported: pgx for PostgreSQL and the pure Go
// modernc.org/sqlite driver for local extracts. Identifiers are always quoted
// because the review schema uses names like "3Review Date".
package source
