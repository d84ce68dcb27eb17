// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a log-capturing slog handler and a
// sqlite review database fixture for tests of the source and operations
// packages.
package shared
