package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"safetyreport/internal/config"
	apperrors "safetyreport/internal/errors"
)

// FileValidator checks the files a report run reads and writes
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError(fmt.Sprintf("file %s", path))
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDatabaseFile checks that a file-based DSN points at an existing
// database. The sqlite driver would otherwise create an empty one.
func (v *FileValidator) ValidateDatabaseFile(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return apperrors.NewValidationError("database file path is empty")
	}
	return v.ValidateFile(path)
}

// ValidateOutputFile checks the workbook path and prepares its directory
func (v *FileValidator) ValidateOutputFile(path string) error {
	if !config.IsWorkbookPath(path) {
		v.logger.Error("Output file is not an xlsx workbook",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return apperrors.NewValidationError(fmt.Sprintf("output file %s must have the %s extension", path, config.WorkbookExt))
	}

	// Excel's lock files
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewValidationError(fmt.Sprintf("output file %s is a temporary Excel file", path))
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apperrors.NewValidationError(fmt.Sprintf("output path %s is a directory", path))
	}

	return v.ValidateOutputDirectory(filepath.Dir(path))
}
