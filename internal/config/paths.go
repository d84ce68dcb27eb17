package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WorkbookExt is the extension every report workbook carries
const WorkbookExt = ".xlsx"

// IsWorkbookPath reports whether path ends in WorkbookExt, ignoring case
func IsWorkbookPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), WorkbookExt)
}

// Paths contains all the application paths
type Paths struct {
	ExecutableDir string
	ReportsDir    string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths lays out the directory tree under base:
//
//	base/
//	  ├── reports/   (generated workbooks)
//	  └── logs/      (application logs, traces, metrics)
func NewPaths(base string) *Paths {
	return &Paths{
		ExecutableDir: base,
		ReportsDir:    filepath.Join(base, "reports"),
		LogsDir:       filepath.Join(base, "logs"),
	}
}

// Apply replaces directories with configured overrides
func (p *Paths) Apply(cfg PathsConfig) *Paths {
	if cfg.ReportsDir != "" {
		p.ReportsDir = p.resolve(cfg.ReportsDir)
	}
	if cfg.LogsDir != "" {
		p.LogsDir = p.resolve(cfg.LogsDir)
	}
	return p
}

func (p *Paths) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.ExecutableDir, dir)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// DefaultReportPath names the workbook after the reviewed date range,
// e.g. "Safety Assessment 2020-01-01 to 2020-03-31.xlsx"
func (p *Paths) DefaultReportPath(from, to time.Time) string {
	name := fmt.Sprintf("Safety Assessment %s to %s%s", from.Format("2006-01-02"), to.Format("2006-01-02"), WorkbookExt)
	return p.GetReportPath(name)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		))
}
