package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "safety-report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "pgx", cfg.Database.Driver)
				assert.Equal(t, DefaultTable, cfg.Database.Table)
				assert.Equal(t, DefaultDateColumn, cfg.Database.DateColumn)
				assert.Equal(t, DefaultRegionColumn, cfg.Database.RegionColumn)
				assert.Equal(t, 15*time.Second, cfg.Database.ConnectTimeout)
				assert.Equal(t, DefaultBlockSpacing, cfg.Report.BlockSpacing)
				assert.Equal(t, 4, cfg.Report.Workers)
				assert.True(t, cfg.Report.PrintSummary)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "environment variables",
			env: map[string]string{
				"SAFETY_DATABASE_DRIVER":        "sqlite",
				"SAFETY_DATABASE_DSN":           "file:reviews.db",
				"SAFETY_DATABASE_QUERY_TIMEOUT": "30s",
				"SAFETY_LOGGING_LEVEL":          "debug",
				"SAFETY_REPORT_WORKERS":         "2",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sqlite", cfg.Database.Driver)
				assert.Equal(t, "file:reviews.db", cfg.Database.DSN)
				assert.Equal(t, 30*time.Second, cfg.Database.QueryTimeout)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 2, cfg.Report.Workers)
			},
		},
		{
			name: "file values overlay defaults",
			file: `
database:
  driver: sqlite
  table: reviews
  region_column: Region
report:
  block_spacing: 12
logging:
  output: both
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sqlite", cfg.Database.Driver)
				assert.Equal(t, "reviews", cfg.Database.Table)
				assert.Equal(t, "Region", cfg.Database.RegionColumn)
				assert.Equal(t, DefaultDateColumn, cfg.Database.DateColumn)
				assert.Equal(t, 12, cfg.Report.BlockSpacing)
				assert.Equal(t, "logs/safety-report.log", cfg.Logging.FilePath)
			},
		},
		{
			name: "environment wins over file",
			file: `
database:
  driver: sqlite
  table: reviews
`,
			env: map[string]string{"SAFETY_DATABASE_TABLE": "quarterly_reviews"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sqlite", cfg.Database.Driver)
				assert.Equal(t, "quarterly_reviews", cfg.Database.Table)
			},
		},
		{
			name:    "unsupported driver",
			env:     map[string]string{"SAFETY_DATABASE_DRIVER": "odbc"},
			wantErr: true,
		},
		{
			name:    "block spacing too small",
			file:    "report:\n  block_spacing: 3\n",
			wantErr: true,
		},
		{
			name:    "file trace exporter without file",
			env:     map[string]string{"SAFETY_TELEMETRY_TRACE_EXPORTER": "file"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "database: [driver",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "file"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NotEmpty(t, cfg.Logging.FilePath)
}

func TestQuestionCatalog(t *testing.T) {
	assert.Len(t, QuestionColumns, 54)
	assert.Len(t, SafetyQuestions, 10)

	seen := make(map[string]bool, len(QuestionColumns))
	for _, q := range QuestionColumns {
		assert.False(t, seen[q], "duplicate question %s", q)
		seen[q] = true
	}
	for _, sq := range SafetyQuestions {
		assert.True(t, seen[sq.Column], "safety question %s must be a reviewed question", sq.Column)
		assert.NotEmpty(t, sq.Heading)
	}
}

func TestLoad_FindsConfigInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "safety-report.yaml"),
		[]byte("report:\n  print_summary: false\n"), 0644))
	t.Chdir(dir)

	assert.Equal(t, filepath.Join("configs", "safety-report.yaml"), getConfigFilePath())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Report.PrintSummary)
}
