package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. SAFETY_DATABASE_DSN
const EnvPrefix = "SAFETY"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DatabaseConfig describes where the review records live
type DatabaseConfig struct {
	Driver         string        `yaml:"driver" envconfig:"DRIVER" validate:"required,oneof=pgx sqlite"`
	DSN            string        `yaml:"dsn" envconfig:"DSN"`
	Table          string        `yaml:"table" envconfig:"TABLE" validate:"required"`
	DateColumn     string        `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	RegionColumn   string        `yaml:"region_column" envconfig:"REGION_COLUMN" validate:"required"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT" validate:"gt=0"`
	QueryTimeout   time.Duration `yaml:"query_timeout" envconfig:"QUERY_TIMEOUT" validate:"gt=0"`
}

// ReportConfig controls workbook layout and aggregation
type ReportConfig struct {
	OutputPath   string `yaml:"output_path" envconfig:"OUTPUT_PATH"`
	BlockSpacing int    `yaml:"block_spacing" envconfig:"BLOCK_SPACING" validate:"min=8,max=100"`
	Workers      int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	PrintSummary bool   `yaml:"print_summary" envconfig:"PRINT_SUMMARY"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout file"`
	TraceFile     string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile   string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// PathsConfig overrides the executable-relative directories
type PathsConfig struct {
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Load builds the configuration from defaults, an optional YAML file and
// SAFETY_* environment variables, in increasing order of precedence.
// An empty path searches the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a default tag are only touched when the variable is set,
	// so file values survive unless explicitly overridden.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalizes logging settings
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// Logs are always JSON
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/safety-report.log"
	}
	if c.Telemetry.TraceExporter == "file" && c.Telemetry.TraceFile == "" {
		return fmt.Errorf("trace file is required when trace exporter is file")
	}

	return nil
}

// getConfigFilePath returns the first config file found in common locations
func getConfigFilePath() string {
	locations := []string{
		"safety-report.yaml",
		"configs/safety-report.yaml",
		"../configs/safety-report.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "",
		},
		Database: DatabaseConfig{
			Driver:         "pgx",
			Table:          DefaultTable,
			DateColumn:     DefaultDateColumn,
			RegionColumn:   DefaultRegionColumn,
			ConnectTimeout: 15 * time.Second,
			QueryTimeout:   2 * time.Minute,
		},
		Report: ReportConfig{
			BlockSpacing: DefaultBlockSpacing,
			Workers:      4,
			PrintSummary: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			Environment:   "production",
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
	}
}
