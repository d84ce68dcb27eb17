// Package config provides centralized configuration for the safety report tool.
// It loads configuration from multiple sources, validates it, and resolves the
// directories the tool writes to.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SAFETY_* for namespacing:
//
//	SAFETY_DATABASE_DRIVER=pgx
//	SAFETY_DATABASE_DSN=postgres://reviewer@db/qa
//	SAFETY_DATABASE_TABLE=Test_table
//	SAFETY_LOGGING_LEVEL=info
//	SAFETY_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/safety_report.prom
//
// # Question Catalog
//
// The reviewed question columns, the safety questions broken down by region and
// the fixed region list live in constants.go. They describe one schema and one
// report layout and are not configurable.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, _ := config.GetPaths()
//	paths.Apply(cfg.Paths)
package config
