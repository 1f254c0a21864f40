package types

import (
	"fmt"
	"strings"
)

// Config holds runtime configuration combining flags, environment variables, and defaults
type Config struct {
	// Database connection
	ConnectionString string // PostgreSQL URI or key=value string, or a driver DSN
	Driver           string // "pgx" or "pq"

	// Splitting
	Dialect         string // "standard" or "postgres"
	Decompose       bool   // Rewrite composite ALTER TABLE statements
	ContinueOnError bool   // Keep executing after a failed statement
	CheckSyntax     bool   // Parse statements with PostgreSQL's parser before executing
	FixScripts      bool   // Rewrite composite ALTER TABLE statements in place before loading

	// Batch
	Parallelism int // Max concurrently processed files (1 = sequential)

	// Output
	Format  string // Report format for check/fix
	Output  string // Report destination, "-" for stdout
	Verbose bool   // Enable debug logging
}

// ConfigError describes an invalid configuration value
type ConfigError struct {
	Field      string
	Value      any
	Message    string
	Suggestion string
}

func (e *ConfigError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid %s: %s\nSuggestion: %s", e.Field, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for values no command can work with
func (c *Config) Validate() error {
	switch c.Driver {
	case "pgx", "pq":
	default:
		return &ConfigError{
			Field:      "driver",
			Value:      c.Driver,
			Message:    fmt.Sprintf("unsupported driver: %q", c.Driver),
			Suggestion: "Use 'pgx' (native PostgreSQL) or 'pq' (database/sql).",
		}
	}

	switch strings.ToLower(c.Dialect) {
	case "standard", "mysql", "mariadb", "postgres", "postgresql", "pg", "pgsql":
	default:
		return &ConfigError{
			Field:      "dialect",
			Value:      c.Dialect,
			Message:    fmt.Sprintf("unsupported dialect: %q", c.Dialect),
			Suggestion: "Use 'standard' for MySQL style dumps or 'postgres' for PostgreSQL scripts.",
		}
	}

	if c.CheckSyntax {
		switch strings.ToLower(c.Dialect) {
		case "postgres", "postgresql", "pg", "pgsql":
		default:
			return &ConfigError{
				Field:      "check-syntax",
				Value:      c.Dialect,
				Message:    fmt.Sprintf("syntax checking is not available for dialect %q", c.Dialect),
				Suggestion: "Use --dialect postgres or drop --check-syntax.",
			}
		}
	}

	if c.Parallelism < 1 || c.Parallelism > 100 {
		return &ConfigError{
			Field:      "parallel",
			Value:      c.Parallelism,
			Message:    fmt.Sprintf("invalid parallelism: %d", c.Parallelism),
			Suggestion: "Parallelism must be between 1 and 100.",
		}
	}

	switch c.Format {
	case "text", "json":
	default:
		return &ConfigError{
			Field:      "format",
			Value:      c.Format,
			Message:    fmt.Sprintf("unsupported format: %q", c.Format),
			Suggestion: "Use 'text' or 'json'.",
		}
	}

	if c.Output == "" {
		return &ConfigError{
			Field:      "output",
			Value:      c.Output,
			Message:    "output path is empty",
			Suggestion: "Use '-' to write the report to stdout.",
		}
	}

	return nil
}

// RequireConnection checks that a connection string is present
func (c *Config) RequireConnection() error {
	if strings.TrimSpace(c.ConnectionString) == "" {
		return &ConfigError{
			Field:      "connection",
			Message:    "no connection string given",
			Suggestion: "Pass --connection or set DATABASE_URL (PG* environment variables are honoured by the pgx driver).",
		}
	}
	return nil
}
