package cli

import (
	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
)

// Config is an alias for the shared Config type
type Config = types.Config

// ConfigError is an alias for the shared ConfigError type
type ConfigError = types.ConfigError

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	ConnectionString: "",
	Driver:           "pgx",
	Dialect:          "standard",
	Decompose:        true,
	ContinueOnError:  false,
	Parallelism:      1,
	Format:           "text",
	Output:           "-",
	Verbose:          false,
}

// Flags carries command-line values. Zero values leave the config untouched,
// except for the booleans which always apply.
type Flags struct {
	Connection      string
	Driver          string
	Dialect         string
	Decompose       bool
	ContinueOnError bool
	CheckSyntax     bool
	FixScripts      bool
	Parallel        int
	Format          string
	Output          string
	Verbose         bool
}

// NewConfig returns a copy of DefaultConfig
func NewConfig() *Config {
	c := DefaultConfig
	return &c
}

// ApplyFlagsToConfig applies command-line flag values to configuration
func ApplyFlagsToConfig(c *Config, f Flags) {
	if f.Connection != "" {
		c.ConnectionString = f.Connection
	}
	if f.Driver != "" {
		c.Driver = f.Driver
	}
	if f.Dialect != "" {
		c.Dialect = f.Dialect
	}
	if f.Parallel != 0 {
		c.Parallelism = f.Parallel
	}
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.Output != "" {
		c.Output = f.Output
	}
	c.Decompose = f.Decompose
	c.ContinueOnError = f.ContinueOnError
	c.CheckSyntax = f.CheckSyntax
	c.FixScripts = f.FixScripts
	c.Verbose = f.Verbose
}
