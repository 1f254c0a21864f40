package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/cybertec-postgresql/sqlsplit/internal/cli"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/parser"
)

const version = "1.0.0"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "sqlsplit",
		Usage:   "Split SQL scripts into statements and load them into a database",
		Version: version,
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable debug output",
				Sources: urfavecli.EnvVars("SQLSPLIT_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			logger.SetVerbose(cmd.Bool("verbose"))
			return ctx, nil
		},
		Commands: []*urfavecli.Command{
			{
				Name:      "split",
				Usage:     "Print the statements of a script as they would be executed",
				ArgsUsage: "FILE",
				Action:    splitCommand,
				Flags:     append(splitFlags(), decomposeFlag()),
			},
			{
				Name:      "load",
				Usage:     "Execute scripts statement by statement",
				ArgsUsage: "PATH",
				Action:    loadCommand(cli.Load),
				Flags:     append(connectionFlags(), append(splitFlags(), decomposeFlag(), continueFlag(), fixScriptsFlag())...),
			},
			{
				Name:      "verify",
				Usage:     "Load scripts into a temporary database and drop it afterwards",
				ArgsUsage: "PATH",
				Action:    loadCommand(cli.Verify),
				Flags:     append(connectionFlags(), append(splitFlags(), decomposeFlag(), continueFlag(), fixScriptsFlag())...),
			},
			{
				Name:      "check",
				Usage:     "Report ALTER TABLE statements that add columns and a foreign key at once",
				ArgsUsage: "PATH",
				Action:    batchCommand(cli.Check),
				Flags:     reportFlags(),
			},
			{
				Name:      "fix",
				Usage:     "Rewrite ALTER TABLE statements that add columns and a foreign key at once",
				ArgsUsage: "PATH",
				Action:    batchCommand(cli.Fix),
				Flags:     reportFlags(),
			},
		},
	}
}

func connectionFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "connection",
			Aliases: []string{"c"},
			Usage:   "Connection string (URI or key=value format). Supports standard PG* environment variables.",
			Sources: urfavecli.EnvVars("SQLSPLIT_CONNECTION", "DATABASE_URL"),
		},
		&urfavecli.StringFlag{
			Name:    "driver",
			Usage:   "Database driver (pgx or pq)",
			Value:   cli.DefaultConfig.Driver,
			Sources: urfavecli.EnvVars("SQLSPLIT_DRIVER"),
		},
	}
}

func splitFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "dialect",
			Aliases: []string{"d"},
			Usage:   fmt.Sprintf("Quoting and comment rules %v", parser.SupportedDialects()),
			Value:   cli.DefaultConfig.Dialect,
			Sources: urfavecli.EnvVars("SQLSPLIT_DIALECT"),
		},
		&urfavecli.BoolFlag{
			Name:    "check-syntax",
			Usage:   "Parse every statement with PostgreSQL's parser first (postgres dialect only)",
			Sources: urfavecli.EnvVars("SQLSPLIT_CHECK_SYNTAX"),
		},
	}
}

func decomposeFlag() urfavecli.Flag {
	return &urfavecli.BoolFlag{
		Name:    "decompose",
		Usage:   "Split ALTER TABLE statements so foreign keys are added last",
		Value:   cli.DefaultConfig.Decompose,
		Sources: urfavecli.EnvVars("SQLSPLIT_DECOMPOSE"),
	}
}

func continueFlag() urfavecli.Flag {
	return &urfavecli.BoolFlag{
		Name:    "continue-on-error",
		Usage:   "Keep executing after a failed statement and report all failures",
		Sources: urfavecli.EnvVars("SQLSPLIT_CONTINUE_ON_ERROR"),
	}
}

func fixScriptsFlag() urfavecli.Flag {
	return &urfavecli.BoolFlag{
		Name:  "fix-scripts",
		Usage: "Rewrite composite ALTER TABLE statements in the script files before loading them",
	}
}

func reportFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.IntFlag{
			Name:    "parallel",
			Usage:   "Maximum concurrently processed files (1 = sequential)",
			Value:   cli.DefaultConfig.Parallelism,
			Sources: urfavecli.EnvVars("SQLSPLIT_PARALLEL"),
		},
		&urfavecli.StringFlag{
			Name:  "format",
			Usage: "Output format (text or json)",
			Value: cli.DefaultConfig.Format,
		},
		&urfavecli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (use - for stdout)",
			Value:   cli.DefaultConfig.Output,
		},
	}
}

// configFrom builds a validated configuration from the command's flags
func configFrom(cmd *urfavecli.Command) (*cli.Config, error) {
	config := cli.NewConfig()

	cli.ApplyFlagsToConfig(config, cli.Flags{
		Connection:      cmd.String("connection"),
		Driver:          cmd.String("driver"),
		Dialect:         cmd.String("dialect"),
		Decompose:       cmd.Bool("decompose"),
		ContinueOnError: cmd.Bool("continue-on-error"),
		CheckSyntax:     cmd.Bool("check-syntax"),
		FixScripts:      cmd.Bool("fix-scripts"),
		Parallel:        cmd.Int("parallel"),
		Format:          cmd.String("format"),
		Output:          cmd.String("output"),
		Verbose:         cmd.Bool("verbose"),
	})

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// pathArg returns the first argument, or def when none is given
func pathArg(cmd *urfavecli.Command, def string) (string, error) {
	path := cmd.Args().First()
	if path == "" {
		if def == "" {
			return "", fmt.Errorf("missing %s argument", cmd.ArgsUsage)
		}
		return def, nil
	}
	return path, nil
}

// splitCommand handles the 'sqlsplit split' command
func splitCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config, err := configFrom(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	path, err := pathArg(cmd, "")
	if err != nil {
		return err
	}

	_, err = cli.Split(ctx, config, path, os.Stdout)
	return err
}

// loadCommand handles 'sqlsplit load' and 'sqlsplit verify'
func loadCommand(run func(context.Context, *cli.Config, string) (int, error)) urfavecli.ActionFunc {
	return func(ctx context.Context, cmd *urfavecli.Command) error {
		config, err := configFrom(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		path, err := pathArg(cmd, "")
		if err != nil {
			return err
		}

		count, err := run(ctx, config, path)
		if err != nil {
			return err
		}
		logger.Info("%d statements executed", count)
		return nil
	}
}

// batchCommand handles 'sqlsplit check' and 'sqlsplit fix'
func batchCommand(run func(context.Context, *cli.Config, afero.Fs, string) (int, error)) urfavecli.ActionFunc {
	return func(ctx context.Context, cmd *urfavecli.Command) error {
		config, err := configFrom(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		path, err := pathArg(cmd, ".")
		if err != nil {
			return err
		}

		exitCode, err := run(ctx, config, afero.NewOsFs(), path)
		if err != nil {
			return err
		}
		if exitCode != 0 {
			os.Exit(exitCode)
		}
		return nil
	}
}
