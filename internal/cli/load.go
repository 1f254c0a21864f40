package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/cybertec-postgresql/sqlsplit/internal/database"
	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/fixer"
	"github.com/cybertec-postgresql/sqlsplit/internal/loader"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/parser"
)

// opener hands out an Executor bound to one connection for the length of a
// file, and the function releasing it
type opener func(ctx context.Context) (database.Executor, func(), error)

// Load executes every script under path against the configured database.
// Files run one after another in path order so later scripts may rely on
// objects created by earlier ones.
func Load(ctx context.Context, config *Config, path string) (int, error) {
	if err := config.RequireConnection(); err != nil {
		return 0, err
	}

	switch config.Driver {
	case "pq":
		exec, err := database.OpenSQL(ctx, config.Driver, config.ConnectionString)
		if err != nil {
			return 0, fmt.Errorf("database connection failed: %w", err)
		}
		defer exec.Close()

		return loadPath(ctx, config, path, func(ctx context.Context) (database.Executor, func(), error) {
			s, err := exec.Session(ctx)
			if err != nil {
				return nil, nil, err
			}
			return s, func() { _ = s.Close() }, nil
		})
	default:
		pool, err := database.NewPool(ctx, config)
		if err != nil {
			return 0, fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		return loadPath(ctx, config, path, poolOpener(pool))
	}
}

// Verify loads every script under path into a scratch database which is
// dropped afterwards, leaving the target database untouched.
func Verify(ctx context.Context, config *Config, path string) (int, error) {
	if err := config.RequireConnection(); err != nil {
		return 0, err
	}

	pool, err := database.NewPool(ctx, config)
	if err != nil {
		return 0, fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	tempPool, err := database.CreateTempDatabase(ctx, pool)
	if err != nil {
		return 0, err
	}
	logger.Debug("Created temp database: %s", tempPool.Pool.Config().ConnConfig.Database)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.DestroyTempDatabase(cleanupCtx, pool, tempPool); err != nil {
			logger.Warn("failed to drop temp database: %v", err)
		}
	}()

	return loadPath(ctx, config, path, poolOpener(tempPool))
}

func poolOpener(pool *database.Pool) opener {
	return func(ctx context.Context) (database.Executor, func(), error) {
		s, err := pool.Session(ctx)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}

func loadPath(ctx context.Context, config *Config, path string, open opener) (int, error) {
	dialect, err := parser.ParseDialect(config.Dialect)
	if err != nil {
		return 0, err
	}

	fs := afero.NewOsFs()
	if config.FixScripts {
		fixed, err := fixer.New(fs).FixInFolder(path)
		if err != nil {
			return 0, fmt.Errorf("failed to fix scripts: %w", err)
		}
		for _, file := range fixed {
			logger.Info("%s: rewrote composite ALTER TABLE statements", file.RelativePath)
		}
	}

	files, err := discovery.Discover(fs, path)
	if err != nil {
		return 0, fmt.Errorf("failed to discover scripts: %w", err)
	}
	if len(files) == 0 {
		logger.Info("No SQL scripts found in %s", path)
		return 0, nil
	}

	total := 0
	var failures []error
	for _, file := range files {
		exec, release, err := open(ctx)
		if err != nil {
			return total, err
		}

		l := loader.New(exec, dialect,
			loader.WithLogger(logger.Default()),
			loader.WithDecompose(config.Decompose),
			loader.WithContinueOnError(config.ContinueOnError),
			loader.WithSyntaxCheck(config.CheckSyntax),
		)
		start := time.Now()
		count, err := l.LoadFile(ctx, file.Path)
		release()
		total += count
		if err != nil {
			if !config.ContinueOnError {
				return total, err
			}
			failures = append(failures, err)
			continue
		}
		logger.Info("%s: %d statements in %v", file, count, time.Since(start).Round(time.Millisecond))
	}
	return total, errors.Join(failures...)
}
