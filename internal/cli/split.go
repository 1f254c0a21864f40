package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/cybertec-postgresql/sqlsplit/internal/database"
	"github.com/cybertec-postgresql/sqlsplit/internal/loader"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/parser"
)

// Split prints the statements of the script at path to w, one per line group,
// exactly as they would be sent to the database by Load.
func Split(ctx context.Context, config *Config, path string, w io.Writer) (int, error) {
	dialect, err := parser.ParseDialect(config.Dialect)
	if err != nil {
		return 0, err
	}

	l := loader.New(database.NewPrinter(w), dialect,
		loader.WithLogger(logger.Default()),
		loader.WithDecompose(config.Decompose),
		loader.WithSyntaxCheck(config.CheckSyntax),
	)

	count, err := l.LoadFile(ctx, path)
	if err != nil {
		return count, fmt.Errorf("failed to split %s: %w", path, err)
	}
	logger.Debug("%s: %d statements", path, count)
	return count, nil
}
