// Package loader feeds a SQL script to a database one statement at a time.
//
// A script is split with the dialect's quoting rules, each raw statement is
// optionally decomposed so that foreign keys are added after the columns they
// reference, and the resulting statements are executed in order.
package loader

import (
	"context"
	stderrors "errors"

	"github.com/cybertec-postgresql/sqlsplit/internal/database"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/parser"
)

// Loader executes scripts through an Executor
type Loader struct {
	exec            database.Executor
	dialect         parser.Dialect
	log             *logger.Logger
	decompose       bool
	continueOnError bool
	checkSyntax     bool
}

// Option configures a Loader
type Option func(*Loader)

// WithLogger sets the logger used for progress and decomposition warnings
func WithLogger(log *logger.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithDecompose enables or disables ALTER TABLE decomposition (enabled by default)
func WithDecompose(enabled bool) Option {
	return func(l *Loader) { l.decompose = enabled }
}

// WithContinueOnError keeps executing after a failed statement. All failures
// are returned together once the script is done.
func WithContinueOnError(enabled bool) Option {
	return func(l *Loader) { l.continueOnError = enabled }
}

// WithSyntaxCheck parses every statement with PostgreSQL's parser before it
// is executed. Statements the parser rejects are reported as SyntaxError and
// never reach the Executor.
func WithSyntaxCheck(enabled bool) Option {
	return func(l *Loader) { l.checkSyntax = enabled }
}

// New creates a Loader
func New(exec database.Executor, dialect parser.Dialect, opts ...Option) *Loader {
	l := &Loader{
		exec:      exec,
		dialect:   dialect,
		log:       logger.Default(),
		decompose: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads path and executes every statement in it. It returns the
// number of raw statements processed.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	script, err := parser.LoadScript(path)
	if err != nil {
		return 0, err
	}
	return l.LoadScript(ctx, script)
}

// LoadScript executes every statement of script. Cancelling ctx stops the
// load between statements.
func (l *Loader) LoadScript(ctx context.Context, script *parser.Script) (int, error) {
	var (
		count    int
		failures []error
	)

	for stmt := range parser.NewSplitter(script, l.dialect).All() {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		if err := l.execute(ctx, name(script), stmt); err != nil {
			if !l.continueOnError {
				return count, err
			}
			l.log.Error("%v", err)
			failures = append(failures, err)
		}
		count++
	}

	l.log.Debug("%s: %d statements processed", name(script), count)
	return count, stderrors.Join(failures...)
}

func (l *Loader) execute(ctx context.Context, file string, stmt parser.Statement) error {
	queries := []string{stmt.SQL}
	if l.decompose {
		var warnings []parser.Warning
		queries, warnings = parser.Decompose(stmt.SQL)
		for _, w := range warnings {
			l.log.Warn("%s:%d: %s", file, stmt.Line, w)
		}
	}

	for _, query := range queries {
		if l.checkSyntax {
			if err := parser.CheckSyntax(query); err != nil {
				return errors.NewSyntaxError(file, stmt.Line, query, err)
			}
		}
		rows, err := l.exec.Execute(ctx, query)
		if err != nil {
			return errors.NewStatementError(file, stmt.Line, query, err)
		}
		l.log.Debug("%s:%d: %d rows affected", file, stmt.Line, rows)
	}
	return nil
}

func name(script *parser.Script) string {
	if script.Path == "" {
		return "<script>"
	}
	return script.Path
}
