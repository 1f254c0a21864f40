package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	_ "github.com/lib/pq"
)

// Executor runs a single SQL statement and reports the affected row count
type Executor interface {
	Execute(ctx context.Context, sql string) (int64, error)
}

// SQLExecutor runs statements through database/sql
type SQLExecutor struct {
	db   *sql.DB
	conn *sql.Conn
}

// OpenSQL opens a database/sql handle for driver ("pq") and checks it is reachable
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLExecutor, error) {
	name := driver
	if driver == "pq" {
		name = "postgres"
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, &errors.ConnectionError{
			Message:    fmt.Sprintf("invalid connection configuration: %v", err),
			Suggestion: "Check the connection string format expected by the " + driver + " driver",
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &errors.ConnectionError{
			Message:    fmt.Sprintf("failed to connect: %v", err),
			Suggestion: "Verify the database is running and accessible with the provided connection string",
		}
	}
	return NewSQLExecutor(db), nil
}

// NewSQLExecutor wraps an open database handle
func NewSQLExecutor(db *sql.DB) *SQLExecutor {
	return &SQLExecutor{db: db}
}

// Session pins one connection of the handle. Statements executed after
// Session share session state until Close.
func (e *SQLExecutor) Session(ctx context.Context) (*SQLExecutor, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, &errors.ConnectionError{
			Message: fmt.Sprintf("failed to acquire connection: %v", err),
		}
	}
	return &SQLExecutor{db: e.db, conn: conn}, nil
}

// Execute runs one statement
func (e *SQLExecutor) Execute(ctx context.Context, query string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if e.conn != nil {
		res, err = e.conn.ExecContext(ctx, query)
	} else {
		res, err = e.db.ExecContext(ctx, query)
	}
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Some statements (DDL) have no row count
		return 0, nil
	}
	return n, nil
}

// Close releases the pinned connection, or the whole handle when none is pinned
func (e *SQLExecutor) Close() error {
	if e.conn != nil {
		return e.conn.Close()
	}
	return e.db.Close()
}

// Recorder collects statements instead of executing them
type Recorder struct {
	mu         sync.Mutex
	statements []string
}

// Execute records sql
func (r *Recorder) Execute(_ context.Context, sql string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, sql)
	return 0, nil
}

// Statements returns a copy of everything recorded so far
func (r *Recorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.statements))
	copy(out, r.statements)
	return out
}

// Printer writes each statement to w, terminated by Delimiter
type Printer struct {
	W         io.Writer
	Delimiter string
}

// NewPrinter creates a Printer terminating statements with ";"
func NewPrinter(w io.Writer) *Printer {
	return &Printer{W: w, Delimiter: ";"}
}

// Execute prints sql
func (p *Printer) Execute(_ context.Context, sql string) (int64, error) {
	delim := p.Delimiter
	if strings.HasSuffix(sql, delim) {
		delim = ""
	}
	if _, err := fmt.Fprintf(p.W, "%s%s\n", sql, delim); err != nil {
		return 0, err
	}
	return 0, nil
}
