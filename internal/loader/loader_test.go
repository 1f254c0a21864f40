package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybertec-postgresql/sqlsplit/internal/database"
	sserrors "github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/parser"
)

func TestLoadScript(t *testing.T) {
	tests := []struct {
		name      string
		dialect   parser.Dialect
		sql       string
		opts      []Option
		want      []string
		wantCount int
	}{
		{
			name:      "plain statements",
			sql:       "CREATE TABLE a (id int);\nINSERT INTO a VALUES (1);\n",
			want:      []string{"CREATE TABLE a (id int)", "INSERT INTO a VALUES (1)"},
			wantCount: 2,
		},
		{
			name: "alter table is decomposed",
			sql:  "ALTER TABLE t ADD FOREIGN KEY (a) REFERENCES u(id), ADD a INT;",
			want: []string{
				"ALTER TABLE t ADD a INT;",
				"ALTER TABLE t ADD FOREIGN KEY (a) REFERENCES u(id);",
			},
			wantCount: 1,
		},
		{
			name:      "decomposition disabled",
			sql:       "ALTER TABLE t ADD FOREIGN KEY (a) REFERENCES u(id), ADD a INT;",
			opts:      []Option{WithDecompose(false)},
			want:      []string{"ALTER TABLE t ADD FOREIGN KEY (a) REFERENCES u(id), ADD a INT"},
			wantCount: 1,
		},
		{
			name: "delimiter directive",
			sql:  "DELIMITER //\nCREATE PROCEDURE p() BEGIN SELECT 1; END//\nDELIMITER ;\nSELECT 2;",
			want: []string{
				"CREATE PROCEDURE p() BEGIN SELECT 1; END",
				"SELECT 2",
			},
			wantCount: 2,
		},
		{
			name: "alter table inside a delimiter block",
			sql:  "DELIMITER //\nCREATE TABLE a (id INT);\nALTER TABLE t ADD FOREIGN KEY (c) REFERENCES a(id), ADD c INT//\nDELIMITER ;\n",
			want: []string{
				"CREATE TABLE a (id INT)",
				"ALTER TABLE t ADD c INT;",
				"ALTER TABLE t ADD FOREIGN KEY (c) REFERENCES a(id);",
			},
			wantCount: 1,
		},
		{
			name:    "dollar quoted function body",
			dialect: parser.PostgresStyle,
			sql:     "CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql;\nSELECT f();",
			want: []string{
				"CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql",
				"SELECT f()",
			},
			wantCount: 2,
		},
		{
			name:      "comments only",
			sql:       "-- nothing here\n/* or here */\n",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &database.Recorder{}
			opts := append([]Option{WithLogger(logger.Discard())}, tt.opts...)
			l := New(rec, tt.dialect, opts...)

			count, err := l.LoadScript(context.Background(), parser.NewScript("test.sql", tt.sql))
			if err != nil {
				t.Fatalf("LoadScript() error = %v", err)
			}
			if count != tt.wantCount {
				t.Errorf("LoadScript() count = %d, want %d", count, tt.wantCount)
			}
			if got := rec.Statements(); !reflect.DeepEqual(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("executed\n  %q\nwant\n  %q", got, tt.want)
			}
		})
	}
}

func TestLoadScriptWarnings(t *testing.T) {
	var buf bytes.Buffer
	rec := &database.Recorder{}
	l := New(rec, parser.Standard, WithLogger(logger.New(false, &buf)))

	count, err := l.LoadScript(context.Background(), parser.NewScript("broken.sql", "SELECT 1;\nALTER TABLE (broken), ADD c INT;"))
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if !strings.Contains(buf.String(), "[WARN]") || !strings.Contains(buf.String(), "broken.sql:2") {
		t.Errorf("expected a warning for line 2, got %q", buf.String())
	}
	if len(rec.Statements()) != 2 {
		t.Errorf("executed %q, want 2 statements", rec.Statements())
	}
}

func TestLoadScriptStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id int)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO missing VALUES (1)")).
		WillReturnError(errors.New(`relation "missing" does not exist`))

	l := New(database.NewSQLExecutor(db), parser.Standard, WithLogger(logger.Discard()))
	script := parser.NewScript("seed.sql", "CREATE TABLE a (id int);\nINSERT INTO missing VALUES (1);\nINSERT INTO a VALUES (2);\n")

	count, err := l.LoadScript(context.Background(), script)
	require.Error(t, err)
	assert.Equal(t, 1, count)

	var stmtErr *sserrors.StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, "seed.sql", stmtErr.File)
	assert.Equal(t, 2, stmtErr.Line)
	assert.Equal(t, "INSERT INTO missing VALUES (1)", stmtErr.SQL)
	assert.Contains(t, err.Error(), "seed.sql:2")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadScriptContinueOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO x VALUES (1)")).
		WillReturnError(errors.New("boom 1"))
	mock.ExpectExec(regexp.QuoteMeta("SELECT 2")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO x VALUES (3)")).
		WillReturnError(errors.New("boom 3"))

	l := New(database.NewSQLExecutor(db), parser.Standard,
		WithLogger(logger.Discard()), WithContinueOnError(true))
	script := parser.NewScript("seed.sql", "INSERT INTO x VALUES (1);\nSELECT 2;\nINSERT INTO x VALUES (3);")

	count, err := l.LoadScript(context.Background(), script)
	require.Error(t, err)
	assert.Equal(t, 3, count)
	assert.Contains(t, err.Error(), "boom 1")
	assert.Contains(t, err.Error(), "boom 3")

	var stmtErr *sserrors.StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, 1, stmtErr.Line)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadScriptCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &database.Recorder{}
	l := New(rec, parser.Standard, WithLogger(logger.Discard()))

	count, err := l.LoadScript(ctx, parser.NewScript("", "SELECT 1; SELECT 2;"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("LoadScript() error = %v, want context.Canceled", err)
	}
	if count != 0 || len(rec.Statements()) != 0 {
		t.Errorf("LoadScript() executed %d statements after cancellation", count)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	content := "# MySQL style comment\nCREATE TABLE `t` (`id` INT);\nINSERT INTO `t` VALUES (1);\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &database.Recorder{}
	l := New(rec, parser.Standard, WithLogger(logger.Discard()))

	count, err := l.LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if count != 2 {
		t.Errorf("LoadFile() count = %d, want 2", count)
	}
	if got := rec.Statements(); len(got) != 2 || got[0] != "CREATE TABLE `t` (`id` INT)" {
		t.Errorf("executed %q", got)
	}
}

func TestLoadFileMissing(t *testing.T) {
	l := New(&database.Recorder{}, parser.Standard, WithLogger(logger.Discard()))

	_, err := l.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.sql"))
	var unreadable *sserrors.FileUnreadableError
	if !errors.As(err, &unreadable) {
		t.Fatalf("LoadFile() error = %v, want FileUnreadableError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error does not wrap os.ErrNotExist: %v", err)
	}
}

func TestLoadScriptSyntaxCheck(t *testing.T) {
	rec := &database.Recorder{}
	l := New(rec, parser.PostgresStyle, WithLogger(logger.Discard()), WithSyntaxCheck(true))

	count, err := l.LoadScript(context.Background(), parser.NewScript("lint.sql", "SELECT 1;\nSELEC 2;\nSELECT 3;"))

	var syntaxErr *sserrors.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("LoadScript() error = %v, want SyntaxError", err)
	}
	if syntaxErr.Line != 2 || syntaxErr.SQL != "SELEC 2" {
		t.Errorf("SyntaxError = %+v", syntaxErr)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if got := rec.Statements(); len(got) != 1 || got[0] != "SELECT 1" {
		t.Errorf("executed %q; rejected statements must not reach the executor", got)
	}
}
