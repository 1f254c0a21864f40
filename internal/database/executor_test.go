package database

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLExecutorExecute(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		setupMock   func(mock sqlmock.Sqlmock)
		wantRows    int64
		expectError bool
	}{
		{
			name:  "insert reports affected rows",
			query: "INSERT INTO t VALUES (1), (2)",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO t VALUES (1), (2)")).
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
			wantRows: 2,
		},
		{
			name:  "ddl without row count",
			query: "CREATE TABLE t (id int)",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE t (id int)")).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no RowsAffected available")))
			},
			wantRows: 0,
		},
		{
			name:  "statement fails",
			query: "DROP TABLE missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("DROP TABLE missing")).
					WillReturnError(errors.New(`table "missing" does not exist`))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)

			exec := NewSQLExecutor(db)
			rows, err := exec.Execute(context.Background(), tt.query)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantRows, rows)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLExecutorSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("SET search_path TO app")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE users (id int)")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	session, err := NewSQLExecutor(db).Session(ctx)
	require.NoError(t, err)

	_, err = session.Execute(ctx, "SET search_path TO app")
	require.NoError(t, err)
	_, err = session.Execute(ctx, "CREATE TABLE users (id int)")
	require.NoError(t, err)
	require.NoError(t, session.Close())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Execute(ctx, "SELECT 1")
		}()
	}
	wg.Wait()

	assert.Len(t, r.Statements(), 10)

	got := r.Statements()
	got[0] = "changed"
	assert.Equal(t, "SELECT 1", r.Statements()[0], "Statements must return a copy")
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	ctx := context.Background()

	_, err := p.Execute(ctx, "SELECT 1")
	require.NoError(t, err)
	_, err = p.Execute(ctx, "SELECT 2;")
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1;\nSELECT 2;\n", buf.String())
}
