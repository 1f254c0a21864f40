package parser

import (
	pgquery "github.com/pganalyze/pg_query_go/v6"
)

// CheckSyntax runs sql through PostgreSQL's own parser and returns its error,
// if any. Nothing is executed.
func CheckSyntax(sql string) error {
	_, err := pgquery.Parse(sql)
	return err
}
