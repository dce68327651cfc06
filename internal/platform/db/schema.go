package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed sql/schema.sql
var schemaSQL string

// Execer is the subset of a pool or connection needed to apply DDL.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// SchemaStatements returns the bootstrap DDL split into single statements.
func SchemaStatements() []string {
	var stmts []string
	for _, s := range strings.Split(schemaSQL, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// EnsureSchema creates the patients and visits tables when they are missing.
// Every statement is idempotent so it is safe to run on each start.
func EnsureSchema(ctx context.Context, ex Execer) error {
	for _, stmt := range SchemaStatements() {
		if _, err := ex.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
