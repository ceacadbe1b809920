package store

import (
	_ "embed"
	"strings"
)

//go:embed schema.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// SQLiteDDL returns the statements of schema.sql, split for drivers that
// execute one statement at a time.
func SQLiteDDL() []string {
	return splitStatements(sqliteSchema)
}

// PostgresDDL returns the statements of schema_postgres.sql.
func PostgresDDL() []string {
	return splitStatements(postgresSchema)
}

func splitStatements(ddl string) []string {
	parts := strings.Split(ddl, ";")
	var out []string
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
