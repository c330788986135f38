package store

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Dialect covers what differs between the SQLite and PostgreSQL audit stores.
type Dialect interface {
	Name() string
	DriverName() string
	// Now is the SQL expression for the current timestamp.
	Now() string
	Schema() string
	// Rewrite turns a query written for SQLite into this dialect.
	Rewrite(query string) string
	// Tune sets the connection pool for this backend.
	Tune(db *sql.DB)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                { return "sqlite" }
func (sqliteDialect) DriverName() string          { return "sqlite" }
func (sqliteDialect) Now() string                 { return "datetime('now','localtime')" }
func (sqliteDialect) Schema() string              { return schemaSQLite }
func (sqliteDialect) Rewrite(query string) string { return query }

// Tune keeps a single connection so audit inserts never see SQLITE_BUSY.
func (sqliteDialect) Tune(db *sql.DB) {
	db.SetMaxOpenConns(1)
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }
func (postgresDialect) Now() string        { return "NOW()" }
func (postgresDialect) Schema() string     { return schemaPostgres }

func (d postgresDialect) Rewrite(query string) string {
	return Rebind(strings.ReplaceAll(query, sqliteDialect{}.Now(), d.Now()))
}

func (postgresDialect) Tune(db *sql.DB) {
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

// Rebind converts ? placeholders to $1, $2, ... Question marks inside
// single-quoted literals are left alone.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
