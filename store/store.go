package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"eaisdo/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// openTimeout bounds the first ping, so a dead PostgreSQL fails startup
// instead of the first audit write.
const openTimeout = 5 * time.Second

// DB is the audit store. It wraps *sql.DB with the dialect chosen from config.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Open resolves the dialect for cfg.Driver, checks the connection and applies
// the audit schema.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	d, dsn, err := dialectFor(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name(), err)
	}
	d.Tune(sqlDB)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name(), err)
	}

	db := &DB{DB: sqlDB, dialect: d}
	if _, err := db.Exec(d.Schema()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate %s: %w", d.Name(), err)
	}
	return db, nil
}

func dialectFor(cfg *config.DatabaseConfig) (Dialect, string, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqliteDialect{}, fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", cfg.SQLite.Path), nil
	case "postgres":
		pg := cfg.Postgres
		return postgresDialect{}, fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
			pg.Host, pg.Port, pg.Database, pg.User, pg.Password, pg.SSLMode), nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func (db *DB) Dialect() Dialect { return db.dialect }
func (db *DB) Driver() string   { return db.dialect.Name() }

// Q adapts a query written for SQLite to the open dialect.
func (db *DB) Q(query string) string {
	return db.dialect.Rewrite(query)
}
