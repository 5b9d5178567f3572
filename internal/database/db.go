package database

import (
	"context"
	"database/sql"
	"dublinbikes-api/internal/config"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"
)

// New connects to the document store and returns a Bun DB handle.
// postgres:// URLs go through pgdriver, anything else is opened as sqlite.
func New(cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB

	if cfg.IsPostgres() {
		connector := pgdriver.NewConnector(
			pgdriver.WithDSN(cfg.DatabaseURL),
			pgdriver.WithTimeout(30*time.Second),
			pgdriver.WithDialTimeout(10*time.Second),
			pgdriver.WithReadTimeout(30*time.Second),
			pgdriver.WithWriteTimeout(15*time.Second),
		)

		sqldb := sql.OpenDB(connector)
		sqldb.SetMaxOpenConns(25)
		sqldb.SetMaxIdleConns(10)
		sqldb.SetConnMaxLifetime(5 * time.Minute)
		sqldb.SetConnMaxIdleTime(10 * time.Minute)

		db = bun.NewDB(sqldb, pgdialect.New())
	} else {
		var err error
		db, err = OpenSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	// Optional query logging
	if cfg.BunDebug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// OpenSQLite opens an embedded sqlite database, e.g. "file::memory:?cache=shared".
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// sqlite serialises writers; a single connection also keeps in-memory databases alive
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
