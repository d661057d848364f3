package db

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"ghpayroll/migrations"
)

// goose keeps its dialect and base FS in package state.
var gooseMu sync.Mutex

// MigrateSQLite applies the embedded SQLite migrations.
func MigrateSQLite(db *sql.DB) error {
	return up(db, "sqlite3", "sqlite")
}

// MigratePostgres applies the embedded Postgres migrations through a
// database/sql view of the pool.
func MigratePostgres(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return up(db, "postgres", "postgres")
}

func up(db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}
	return nil
}
