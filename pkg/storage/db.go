package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// openDB abre la base y crea el esquema si no existe
func openDB(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName, schema string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		schema = schemaSQLite
		if dsn == "" {
			dsn = "file:results.db?_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		schema = schemaPostgres
		if dsn == "" {
			dsn = "postgres://localhost:5432/citizenquiz?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// una sola conexión: evita SQLITE_BUSY entre escrituras del mismo proceso
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  pass INTEGER NOT NULL,
  game_id TEXT NOT NULL,
  player_name TEXT NOT NULL,
  score INTEGER NOT NULL,
  total INTEGER NOT NULL,
  passed INTEGER NOT NULL,
  coins INTEGER NOT NULL,
  xp INTEGER NOT NULL,
  completed_at INTEGER NOT NULL,
  UNIQUE (session_id, pass)
);
CREATE INDEX IF NOT EXISTS results_player ON results (player_name, completed_at);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS results (
  id BIGSERIAL PRIMARY KEY,
  session_id TEXT NOT NULL,
  pass INTEGER NOT NULL,
  game_id TEXT NOT NULL,
  player_name TEXT NOT NULL,
  score INTEGER NOT NULL,
  total INTEGER NOT NULL,
  passed INTEGER NOT NULL,
  coins INTEGER NOT NULL,
  xp INTEGER NOT NULL,
  completed_at BIGINT NOT NULL,
  UNIQUE (session_id, pass)
);
CREATE INDEX IF NOT EXISTS results_player ON results (player_name, completed_at);
`
