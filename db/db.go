package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDB opens the postgres pool used for game history persistence.
// An empty connStr disables persistence; the engine runs fully
// in-memory then.
func InitDB(connStr string) error {
	if connStr == "" {
		log.Println("[DB] No DB_URI configured, history persistence disabled")
		return nil
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("unable to connect to database: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	DB = db
	log.Println("[DB] Database connected successfully")
	return createTables()
}

func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

func createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_histories (
		lobby_id   TEXT PRIMARY KEY,
		lobby_name TEXT NOT NULL DEFAULT '',
		game_type  TEXT NOT NULL,
		players    TEXT NOT NULL DEFAULT '',
		winner     TEXT,
		is_tie     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		ended_at   TIMESTAMPTZ
	);
	CREATE TABLE IF NOT EXISTS game_actions (
		id          TEXT PRIMARY KEY,
		lobby_id    TEXT NOT NULL,
		game_type   TEXT NOT NULL,
		player_name TEXT NOT NULL,
		action_type TEXT NOT NULL,
		details     TEXT NOT NULL DEFAULT '',
		payload     TEXT,
		created_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_game_actions_lobby ON game_actions (lobby_id, created_at);
	`
	_, err := DB.Exec(schema)
	return err
}
