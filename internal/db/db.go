package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS listings (
            id SERIAL PRIMARY KEY,
            owner_id INT NOT NULL,
            title TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            listing_id INT NOT NULL,
            sender_id INT NOT NULL,
            recipient_id INT NOT NULL,
            body TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            read_at TIMESTAMPTZ
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient_created
            ON messages (recipient_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender_recipient_created
            ON messages (sender_id, recipient_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS blocks (
            id SERIAL PRIMARY KEY,
            user_a_id INT NOT NULL,
            user_b_id INT NOT NULL,
            created_by INT NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ DEFAULT NOW(),
            CHECK (user_a_id < user_b_id),
            UNIQUE (user_a_id, user_b_id)
        );`,
		`CREATE TABLE IF NOT EXISTS reports (
            id SERIAL PRIMARY KEY,
            reporter_id INT NOT NULL,
            reported_user_id INT,
            listing_id INT,
            category TEXT NOT NULL,
            reason TEXT NOT NULL,
            details TEXT,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            CHECK (reported_user_id IS NOT NULL OR listing_id IS NOT NULL)
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
