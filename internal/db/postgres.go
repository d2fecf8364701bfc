package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(80) UNIQUE NOT NULL,
		password_hash VARCHAR(200) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		color VARCHAR(7) NOT NULL DEFAULT '#6c757d',
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS notes (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		content TEXT NOT NULL,
		category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(50) UNIQUE NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS note_tags (
		note_id BIGINT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (note_id, tag_id)
	);`,
}

func openPostgres(cfg Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.Name)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres database: %w", err)
	}

	if err := apply(db, postgresSchema); err != nil {
		return nil, err
	}
	return db, nil
}
