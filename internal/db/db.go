// Package db opens the relational store and applies the schema.
//
// Referential rules are part of the schema on every backend: rows owned by a
// user cascade on user deletion, and a deleted category leaves its notes in
// place with a null category reference. The store layer repeats these rules as
// explicit statements so behavior does not depend on driver FK enforcement.
package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Config struct {
	Driver   string // sqlite, mysql or postgres
	Path     string // sqlite file path
	User     string
	Password string
	Host     string
	Name     string
}

// Open connects to the configured backend, verifies the connection and
// creates any missing tables.
func Open(cfg Config) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return openSQLite(cfg.Path)
	case "mysql":
		return openMySQL(cfg)
	case "postgres":
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func apply(db *sqlx.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
