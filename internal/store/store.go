// Package store holds all SQL for the application. Every lookup of an owned
// row filters by the row id and the owning user id together, so a record
// belonging to another user is indistinguishable from one that does not
// exist. Multi-statement writes run in a single transaction.
package store

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Store struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

func New(db *sqlx.DB) *Store {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	if db.DriverName() == "postgres" {
		sb = sb.PlaceholderFormat(squirrel.Dollar)
	}
	return &Store{db: db, sb: sb}
}

// insert runs an insert inside tx and returns the new row id. lib/pq does not
// implement LastInsertId, so postgres goes through RETURNING.
func (s *Store) insert(ctx context.Context, tx *sqlx.Tx, ib squirrel.InsertBuilder) (int64, error) {
	if s.db.DriverName() == "postgres" {
		query, args, err := ib.Suffix("RETURNING id").ToSql()
		if err != nil {
			return 0, err
		}
		var id int64
		if err := tx.GetContext(ctx, &id, query, args...); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := ib.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
