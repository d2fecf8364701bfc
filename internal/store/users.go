package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/notekeeper-app/notekeeper/internal/models"
)

// Every new account starts with these categories; seeding them is part of the
// registration transaction, not a separate step.
var defaultCategories = []models.Category{
	{Name: "Personal", Color: "#007bff"},
	{Name: "Work", Color: "#28a745"},
	{Name: "Ideas", Color: "#ffc107"},
}

// RegisterUser creates a user with the given password hash and seeds the
// default categories in the same transaction. Returns ErrDuplicateUsername if
// the username is taken.
func (s *Store) RegisterUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Reason: "is required"}
	}

	var user *models.User
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.sb.Select("COUNT(*)").From("users").
			Where(squirrel.Eq{"username": username}).ToSql()
		if err != nil {
			return err
		}
		var count int
		if err := tx.GetContext(ctx, &count, query, args...); err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateUsername
		}

		id, err := s.insert(ctx, tx, s.sb.Insert("users").
			Columns("username", "password_hash").
			Values(username, passwordHash))
		if err != nil {
			return err
		}

		for _, c := range defaultCategories {
			if _, err := s.insert(ctx, tx, s.sb.Insert("categories").
				Columns("name", "color", "user_id").
				Values(c.Name, c.Color, id)); err != nil {
				return err
			}
		}

		user = &models.User{ID: id, Username: username, PasswordHash: passwordHash}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args, err := s.sb.Select("id", "username", "password_hash").From("users").
		Where(squirrel.Eq{"username": username}).ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user and everything the user owns as one explicit
// cascade: tag associations, notes, categories, then the user row. Tags
// themselves are global and survive.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		steps := []squirrel.Sqlizer{
			s.sb.Delete("note_tags").Where(squirrel.Expr(
				"note_id IN (SELECT id FROM notes WHERE user_id = ?)", userID)),
			s.sb.Delete("notes").Where(squirrel.Eq{"user_id": userID}),
			s.sb.Delete("categories").Where(squirrel.Eq{"user_id": userID}),
		}
		for _, step := range steps {
			query, args, err := step.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}

		query, args, err := s.sb.Delete("users").Where(squirrel.Eq{"id": userID}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
