package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/notekeeper-app/notekeeper/internal/models"
)

// DefaultCategoryColor is the neutral gray used when no color is given.
const DefaultCategoryColor = "#6c757d"

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func (s *Store) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	query, args, err := s.sb.Select("id", "name", "color", "user_id").From("categories").
		Where(squirrel.Eq{"user_id": userID}).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := s.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, userID, categoryID int64) (*models.Category, error) {
	query, args, err := s.sb.Select("id", "name", "color", "user_id").From("categories").
		Where(squirrel.Eq{"id": categoryID, "user_id": userID}).ToSql()
	if err != nil {
		return nil, err
	}

	var category models.Category
	err = s.db.GetContext(ctx, &category, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory adds a category for the user. An empty color falls back to
// the default gray. Duplicate names within a user are permitted.
func (s *Store) CreateCategory(ctx context.Context, userID int64, name, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if color == "" {
		color = DefaultCategoryColor
	}
	if !colorPattern.MatchString(color) {
		return nil, &ValidationError{Field: "color", Reason: "must be a #rrggbb value"}
	}

	var category *models.Category
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.insert(ctx, tx, s.sb.Insert("categories").
			Columns("name", "color", "user_id").
			Values(name, color, userID))
		if err != nil {
			return err
		}
		category = &models.Category{ID: id, Name: name, Color: color, UserID: userID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category the user owns. Notes referencing it keep
// existing with a cleared category reference; nothing cascades to them.
func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.sb.Update("notes").Set("category_id", nil).
			Where(squirrel.Eq{"category_id": categoryID, "user_id": userID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		query, args, err = s.sb.Delete("categories").
			Where(squirrel.Eq{"id": categoryID, "user_id": userID}).ToSql()
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
