package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/notekeeper-app/notekeeper/internal/models"
)

// NoteInput carries the user-editable fields of a note. Tags is the
// reconciled tag name list, see ParseTagList.
type NoteInput struct {
	Title      string
	Content    string
	CategoryID *int64
	Pinned     bool
	Tags       []string
}

// NoteFilter narrows ListNotes. Zero values mean no filtering; Sort accepts
// "oldest", "title" and "title_desc", anything else sorts newest first.
type NoteFilter struct {
	Search     string
	CategoryID int64
	Tag        string
	PinnedOnly bool
	Sort       string
}

func (in *NoteInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(in.Content) == "" {
		return &ValidationError{Field: "content", Reason: "is required"}
	}
	return nil
}

// checkCategory verifies the referenced category belongs to the user. An
// unowned category id gets the same answer as a missing one.
func (s *Store) checkCategory(ctx context.Context, tx *sqlx.Tx, userID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	query, args, err := s.sb.Select("COUNT(*)").From("categories").
		Where(squirrel.Eq{"id": *categoryID, "user_id": userID}).ToSql()
	if err != nil {
		return err
	}
	var count int
	if err := tx.GetContext(ctx, &count, query, args...); err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateNote(ctx context.Context, userID int64, in NoteInput) (*models.Note, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var noteID int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkCategory(ctx, tx, userID, in.CategoryID); err != nil {
			return err
		}

		now := time.Now().UTC()
		id, err := s.insert(ctx, tx, s.sb.Insert("notes").
			Columns("title", "content", "category_id", "user_id", "is_pinned", "created_at", "updated_at").
			Values(in.Title, in.Content, in.CategoryID, userID, in.Pinned, now, now))
		if err != nil {
			return err
		}
		noteID = id

		return s.reconcileTags(ctx, tx, id, in.Tags)
	})
	if err != nil {
		return nil, err
	}
	return s.GetNote(ctx, userID, noteID)
}

func (s *Store) GetNote(ctx context.Context, userID, noteID int64) (*models.Note, error) {
	query, args, err := s.sb.Select(noteColumns...).From("notes").
		Where(squirrel.Eq{"id": noteID, "user_id": userID}).ToSql()
	if err != nil {
		return nil, err
	}

	var note models.Note
	err = s.db.GetContext(ctx, &note, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	notes := []models.Note{note}
	if err := s.attachTags(ctx, notes); err != nil {
		return nil, err
	}
	if note.CategoryID != nil {
		category, err := s.GetCategory(ctx, userID, *note.CategoryID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		notes[0].Category = category
	}
	return &notes[0], nil
}

var noteColumns = []string{"id", "title", "content", "category_id", "user_id", "is_pinned", "created_at", "updated_at"}

// ListNotes returns the user's notes, pinned first, with tags and categories
// attached. No pagination: acceptable for a personal collection, and a known
// limit at any larger scale.
func (s *Store) ListNotes(ctx context.Context, userID int64, filter NoteFilter) ([]models.Note, error) {
	q := s.sb.Select(noteColumns...).From("notes").Where(squirrel.Eq{"user_id": userID})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{squirrel.Like{"title": like}, squirrel.Like{"content": like}})
	}
	if filter.CategoryID != 0 {
		q = q.Where(squirrel.Eq{"category_id": filter.CategoryID})
	}
	if filter.PinnedOnly {
		q = q.Where(squirrel.Eq{"is_pinned": true})
	}
	if filter.Tag != "" {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT note_id FROM note_tags JOIN tags ON tags.id = note_tags.tag_id WHERE tags.name = ?)",
			filter.Tag))
	}

	orderBy := "created_at DESC"
	switch filter.Sort {
	case "oldest":
		orderBy = "created_at ASC"
	case "title":
		orderBy = "title ASC"
	case "title_desc":
		orderBy = "title DESC"
	}
	q = q.OrderBy("is_pinned DESC", orderBy)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var notes []models.Note
	if err := s.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, notes); err != nil {
		return nil, err
	}

	categories, err := s.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	for i := range notes {
		if notes[i].CategoryID != nil {
			notes[i].Category = byID[*notes[i].CategoryID]
		}
	}
	return notes, nil
}

// UpdateNote applies the input to an owned note, fully replacing the tag set
// and refreshing updated_at.
func (s *Store) UpdateNote(ctx context.Context, userID, noteID int64, in NoteInput) (*models.Note, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkCategory(ctx, tx, userID, in.CategoryID); err != nil {
			return err
		}

		query, args, err := s.sb.Update("notes").
			Set("title", in.Title).
			Set("content", in.Content).
			Set("category_id", in.CategoryID).
			Set("is_pinned", in.Pinned).
			Set("updated_at", time.Now().UTC()).
			Where(squirrel.Eq{"id": noteID, "user_id": userID}).ToSql()
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

		query, args, err = s.sb.Delete("note_tags").Where(squirrel.Eq{"note_id": noteID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		return s.reconcileTags(ctx, tx, noteID, in.Tags)
	})
	if err != nil {
		return nil, err
	}
	return s.GetNote(ctx, userID, noteID)
}

// DeleteNote removes an owned note and its tag associations. The tags
// themselves stay: they are shared vocabulary, possibly in use elsewhere.
func (s *Store) DeleteNote(ctx context.Context, userID, noteID int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.sb.Select("COUNT(*)").From("notes").
			Where(squirrel.Eq{"id": noteID, "user_id": userID}).ToSql()
		if err != nil {
			return err
		}
		var count int
		if err := tx.GetContext(ctx, &count, query, args...); err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		query, args, err = s.sb.Delete("note_tags").Where(squirrel.Eq{"note_id": noteID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		query, args, err = s.sb.Delete("notes").
			Where(squirrel.Eq{"id": noteID, "user_id": userID}).ToSql()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
}

// TogglePin flips the pinned flag of an owned note. Pin state is display
// metadata, so updated_at is left alone.
func (s *Store) TogglePin(ctx context.Context, userID, noteID int64) error {
	query, args, err := s.sb.Update("notes").
		Set("is_pinned", squirrel.Expr("NOT is_pinned")).
		Where(squirrel.Eq{"id": noteID, "user_id": userID}).ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
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
}
