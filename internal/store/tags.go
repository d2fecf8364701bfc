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

// ParseTagList splits a comma-separated tag string into distinct trimmed
// names, dropping empty entries. "a, b, a" yields ["a" "b"].
func ParseTagList(input string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, raw := range strings.Split(input, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// reconcileTags attaches the named tags to a note, reusing an existing tag on
// an exact case-sensitive name match and creating it otherwise. The tag table
// is global: names are shared across all users and a tag left without notes
// is kept.
func (s *Store) reconcileTags(ctx context.Context, tx *sqlx.Tx, noteID int64, names []string) error {
	seen := make(map[string]struct{})
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		query, args, err := s.sb.Select("id").From("tags").Where(squirrel.Eq{"name": name}).ToSql()
		if err != nil {
			return err
		}
		var tagID int64
		err = tx.GetContext(ctx, &tagID, query, args...)
		if errors.Is(err, sql.ErrNoRows) {
			tagID, err = s.insert(ctx, tx, s.sb.Insert("tags").Columns("name").Values(name))
		}
		if err != nil {
			return err
		}

		// note_tags has no id column, so the RETURNING path does not apply.
		query, args, err = s.sb.Insert("note_tags").Columns("note_id", "tag_id").Values(noteID, tagID).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// attachTags loads the tags for every note in the slice with one query.
func (s *Store) attachTags(ctx context.Context, notes []models.Note) error {
	if len(notes) == 0 {
		return nil
	}

	ids := make([]int64, len(notes))
	byID := make(map[int64]*models.Note, len(notes))
	for i := range notes {
		ids[i] = notes[i].ID
		byID[notes[i].ID] = &notes[i]
	}

	query, args, err := sqlx.In(`SELECT nt.note_id, t.id, t.name
		FROM note_tags nt JOIN tags t ON t.id = nt.tag_id
		WHERE nt.note_id IN (?) ORDER BY t.id`, ids)
	if err != nil {
		return err
	}

	var rows []struct {
		NoteID int64  `db:"note_id"`
		ID     int64  `db:"id"`
		Name   string `db:"name"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return err
	}

	for _, row := range rows {
		note := byID[row.NoteID]
		note.Tags = append(note.Tags, models.Tag{ID: row.ID, Name: row.Name})
	}
	return nil
}
