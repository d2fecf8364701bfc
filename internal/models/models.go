package models

import "time"

type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

type Category struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Color  string `db:"color"`
	UserID int64  `db:"user_id"`
}

type Note struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	CategoryID *int64    `db:"category_id"`
	UserID     int64     `db:"user_id"`
	IsPinned   bool      `db:"is_pinned"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`

	Category *Category `db:"-"`
	Tags     []Tag     `db:"-"`
}

// Tag names are global, shared across all users.
type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// TagNames returns the note's tag names in attachment order.
func (n *Note) TagNames() []string {
	names := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		names = append(names, t.Name)
	}
	return names
}
