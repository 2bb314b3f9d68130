package model

import "time"

// Todo is a single checklist item that belongs to one user and one day.
// Mandatory todos are generated from the catalog; custom todos are created
// by the user.
type Todo struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Text        string     `json:"text" db:"text"`
	IsMandatory bool       `json:"is_mandatory" db:"is_mandatory"`
	Completed   bool       `json:"completed" db:"completed"`
	Date        string     `json:"date" db:"date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ImageURL    *string    `json:"image_url,omitempty" db:"image_url"`

	// CatalogKey links a generated mandatory todo to its catalog entry.
	// Nil for custom todos and for rows generated before keys existed.
	CatalogKey *string `json:"catalog_key,omitempty" db:"catalog_key"`
}

// HasImage reports whether a proof image is attached.
func (t Todo) HasImage() bool {
	return t.ImageURL != nil && *t.ImageURL != ""
}

// PublicTodo is a completed todo as shown in the public feed, carrying the
// owner's display name.
type PublicTodo struct {
	Todo
	UserName string `json:"user_name" db:"user_name"`
}

// Comment is an append-only remark left on a todo.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	TodoID    string    `json:"todo_id" db:"todo_id"`
	UserName  string    `json:"user_name" db:"user_name"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
