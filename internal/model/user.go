package model

import "time"

// User is identified by a unique display name. Users are created once at
// registration and never modified afterwards.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
