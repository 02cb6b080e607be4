package models

import "time"

// Comment is append-only: written once, never edited or deleted.
type Comment struct {
	ID        string
	TaskID    string
	UserID    string
	Username  string
	Comment   string
	CreatedAt time.Time
}
