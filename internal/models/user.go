package models

import "time"

type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Viewer is the resolved identity a request acts under.
type Viewer struct {
	ID       string
	Username string
	IsAdmin  bool
}
