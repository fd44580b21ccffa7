package domain

import "time"

type User struct {
	ID    int64
	Name  string
	Email string
}

// ItemRequest is a "looking for X" post; owners respond by listing items
// that reference it.
type ItemRequest struct {
	ID          int64
	Description string
	RequesterID int64
	Created     time.Time
}
