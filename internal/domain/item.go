package domain

import "time"

type Item struct {
	ID          int64
	Name        string
	Description string
	Available   bool
	OwnerID     int64
	RequestID   *int64
}

type Comment struct {
	ID       int64
	ItemID   int64
	AuthorID int64
	Text     string
	Created  time.Time
}
