package entity

import "time"

// Report is a saved record of one business-idea query and its derived
// location. Reports are immutable once created; they can only be deleted.
type Report struct {
	ID        string
	Title     string
	UserID    string
	Location  string
	CreatedAt time.Time
}
