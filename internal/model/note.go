package model

import "time"

// Note is the domain model for a single free-text note.
// ID is assigned by the store; Text is the only field that changes after insert.
type Note struct {
	ID        int64     `json:"id"`
	Text      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}
