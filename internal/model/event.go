package model

import "time"

type EventType string

const (
	EventCreate EventType = "CREATE"
	EventWrite  EventType = "WRITE"
	EventRemove EventType = "REMOVE"
	EventRename EventType = "RENAME"
)

// FileEvent is a local change seen by the watcher. It only ever schedules an
// early pass; the pass itself works from fresh listings.
type FileEvent struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}
