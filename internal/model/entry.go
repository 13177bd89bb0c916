package model

import (
	"strings"
	"time"
)

type EntryKind string

const (
	KindFile   EntryKind = "FILE"
	KindFolder EntryKind = "FOLDER"
	// KindHidden covers dot-names. They are never synced in either direction.
	KindHidden EntryKind = "HIDDEN"
)

// ClassifyName decides the kind of an entry from its name alone: anything
// with an extension is a file, anything without is a folder.
func ClassifyName(name string) EntryKind {
	switch {
	case strings.HasPrefix(name, "."):
		return KindHidden
	case strings.Contains(name, "."):
		return KindFile
	default:
		return KindFolder
	}
}

type LocalEntry struct {
	Name       string
	ModifiedAt time.Time
}

type RemoteEntry struct {
	Name       string
	Path       string
	ModifiedAt time.Time
	Kind       EntryKind
}
