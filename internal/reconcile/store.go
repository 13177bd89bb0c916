package reconcile

import (
	"context"

	"rubox/internal/model"
)

// RemoteStore is everything a pass needs from the remote side. Subdirs and
// keys are slash separated and relative to the remote root.
type RemoteStore interface {
	ListDirectory(ctx context.Context, subdir string) ([]model.RemoteEntry, error)
	Upload(ctx context.Context, localPath, name, subdir string) error
	Delete(ctx context.Context, name, subdir string) error
	CreateFolder(ctx context.Context, subdir string) error
	DeleteFolderSubtree(ctx context.Context, key string) error
}

// Recorder receives the outcome of every remote write a pass issues.
type Recorder interface {
	Save(result model.SyncResult) error
}
