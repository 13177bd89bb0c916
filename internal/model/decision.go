package model

import "path"

type Action string

const (
	ActionUpload              Action = "UPLOAD"
	ActionDelete              Action = "DELETE"
	ActionCreateFolder        Action = "CREATE_FOLDER"
	ActionDeleteFolderSubtree Action = "DELETE_FOLDER_SUBTREE"
)

type SyncDecision struct {
	Action Action
	Name   string
	// Subdir is the slash separated key relative to the remote root, empty at the root.
	Subdir string
}

func Upload(name, subdir string) SyncDecision {
	return SyncDecision{Action: ActionUpload, Name: name, Subdir: subdir}
}

func Delete(name, subdir string) SyncDecision {
	return SyncDecision{Action: ActionDelete, Name: name, Subdir: subdir}
}

func CreateFolder(name, subdir string) SyncDecision {
	return SyncDecision{Action: ActionCreateFolder, Name: name, Subdir: subdir}
}

func DeleteFolderSubtree(name, subdir string) SyncDecision {
	return SyncDecision{Action: ActionDeleteFolderSubtree, Name: name, Subdir: subdir}
}

// RemoteKey is the decision target relative to the remote root.
func (d SyncDecision) RemoteKey() string {
	return path.Join(d.Subdir, d.Name)
}

type SyncResult struct {
	Decision  SyncDecision
	LocalPath string
	Err       error
}
