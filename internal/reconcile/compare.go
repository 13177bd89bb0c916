package reconcile

import (
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"rubox/internal/model"
)

// driftFactor is the upper edge of the drift window in sync intervals.
const driftFactor = 3

// DirectoryComparison holds both sides of a single directory level.
type DirectoryComparison struct {
	LocalFiles    map[string]time.Time
	RemoteFiles   map[string]time.Time
	LocalFolders  mapset.Set[string]
	RemoteFolders mapset.Set[string]
}

func NewDirectoryComparison() *DirectoryComparison {
	return &DirectoryComparison{
		LocalFiles:    make(map[string]time.Time),
		RemoteFiles:   make(map[string]time.Time),
		LocalFolders:  mapset.NewThreadUnsafeSet[string](),
		RemoteFolders: mapset.NewThreadUnsafeSet[string](),
	}
}

// AddRemote sorts a listing entry into files or folders. Hidden names are dropped.
func (c *DirectoryComparison) AddRemote(e model.RemoteEntry) {
	switch e.Kind {
	case model.KindFile:
		c.RemoteFiles[e.Name] = e.ModifiedAt
	case model.KindFolder:
		c.RemoteFolders.Add(e.Name)
	}
}

// Decide returns the operations that bring the remote level in line with the
// local one, folder removals first. subdir is stamped on every decision.
func (c *DirectoryComparison) Decide(subdir string, interval time.Duration) []model.SyncDecision {
	decisions := c.folderDecisions(subdir)
	return append(decisions, c.fileDecisions(subdir, interval)...)
}

// Remote-only folders are removed only while the remote has more folders
// than the local side. Local-only folders are never created here; they
// appear when the pass descends into them.
func (c *DirectoryComparison) folderDecisions(subdir string) []model.SyncDecision {
	if c.LocalFolders.Equal(c.RemoteFolders) || c.RemoteFolders.Cardinality() <= c.LocalFolders.Cardinality() {
		return nil
	}

	var decisions []model.SyncDecision
	for _, name := range sorted(c.RemoteFolders.Difference(c.LocalFolders)) {
		decisions = append(decisions, model.DeleteFolderSubtree(name, subdir))
	}

	return decisions
}

func (c *DirectoryComparison) fileDecisions(subdir string, interval time.Duration) []model.SyncDecision {
	local := mapset.NewThreadUnsafeSetFromMapKeys(c.LocalFiles)
	remote := mapset.NewThreadUnsafeSetFromMapKeys(c.RemoteFiles)

	var decisions []model.SyncDecision
	for _, name := range sorted(local.Difference(remote)) {
		decisions = append(decisions, model.Upload(name, subdir))
	}
	// A dotted local folder lists as a remote file; it is not remote-only.
	for _, name := range sorted(remote.Difference(local).Difference(c.LocalFolders)) {
		decisions = append(decisions, model.Delete(name, subdir))
	}
	for _, name := range sorted(local.Intersect(remote)) {
		if IsDrift(c.LocalFiles[name].Sub(c.RemoteFiles[name]), interval) {
			decisions = append(decisions, model.Upload(name, subdir))
		}
	}

	return decisions
}

// IsDrift reports whether a timestamp difference falls strictly inside the
// window (interval, 3*interval). Smaller differences count as in sync and
// larger ones are left alone.
func IsDrift(diff, interval time.Duration) bool {
	if diff < 0 {
		diff = -diff
	}

	return diff > interval && diff < driftFactor*interval
}

func sorted(s mapset.Set[string]) []string {
	names := s.ToSlice()
	slices.Sort(names)

	return names
}
