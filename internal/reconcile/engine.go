package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"rubox/internal/model"
	"rubox/internal/pipeline"
)

type Options struct {
	// Fs is the local filesystem. Nil means the OS filesystem.
	Fs        afero.Fs
	Store     RemoteStore
	LocalRoot string
	Interval  time.Duration
	Ignore    []string
	Recorder  Recorder
	Logger    *zap.Logger
}

// Engine mirrors a local tree onto the remote store, one pass at a time.
// It keeps no state between passes.
type Engine struct {
	fs       afero.Fs
	store    RemoteStore
	root     string
	interval time.Duration
	ignore   pipeline.IgnoreList
	recorder Recorder
	log      *zap.Logger
}

func New(opts Options) *Engine {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Engine{
		fs:       opts.Fs,
		store:    opts.Store,
		root:     filepath.Clean(opts.LocalRoot),
		interval: opts.Interval,
		ignore:   pipeline.IgnoreList(opts.Ignore),
		recorder: opts.Recorder,
		log:      opts.Logger,
	}
}

func (e *Engine) Root() string {
	return e.root
}

// Pass reconciles the whole tree under the local root.
func (e *Engine) Pass(ctx context.Context) model.PassStats {
	return e.Reconcile(ctx, e.root)
}

// Reconcile brings localPath and every directory below it in line with the
// remote side. Failures are logged and counted, never returned, so one bad
// subtree does not stop its siblings.
func (e *Engine) Reconcile(ctx context.Context, localPath string) model.PassStats {
	var stats model.PassStats
	e.reconcile(ctx, filepath.Clean(localPath), &stats)

	return stats
}

func (e *Engine) reconcile(ctx context.Context, localPath string, stats *model.PassStats) {
	subdir, err := e.subdirKey(localPath)
	if err != nil {
		e.log.Error("local path outside root", zap.String("path", localPath), zap.Error(err))
		stats.DirsSkipped++
		return
	}

	info, err := e.fs.Stat(localPath)
	if err != nil || !info.IsDir() {
		e.log.Error("local directory missing, skipping subtree", zap.String("path", localPath), zap.Error(err))
		stats.DirsSkipped++
		return
	}

	level, err := readLocalLevel(e.fs, localPath)
	if err != nil {
		e.log.Error("failed to list local directory, skipping subtree", zap.String("path", localPath), zap.Error(err))
		stats.DirsSkipped++
		return
	}
	stats.DirsVisited++

	for _, name := range level.skipped {
		e.log.Debug("name cannot be mirrored, skipping", zap.String("path", filepath.Join(localPath, name)))
	}

	cmp := NewDirectoryComparison()
	for _, f := range level.files {
		if !e.ignore.MatchName(f.Name) {
			cmp.LocalFiles[f.Name] = f.ModifiedAt
		}
	}
	for _, name := range level.folders {
		if !e.ignore.MatchName(name) {
			cmp.LocalFolders.Add(name)
		}
	}

	remote, err := e.store.ListDirectory(ctx, subdir)
	if err != nil {
		e.log.Warn("remote listing failed, leaving this level for the next pass",
			zap.String("subdir", subdir),
			zap.Error(err))
	} else {
		for _, entry := range remote {
			if !e.ignore.MatchName(entry.Name) {
				cmp.AddRemote(entry)
			}
		}

		for _, d := range cmp.Decide(subdir, e.interval) {
			e.apply(ctx, localPath, d, stats)
		}
	}

	for _, name := range level.folders {
		if cmp.LocalFolders.Contains(name) {
			e.reconcile(ctx, filepath.Join(localPath, name), stats)
		}
	}
}

func (e *Engine) subdirKey(localPath string) (string, error) {
	rel, err := filepath.Rel(e.root, localPath)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not under %s", localPath, e.root)
	}

	return filepath.ToSlash(rel), nil
}

func (e *Engine) apply(ctx context.Context, localDir string, d model.SyncDecision, stats *model.PassStats) {
	result := model.SyncResult{Decision: d}

	switch d.Action {
	case model.ActionUpload:
		result.LocalPath = filepath.Join(localDir, d.Name)
		result.Err = e.store.Upload(ctx, result.LocalPath, d.Name, d.Subdir)
	case model.ActionDelete:
		result.Err = e.store.Delete(ctx, d.Name, d.Subdir)
	case model.ActionCreateFolder:
		result.Err = e.store.CreateFolder(ctx, d.RemoteKey())
	case model.ActionDeleteFolderSubtree:
		result.Err = e.store.DeleteFolderSubtree(ctx, d.RemoteKey())
	default:
		result.Err = fmt.Errorf("unknown action %q", d.Action)
	}

	e.record(result)

	if result.Err != nil {
		stats.Failed++
		e.log.Warn("operation failed, retrying next pass",
			zap.String("action", string(d.Action)),
			zap.String("remote", d.RemoteKey()),
			zap.Error(result.Err))
		return
	}

	switch d.Action {
	case model.ActionUpload:
		stats.Uploads++
	case model.ActionDelete:
		stats.Deletes++
	case model.ActionDeleteFolderSubtree:
		stats.FolderDeletes++
	}

	e.log.Info("synced",
		zap.String("action", string(d.Action)),
		zap.String("remote", d.RemoteKey()))
}

func (e *Engine) record(result model.SyncResult) {
	if e.recorder == nil {
		return
	}

	if err := e.recorder.Save(result); err != nil {
		e.log.Warn("failed to save history", zap.Error(err))
	}
}
