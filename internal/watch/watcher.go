package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"rubox/internal/model"
	"rubox/internal/pipeline"
)

const (
	DefaultDelay      = 2 * time.Second
	defaultBufferSize = 256
)

type Options struct {
	Root   string
	Ignore []string
	// Delay is the quiet period that ends a burst of changes.
	Delay  time.Duration
	Clock  clockwork.Clock
	Logger *zap.Logger
}

// Watcher turns bursts of local filesystem changes into early pass requests.
type Watcher struct {
	root   string
	ignore pipeline.IgnoreList
	delay  time.Duration
	clock  clockwork.Clock
	log    *zap.Logger
}

func New(opts Options) *Watcher {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Watcher{
		root:   opts.Root,
		ignore: pipeline.IgnoreList(opts.Ignore),
		delay:  opts.Delay,
		clock:  opts.Clock,
		log:    opts.Logger,
	}
}

// Run watches the tree until ctx is done, calling trigger once per burst.
func (w *Watcher) Run(ctx context.Context, trigger func()) error {
	absDir, err := filepath.Abs(w.root)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if _, err := os.Stat(absDir); err != nil {
		return fmt.Errorf("local root not found: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func(fw *fsnotify.Watcher) {
		_ = fw.Close()
	}(fw)

	if err := w.addRecursive(fw, absDir); err != nil {
		return err
	}

	eventCh := make(chan model.FileEvent, defaultBufferSize)
	go w.forward(ctx, fw, eventCh)

	filteredCh := pipeline.Filter(eventCh, w.root, w.ignore)
	batchCh := pipeline.Debounce(filteredCh, w.delay, w.clock)

	w.log.Info("watcher started",
		zap.String("dir", absDir))

	for batch := range batchCh {
		w.log.Debug("local changes detected",
			zap.Int("events", len(batch)),
			zap.String("first", batch[0].Path))
		trigger()
	}

	w.log.Info("watcher stopped")
	return nil
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && w.ignore.MatchName(d.Name()) {
				return filepath.SkipDir
			}
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.log.Debug("watching directory",
				zap.String("path", path))
		}

		return nil
	})
}

func (w *Watcher) forward(ctx context.Context, fw *fsnotify.Watcher, eventCh chan<- model.FileEvent) {
	defer close(eventCh)

	for {
		select {
		case <-ctx.Done():
			return

		case fsEvent, ok := <-fw.Events:
			if !ok {
				return
			}

			eventType := toEventType(fsEvent.Op)
			if eventType == "" {
				continue
			}

			isDir := false
			if fsEvent.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					isDir = true
					if err := w.addRecursive(fw, fsEvent.Name); err != nil {
						w.log.Warn("failed to watch new directory",
							zap.String("path", fsEvent.Name),
							zap.Error(err))
					}
				}
			}

			// Hidden files are never mirrored, hidden directories are.
			if !isDir && model.ClassifyName(filepath.Base(fsEvent.Name)) == model.KindHidden {
				continue
			}

			event := model.FileEvent{
				Type:      eventType,
				Path:      fsEvent.Name,
				Timestamp: w.clock.Now(),
			}

			select {
			case eventCh <- event:
			default:
				w.log.Warn("event channel is full, dropping event",
					zap.String("path", fsEvent.Name))
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}

			w.log.Error("watcher error",
				zap.Error(err))
		}
	}
}

func toEventType(op fsnotify.Op) model.EventType {
	switch {
	case op.Has(fsnotify.Create):
		return model.EventCreate
	case op.Has(fsnotify.Write):
		return model.EventWrite
	case op.Has(fsnotify.Remove):
		return model.EventRemove
	case op.Has(fsnotify.Rename):
		return model.EventRename
	default:
		return ""
	}
}
