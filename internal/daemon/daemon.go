package daemon

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Watcher reports local changes by calling trigger until ctx is done.
type Watcher interface {
	Run(ctx context.Context, trigger func()) error
}

type Options struct {
	LocalRoot string
	Scheduler *Scheduler
	Server    *Server
	// Watcher is optional.
	Watcher Watcher
	Logger  *zap.Logger
}

type Daemon struct {
	localRoot string
	scheduler *Scheduler
	server    *Server
	watcher   Watcher
	log       *zap.Logger
}

func New(opts Options) *Daemon {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Daemon{
		localRoot: opts.LocalRoot,
		scheduler: opts.Scheduler,
		server:    opts.Server,
		watcher:   opts.Watcher,
		log:       opts.Logger,
	}
}

// Run holds the instance lock and runs the scheduler, the control server and
// the optional watcher until ctx is done or a stop is requested over the API.
func (d *Daemon) Run(ctx context.Context) error {
	lock, err := AcquireLock(d.localRoot)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			d.log.Warn("failed to release lock", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.scheduler.Run(gctx)
	})

	if d.server != nil {
		g.Go(func() error {
			return d.server.Run(gctx)
		})
		g.Go(func() error {
			select {
			case <-d.server.StopCh():
				d.log.Info("stop requested")
				cancel()
			case <-gctx.Done():
			}
			return nil
		})
	}

	if d.watcher != nil {
		g.Go(func() error {
			if err := d.watcher.Run(gctx, func() { d.scheduler.Trigger() }); err != nil {
				d.log.Warn("local watcher stopped, relying on the poll interval", zap.Error(err))
			}
			return nil
		})
	}

	d.log.Info("daemon started", zap.String("local_root", d.localRoot))
	err = g.Wait()
	d.log.Info("daemon stopped")

	return err
}
