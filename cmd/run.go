package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rubox/internal/daemon"
	"rubox/internal/db"
	"rubox/internal/model"
	"rubox/internal/repository"
	"rubox/internal/watch"
)

const historyRetention = 30 * 24 * time.Hour

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mirror daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(conn); err != nil {
				log.Warn("failed to close db", zap.Error(err))
			}
		}()

		repo := repository.NewHistoryRepository(conn)
		if n, err := repo.Prune(time.Now().Add(-historyRetention)); err != nil {
			log.Warn("failed to prune history", zap.Error(err))
		} else if n > 0 {
			log.Info("pruned history", zap.Int64("rows", n))
		}

		engine, client, err := newEngine(ctx, repo)
		if err != nil {
			return err
		}

		state := daemon.NewPassState(engine.Root(), client.Root(), time.Now())
		scheduler := daemon.NewScheduler(engine, daemon.SchedulerOptions{
			Interval: cfg.Interval(),
			State:    state,
			Logger:   log,
			AfterPass: func(stats model.PassStats) {
				if stats.Failed > 0 {
					log.Warn("pass finished with failures",
						zap.Int("failed", stats.Failed))
				}
			},
		})

		opts := daemon.Options{
			LocalRoot: engine.Root(),
			Scheduler: scheduler,
			Server:    daemon.NewServer(scheduler, repo, cfg.DaemonPort, log),
			Logger:    log,
		}
		if cfg.WatchLocal {
			opts.Watcher = watch.New(watch.Options{
				Root:   engine.Root(),
				Ignore: cfg.IgnoreList,
				Logger: log,
			})
		}

		log.Info("rubox started",
			zap.String("local", engine.Root()),
			zap.String("remote", client.Root()),
			zap.Duration("interval", cfg.Interval()),
			zap.Bool("watch", cfg.WatchLocal))

		return daemon.New(opts).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
