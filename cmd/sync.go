package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rubox/internal/daemon"
	"rubox/internal/db"
	"rubox/internal/repository"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single reconciliation pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// Refuse to race a running daemon over the same tree.
		lock, err := daemon.AcquireLock(cfg.LocalRoot)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Unlock() }()

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(conn) }()

		engine, _, err := newEngine(ctx, repository.NewHistoryRepository(conn))
		if err != nil {
			return err
		}

		start := time.Now()
		stats := engine.Pass(ctx)

		log.Info("pass finished",
			zap.Int("uploads", stats.Uploads),
			zap.Int("deletes", stats.Deletes),
			zap.Int("folder_deletes", stats.FolderDeletes),
			zap.Int("failed", stats.Failed),
			zap.Duration("took", time.Since(start)))

		fmt.Printf("done: %d uploaded, %d deleted, %d folders removed, %d failed\n",
			stats.Uploads, stats.Deletes, stats.FolderDeletes, stats.Failed)

		if stats.Failed > 0 {
			return fmt.Errorf("%d operations failed", stats.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
