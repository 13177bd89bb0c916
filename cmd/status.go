package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"rubox/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		var snap model.Snapshot
		if err := callDaemon(http.MethodGet, "/status", &snap); err != nil {
			return err
		}

		fmt.Printf("%-10s %s\n", "status:", snap.Status)
		fmt.Printf("%-10s %s -> %s\n", "mirror:", snap.LocalRoot, snap.RemoteRoot)
		fmt.Printf("%-10s %s\n", "uptime:", time.Since(snap.StartedAt).Round(time.Second))
		fmt.Printf("%-10s %d\n", "passes:", snap.Passes)
		fmt.Printf("%-10s %s (took %s)\n", "last:", formatTime(snap.LastPassAt), snap.LastDuration.Round(time.Millisecond))
		fmt.Printf("%-10s %s\n", "next:", formatTime(snap.NextPassAt))

		fmt.Printf("\n%-10s %-8s %-8s %-8s %-8s\n", "", "UPLOAD", "DELETE", "FOLDERS", "FAILED")
		for _, row := range []struct {
			name  string
			stats model.PassStats
		}{
			{"last pass", snap.LastPass},
			{"total", snap.Total},
		} {
			fmt.Printf("%-10s %-8d %-8d %-8d %-8d\n",
				row.name, row.stats.Uploads, row.stats.Deletes, row.stats.FolderDeletes, row.stats.Failed)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
