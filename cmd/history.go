package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"rubox/internal/model"
	"rubox/internal/repository"
)

var (
	historyN      int
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/history"
		if historyFailed {
			path = "/history/failed"
		}

		var histories []model.History
		if err := callDaemon(http.MethodGet, fmt.Sprintf("%s?n=%d", path, historyN), &histories); err != nil {
			return err
		}

		if len(histories) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		for _, h := range histories {
			status := "✓"
			if h.Status == model.StatusFailed {
				status = "✗"
			}

			fmt.Printf("%s [%s] %-13s %s\n",
				status,
				h.SyncedAt.Local().Format(timeLayout),
				h.Action,
				h.RemoteKey,
			)
			if h.ErrMsg != "" {
				fmt.Printf("    %s\n", h.ErrMsg)
			}
		}

		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count recorded operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		var stats repository.Stats
		if err := callDaemon(http.MethodGet, "/history/stats", &stats); err != nil {
			return err
		}

		fmt.Printf("total: %d, success: %d, failed: %d\n", stats.Total, stats.Success, stats.Failed)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "show failed operations only")
	historyCmd.AddCommand(historyStatsCmd)
	rootCmd.AddCommand(historyCmd)
}
