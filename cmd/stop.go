package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := callDaemon(http.MethodPost, "/stop", nil); err != nil {
			return err
		}

		fmt.Println("stopped")
		return nil
	},
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Ask the daemon to start a pass now",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result map[string]string
		if err := callDaemon(http.MethodPost, "/trigger", &result); err != nil {
			return err
		}

		fmt.Println(result["status"])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd, triggerCmd)
}
