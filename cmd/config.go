package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rubox/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := "-"
		if cfg.APIKey != "" {
			apiKey = "(set)"
		}

		rows := [][2]string{
			{"api_key", apiKey},
			{"local_root", cfg.LocalRoot},
			{"remote_root", cfg.RemoteRoot},
			{"sync_interval_minutes", fmt.Sprint(cfg.SyncIntervalMinutes)},
			{"log_path", cfg.LogPath},
			{"api_base_url", cfg.APIBaseURL},
			{"request_timeout", cfg.RequestTimeout.String()},
			{"db_path", cfg.DBPath},
			{"daemon_port", fmt.Sprint(cfg.DaemonPort)},
			{"ignore_list", strings.Join(cfg.IgnoreList, ",")},
			{"watch_local", fmt.Sprint(cfg.WatchLocal)},
		}

		for _, row := range rows {
			fmt.Printf("%-22s %s\n", row[0], row[1])
		}

		if err := cfg.Validate(); err != nil {
			fmt.Printf("\nwarning: %v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Persist a setting to config.yaml",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(configDir, args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("%s updated\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
