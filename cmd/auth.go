package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rubox/internal/auth"
)

var authPort int

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize rubox with Yandex Disk",
	Long: "Runs the OAuth code flow in the browser and saves the token next to the config.\n" +
		"Needs yandex_credentials.json with client_id and client_secret in the config dir.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := authStore()
		if err != nil {
			return err
		}

		if err := auth.Authorize(cmd.Context(), store, auth.AuthorizeOptions{
			Port: authPort,
			Out:  os.Stdout,
		}); err != nil {
			return err
		}

		fmt.Println("Authenticated with Yandex Disk")
		return nil
	},
}

func init() {
	authCmd.Flags().IntVar(&authPort, "port", auth.DefaultPort, "local port for the OAuth redirect")
	rootCmd.AddCommand(authCmd)
}
