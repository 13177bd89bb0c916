package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/imroc/req/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rubox/internal/config"
	"rubox/internal/logger"
)

const daemonTimeout = 5 * time.Second

var (
	cfg       *config.Config
	log       *zap.Logger
	debug     bool
	configDir string
	envFile   string
)

// Commands that only talk to a running daemon or edit settings. They get a
// no-op logger so they never touch the log file.
var clientCmds = map[string]bool{
	"status": true, "stop": true, "trigger": true, "history": true, "stats": true,
	"show": true, "set": true, "install": true, "uninstall": true,
}

var rootCmd = &cobra.Command{
	Use:          "rubox",
	Short:        "Mirror a local folder to Yandex Disk",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(config.LoadOptions{Dir: configDir, EnvFile: envFile})
		if err != nil {
			return err
		}

		if clientCmds[cmd.Name()] {
			log = logger.Nop()
			return nil
		}

		log, err = logger.New(logger.Options{Debug: debug, LogPath: cfg.LogPath})
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func daemonClient() *req.Client {
	return req.C().
		SetBaseURL(fmt.Sprintf("http://127.0.0.1:%d", cfg.DaemonPort)).
		SetTimeout(daemonTimeout)
}

func callDaemon(method, path string, result any) error {
	r := daemonClient().R()
	if result != nil {
		r.SetSuccessResult(result)
	}

	resp, err := r.Send(method, path)
	if err != nil {
		return fmt.Errorf("daemon not running: %w", err)
	}
	if !resp.IsSuccessState() {
		return fmt.Errorf("daemon returned %s: %s", resp.Status, resp.String())
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding config.yaml (default ~/.rubox)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file loaded before the config")
}
