package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dailyflow/dailyreset/internal/config"
	"github.com/dailyflow/dailyreset/internal/logger"
)

var (
	cfg *config.Config

	serverURL  string
	logLevel   string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "dailyreset",
	Short: "Daily Reset - a daily task tracker",
	Long: `Daily Reset keeps one task list per day. Each morning the previous
day's completion is archived to a calendar and the list starts fresh.

Tasks live on the server; log in first with 'dailyreset auth login'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}

		if cmd.Flags().Changed("server") {
			cfg.ServerURL = serverURL
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		if cfg.LogFile != "" {
			logConfig.FilePath = cfg.LogFile
		}
		logConfig.Console = cfg.LogConsole
		if err := logger.Init(logConfig); err != nil {
			fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API server URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Also log to stderr")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(timezoneCmd)
}

// Execute runs the CLI
func Execute() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
