package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/asklog/internal/config"
	"github.com/fakeyudi/asklog/internal/logging"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// home is the user's home directory, resolved from $HOME.
var home string

// logger reports warnings on stderr; debug output with --verbose.
var logger = logging.Discard()

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "asklog",
	Short: "Manage terminal session logging for ask",
	Long: `asklog installs the shell hook that records terminal sessions, keeps the
terminal output log bounded and lets you inspect it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		h, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		home = h

		c, err := config.Load(home)
		if err != nil {
			return err
		}
		cfg = c

		logger = logging.New(cmd.ErrOrStderr(), "asklog", verbose || cfg.Verbose)
		logger.Debug("config loaded", "path", config.Path(home), "log", cfg.LogPath(home))
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetLogger returns the logger configured for this run.
func GetLogger() *log.Logger {
	return logger
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug output")
}
