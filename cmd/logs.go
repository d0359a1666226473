package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/asklog/internal/logfile"
	"github.com/fakeyudi/asklog/internal/tui"
)

var logsLines int
var logsFollow bool
var plainOutput bool

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the terminal output log",
	Long: `Opens the log in a pager when stdout is a terminal. With --plain, or when
output is piped, prints the last lines instead and optionally keeps streaming
new output with --follow.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := GetConfig().LogPath(home)

		if !plainOutput && isTerminal(cmd) {
			return tui.Run(path)
		}

		lines, err := logfile.Tail(path, logsLines)
		if err != nil {
			return err
		}
		for _, l := range lines {
			cmd.Println(l)
		}
		if !logsFollow {
			return nil
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		GetLogger().Debug("following log", "path", path)
		return logfile.Follow(ctx, path, cmd.OutOrStdout())
	},
}

// isTerminal reports whether the command writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 20, "number of lines to print")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "keep printing lines as they are written")
	logsCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of the pager")
	rootCmd.AddCommand(logsCmd)
}
