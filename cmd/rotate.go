package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/asklog/internal/logfile"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate and trim the terminal output log now",
	Long: `Applies the same size and line bounds the ask wrapper enforces before
every run: a log at or over the size limit is archived, then the log is cut to
the most recent lines.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		limits, err := cfg.Limits()
		if err != nil {
			return err
		}
		path := cfg.LogPath(home)

		res, err := logfile.Normalize(path, limits, time.Now())
		if res.Archive != "" {
			cmd.Printf("Archived %s to %s\n", tildePath(path), tildePath(res.Archive))
		}
		if res.Trimmed {
			cmd.Printf("Trimmed %s to the last %s lines\n", tildePath(path), lineLimit(limits.MaxLines))
		}
		if err != nil {
			return err
		}
		if res.Archive == "" && !res.Trimmed {
			cmd.Println("Log is within limits; nothing to do.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rotateCmd)
}
