package cmd

import (
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/asklog/internal/config"
	"github.com/fakeyudi/asklog/internal/logfile"
	"github.com/fakeyudi/asklog/internal/shell"
	"github.com/fakeyudi/asklog/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the logging hook is installed and how large the log is",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		cmd.Println("Hooks:")
		for _, st := range shell.NewInstaller(home, "", GetLogger()).Status() {
			label := "not installed"
			switch {
			case st.Err != nil:
				label = "error: " + st.Err.Error()
			case !st.Exists:
				label = "no startup file"
			case st.Installed && st.Version == 0:
				label = "installed (legacy)"
			case st.Installed:
				label = "installed"
			}
			cmd.Printf("  %-5s %-16s %s\n", st.Shell, tildePath(st.RCFile), label)
		}

		store, err := state.NewReceiptStore(config.Dir(home))
		if err != nil {
			return err
		}
		receipt, err := store.Load()
		switch {
		case errors.Is(err, state.ErrNotInstalled):
			cmd.Println("Installed: no")
		case err != nil:
			return err
		default:
			cmd.Printf("Installed: %s (%s)\n",
				receipt.InstalledAt.Format(time.RFC3339), humanize.Time(receipt.InstalledAt))
			for _, rc := range receipt.RCFiles {
				cmd.Printf("  hooked %s\n", tildePath(rc))
			}
			for _, link := range receipt.Links {
				cmd.Printf("  link %s\n", link)
			}
		}

		path := cfg.LogPath(home)
		limits, err := cfg.Limits()
		if err != nil {
			return err
		}
		stats, err := logfile.Stat(path)
		if err != nil {
			return err
		}
		cmd.Printf("Log: %s\n", tildePath(path))
		if !stats.Exists {
			cmd.Println("  (not created yet)")
		} else {
			cmd.Printf("  Size: %s of %s\n", humanize.IBytes(uint64(stats.Size)), sizeLimit(limits.MaxBytes))
			cmd.Printf("  Lines: %s of %s\n", humanize.Comma(int64(stats.Lines)), lineLimit(limits.MaxLines))
		}
		cmd.Printf("  Archives: %d\n", len(stats.Archives))
		return nil
	},
}

func sizeLimit(n int64) string {
	if n <= 0 {
		return "unlimited"
	}
	return humanize.IBytes(uint64(n))
}

func lineLimit(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return humanize.Comma(int64(n))
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
