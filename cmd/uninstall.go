package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/asklog/internal/config"
	"github.com/fakeyudi/asklog/internal/shell"
	"github.com/fakeyudi/asklog/internal/state"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the terminal logging hook and the links created by install",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst := shell.NewInstaller(home, "", GetLogger())
		for _, res := range inst.Uninstall() {
			switch {
			case res.Err != nil:
				cmd.Printf("  ⚠ %s: %v\n", tildePath(res.RCFile), res.Err)
			case res.Changed:
				cmd.Printf("  ✓ hook removed from %s\n", tildePath(res.RCFile))
			}
		}

		store, err := state.NewReceiptStore(config.Dir(home))
		if err != nil {
			return err
		}
		receipt, err := store.Load()
		switch {
		case errors.Is(err, state.ErrNotInstalled):
		case err != nil:
			GetLogger().Warn("ignoring unreadable install receipt", "err", err)
		default:
			for _, link := range receipt.Links {
				removeLink(cmd, link)
			}
		}
		if err := store.Delete(); err != nil {
			return err
		}

		cmd.Println("Logging mechanism removed. Please restart your terminal.")
		return nil
	},
}

// removeLink deletes link if it is still a symlink; anything else now at
// that path belongs to someone else.
func removeLink(cmd *cobra.Command, link string) {
	info, err := os.Lstat(link)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return
	}
	if err := os.Remove(link); err != nil {
		GetLogger().Warn("cannot remove link", "path", link, "err", err)
		return
	}
	cmd.Printf("  ✓ removed link %s\n", link)
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
