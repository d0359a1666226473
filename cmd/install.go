package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/asklog/internal/config"
	"github.com/fakeyudi/asklog/internal/runner"
	"github.com/fakeyudi/asklog/internal/shell"
	"github.com/fakeyudi/asklog/internal/state"
)

var installLinks []string
var installWrapper string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Add the terminal logging hook to ~/.bashrc and ~/.zshrc",
	Long: `Appends the logging hook to every existing shell startup file, optionally
links the ask wrapper onto PATH and records what was changed. Running it again
changes nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		inst := shell.NewInstaller(home, hookLogFile(cfg.LogFile), GetLogger())

		receipt := state.NewReceipt(time.Now(), shell.HookVersion)
		receipt.BinaryPath = cfg.BinaryPathFor(home)
		receipt.LogFile = cfg.LogPath(home)

		for _, res := range inst.Install() {
			switch {
			case res.Err != nil:
				cmd.Printf("  ⚠ %s: %v\n", tildePath(res.RCFile), res.Err)
			case res.Skipped:
				cmd.Printf("  – %s not found, skipped\n", tildePath(res.RCFile))
			case res.Changed:
				cmd.Printf("  ✓ hook added to %s\n", tildePath(res.RCFile))
				receipt.RCFiles = append(receipt.RCFiles, res.RCFile)
			default:
				cmd.Printf("  • hook already present in %s\n", tildePath(res.RCFile))
				receipt.RCFiles = append(receipt.RCFiles, res.RCFile)
			}
		}

		if len(installLinks) > 0 {
			wrapper, err := wrapperPath(installWrapper)
			if err != nil {
				return err
			}
			for _, link := range installLinks {
				created, err := ensureLink(link, wrapper)
				if err != nil {
					return err
				}
				if created {
					cmd.Printf("  ✓ linked %s -> %s\n", link, wrapper)
				}
				receipt.Links = append(receipt.Links, link)
			}
		}

		store, err := state.NewReceiptStore(config.Dir(home))
		if err != nil {
			return err
		}
		prev, err := store.Load()
		if err != nil && !errors.Is(err, state.ErrNotInstalled) {
			// A damaged receipt is replaced rather than blocking install.
			GetLogger().Warn("ignoring unreadable install receipt", "err", err)
		}
		receipt.Merge(prev)
		if err := store.Save(receipt); err != nil {
			return err
		}

		cmd.Println()
		cmd.Println("To finish the install, start a new terminal session or run:")
		cmd.Println("  source ~/.bashrc")
		cmd.Println("  source ~/.zshrc")
		return nil
	},
}

// hookLogFile turns the configured log path into the shell expression the
// hook writes to. "~/" becomes "$HOME/" so the hook expands it at run time.
func hookLogFile(configured string) string {
	if strings.HasPrefix(configured, "~/") {
		return "$HOME/" + configured[2:]
	}
	return configured
}

// wrapperPath returns the ask wrapper to link to: the explicit path, or the
// ask binary installed next to asklog.
func wrapperPath(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating asklog executable: %w", err)
	}
	if real, err := filepath.EvalSymlinks(self); err == nil {
		self = real
	}
	return filepath.Join(filepath.Dir(self), runner.DefaultBinaryName), nil
}

// ensureLink makes link a symlink to target. An existing link to target is
// left alone; any other symlink is replaced. A regular file is never
// overwritten.
func ensureLink(link, target string) (bool, error) {
	info, err := os.Lstat(link)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		if current, _ := os.Readlink(link); current == target {
			return false, nil
		}
		if err := os.Remove(link); err != nil {
			return false, fmt.Errorf("replacing link %s: %w", link, err)
		}
	case err == nil:
		return false, fmt.Errorf("refusing to replace %s: not a symlink", link)
	case !errors.Is(err, fs.ErrNotExist):
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return false, fmt.Errorf("creating link directory: %w", err)
	}
	if err := os.Symlink(target, link); err != nil {
		return false, fmt.Errorf("creating link %s: %w", link, err)
	}
	return true, nil
}

// tildePath shortens paths under the home directory for display.
func tildePath(p string) string {
	if home != "" && strings.HasPrefix(p, home+string(filepath.Separator)) {
		return "~" + p[len(home):]
	}
	return p
}

func init() {
	installCmd.Flags().StringArrayVar(&installLinks, "link", nil, "create a symlink at `PATH` pointing to the ask wrapper (repeatable)")
	installCmd.Flags().StringVar(&installWrapper, "wrapper", "", "ask wrapper the links point to (default: ask next to asklog)")
	rootCmd.AddCommand(installCmd)
}
