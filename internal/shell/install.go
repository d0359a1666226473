// Package shell installs and removes the terminal logging hook in the user's
// bash and zsh startup files.
package shell

import (
	"errors"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/fakeyudi/asklog/internal/fileutil"
)

// Result describes what install or uninstall did to one startup file.
type Result struct {
	Shell   string
	RCFile  string
	Changed bool  // the file was rewritten
	Skipped bool  // the file does not exist
	Err     error // best-effort failure, already logged
}

// Installer edits the startup files under Home.
type Installer struct {
	Home    string
	LogFile string // shell expression for the log path; empty means DefaultLogFile
	Logger  *log.Logger
}

// NewInstaller builds an installer for home.
func NewInstaller(home, logFile string, logger *log.Logger) *Installer {
	return &Installer{Home: home, LogFile: logFile, Logger: logger}
}

// Install appends the hook block to every existing startup file that does
// not already carry one. Existing content is never rewritten, only extended,
// and a second call leaves the files untouched. Missing startup files are
// skipped rather than created.
func (i *Installer) Install() []Result {
	results := make([]Result, 0, len(Shells))
	for _, s := range Shells {
		res := Result{Shell: s.Name, RCFile: s.RCPath(i.Home)}
		block := Block(s, i.LogFile)

		changed, err := fileutil.Update(res.RCFile, 0o644, func(content []byte, exists bool) ([]byte, bool, error) {
			if !exists {
				res.Skipped = true
				return nil, false, nil
			}
			if present, _ := detect(string(content)); present {
				return nil, false, nil
			}
			return []byte(appendBlock(string(content), block)), true, nil
		})
		res.Changed = changed
		if err != nil {
			res.Err = err
			i.warn("hook install failed", res)
		}
		results = append(results, res)
	}
	return results
}

// Status captures the hook state of one startup file.
type Status struct {
	Shell     string
	RCFile    string
	Exists    bool
	Installed bool
	Version   int // 0 for a hook written without markers
	Err       error
}

// Status reports the hook state of every managed startup file.
func (i *Installer) Status() []Status {
	out := make([]Status, 0, len(Shells))
	for _, s := range Shells {
		st := Status{Shell: s.Name, RCFile: s.RCPath(i.Home)}
		content, err := os.ReadFile(st.RCFile)
		switch {
		case err == nil:
			st.Exists = true
			st.Installed, st.Version = detect(string(content))
		case !errors.Is(err, fs.ErrNotExist):
			st.Err = err
		}
		out = append(out, st)
	}
	return out
}

// IsInstalled reports whether any managed startup file carries the hook.
func (i *Installer) IsInstalled() bool {
	for _, st := range i.Status() {
		if st.Installed {
			return true
		}
	}
	return false
}

func (i *Installer) warn(msg string, res Result) {
	if i.Logger == nil {
		return
	}
	i.Logger.Warn(msg, "shell", res.Shell, "file", res.RCFile, "err", res.Err)
}
