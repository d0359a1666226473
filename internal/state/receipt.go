package state

import (
	"time"

	"github.com/google/uuid"
)

// Receipt records what `asklog install` changed so that status and uninstall
// can report on and undo it.
type Receipt struct {
	ID          string    `json:"id"`
	InstalledAt time.Time `json:"installed_at"`
	HookVersion int       `json:"hook_version"`
	RCFiles     []string  `json:"rc_files"`          // startup files the hook was written to
	Links       []string  `json:"links,omitempty"`   // alias symlinks created for the wrapper
	BinaryPath  string    `json:"binary_path,omitempty"`
	LogFile     string    `json:"log_file"`
}

// NewReceipt starts a receipt with a fresh ID.
func NewReceipt(now time.Time, hookVersion int) *Receipt {
	return &Receipt{
		ID:          uuid.New().String(),
		InstalledAt: now,
		HookVersion: hookVersion,
		RCFiles:     []string{},
	}
}

// Merge folds a previous receipt into r so that re-running install keeps
// track of every file and link touched across runs. The original ID and
// install time are kept.
func (r *Receipt) Merge(prev *Receipt) {
	if prev == nil {
		return
	}
	r.ID = prev.ID
	r.InstalledAt = prev.InstalledAt
	r.RCFiles = union(prev.RCFiles, r.RCFiles)
	r.Links = union(prev.Links, r.Links)
	if r.BinaryPath == "" {
		r.BinaryPath = prev.BinaryPath
	}
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
