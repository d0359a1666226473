package shell

import (
	"github.com/fakeyudi/asklog/internal/fileutil"
)

// Uninstall removes every hook line from each managed startup file, leaving
// all other lines and their order intact. Files without a hook, and missing
// files, are left alone, so running it repeatedly is harmless.
func (i *Installer) Uninstall() []Result {
	results := make([]Result, 0, len(Shells))
	for _, s := range Shells {
		res := Result{Shell: s.Name, RCFile: s.RCPath(i.Home)}

		changed, err := fileutil.Update(res.RCFile, 0o644, func(content []byte, exists bool) ([]byte, bool, error) {
			if !exists {
				res.Skipped = true
				return nil, false, nil
			}
			stripped, removed := stripHook(string(content))
			return []byte(stripped), removed, nil
		})
		res.Changed = changed
		if err != nil {
			res.Err = err
			i.warn("hook removal failed", res)
		}
		results = append(results, res)
	}
	return results
}
