package logfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Rotate archives the log at path when it has reached maxBytes. The file is
// renamed to <path>.<unix-seconds> and an empty file is created in its
// place. A missing file is treated as empty. The archive path is returned
// when a rotation happened.
func Rotate(path string, maxBytes int64, now time.Time) (string, error) {
	if maxBytes <= 0 {
		return "", nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", &Warning{Op: "rotate", Path: path, Err: err}
	}
	if info.Size() < maxBytes {
		return "", nil
	}

	archive, err := archiveName(path, now)
	if err != nil {
		return "", &Warning{Op: "rotate", Path: path, Err: err}
	}
	if err := os.Rename(path, archive); err != nil {
		return "", &Warning{Op: "rotate", Path: path, Err: err}
	}

	// No O_TRUNC: an overlapping invocation may already have recreated the
	// file and started appending to it.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return archive, &Warning{Op: "rotate", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return archive, &Warning{Op: "rotate", Path: path, Err: err}
	}
	return archive, nil
}

// archiveName picks <path>.<unix> or, if two rotations land in the same
// second, <path>.<unix>-N so an existing archive is never overwritten.
func archiveName(path string, now time.Time) (string, error) {
	base := fmt.Sprintf("%s.%d", path, now.Unix())
	name := base
	for i := 1; ; i++ {
		_, err := os.Lstat(name)
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}

// Archives lists the rotated copies of path, oldest first.
func Archives(path string) ([]string, error) {
	matches, err := filepath.Glob(globEscape(path) + ".*")
	if err != nil {
		return nil, err
	}
	prefix := path + "."
	var out []string
	for _, m := range matches {
		suffix := strings.TrimPrefix(m, prefix)
		stamp, _, _ := strings.Cut(suffix, "-")
		if _, err := strconv.ParseInt(stamp, 10, 64); err != nil {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return archiveKey(out[i], prefix) < archiveKey(out[j], prefix) })
	return out, nil
}

// archiveKey orders archives by timestamp, then by collision counter.
func archiveKey(name, prefix string) string {
	suffix := strings.TrimPrefix(name, prefix)
	stamp, counter, _ := strings.Cut(suffix, "-")
	ts, _ := strconv.ParseInt(stamp, 10, 64)
	n, _ := strconv.Atoi(counter)
	return fmt.Sprintf("%020d-%010d", ts, n)
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return r.Replace(s)
}
