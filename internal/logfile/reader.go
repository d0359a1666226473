package logfile

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Tail returns the last n lines of the log without their newlines. A missing
// log yields no lines and no error.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	kept, _, err := lastLines(f, n)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(kept))
	for i, l := range kept {
		out[i] = strings.TrimRight(l, "\r\n")
	}
	return out, nil
}

// Stats is a point-in-time summary of the log, used by `asklog status`.
type Stats struct {
	Exists   bool
	Size     int64
	Lines    int
	Archives []string
}

// Stat summarises the log at path and its archives.
func Stat(path string) (Stats, error) {
	var st Stats
	archives, err := Archives(path)
	if err != nil {
		return st, err
	}
	st.Archives = archives

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return st, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return st, err
	}
	st.Exists = true
	st.Size = info.Size()
	_, st.Lines, err = lastLines(f, 1)
	return st, err
}

// Follow copies bytes appended to the log at path into w until ctx is
// cancelled, starting from the current end of the file. Rotation (a new file
// at path) and trimming (the file shrinks) restart reading from offset 0.
func Follow(ctx context.Context, path string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: rotation replaces the file, which would drop a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	t := &follower{path: path, w: w}
	if info, err := os.Stat(path); err == nil {
		t.info = info
		t.offset = info.Size()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := t.drain(); err != nil {
					return err
				}
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue following.
		}
	}
}

// follower tracks the read position within the followed log.
type follower struct {
	path   string
	w      io.Writer
	info   os.FileInfo
	offset int64
}

// drain copies everything past the current offset to w.
func (t *follower) drain() error {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if t.info == nil || !os.SameFile(t.info, info) || info.Size() < t.offset {
		t.offset = 0
	}
	t.info = info

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}
	n, err := io.Copy(t.w, f)
	t.offset += n
	return err
}
