package logfile

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fakeyudi/asklog/internal/fileutil"
)

// Trim keeps only the last maxLines lines of the log at path. The result is
// written to a temp file and renamed over the log. A missing file, or one at
// or under the limit, is left alone.
func Trim(path string, maxLines int) (bool, error) {
	if maxLines <= 0 {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &Warning{Op: "trim", Path: path, Err: err}
	}
	kept, total, err := lastLines(f, maxLines)
	f.Close()
	if err != nil {
		return false, &Warning{Op: "trim", Path: path, Err: err}
	}
	if total <= maxLines {
		return false, nil
	}

	if err := fileutil.WriteFile(path, []byte(strings.Join(kept, "")), 0o644); err != nil {
		return false, &Warning{Op: "trim", Path: path, Err: err}
	}
	return true, nil
}

// lastLines reads r to the end and returns its last n lines in order, each
// with its original terminator, plus the total number of lines seen. A final
// line without a newline counts as a line. Only n lines are held at once.
func lastLines(r io.Reader, n int) ([]string, int, error) {
	ring := make([]string, n)
	total := 0
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			ring[total%n] = line
			total++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, total, err
		}
	}

	if total <= n {
		return ring[:total], total, nil
	}
	start := total % n
	out := make([]string, 0, n)
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, total, nil
}
