package runner

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// duplicator writes the child's output to the terminal and appends it to the
// log. The terminal write decides the result; a failing log write is
// reported once and then skipped so logging can never break the command.
type duplicator struct {
	primary   io.Writer
	secondary io.Writer
	logger    *log.Logger

	mu     sync.Mutex
	failed bool
}

func (d *duplicator) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.secondary != nil && !d.failed {
		if _, err := d.secondary.Write(p); err != nil {
			d.failed = true
			if d.logger != nil {
				d.logger.Warn("terminal log write failed; continuing without logging", "err", err)
			}
		}
	}
	if d.primary == nil {
		return len(p), nil
	}
	return d.primary.Write(p)
}
