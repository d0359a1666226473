// Package runner executes the wrapped ask binary: it normalizes the terminal
// log, runs the binary with the user's arguments and duplicates its combined
// output to the terminal and the log.
package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"golang.org/x/sys/unix"

	"github.com/fakeyudi/asklog/internal/logfile"
)

// forwarded lists the signals relayed from the wrapper to the child.
var forwarded = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGHUP, unix.SIGQUIT, unix.SIGWINCH}

// waitDelay bounds how long Wait keeps draining output after the child has
// exited, so a background grandchild holding the pipe cannot hang the wrapper.
const waitDelay = 500 * time.Millisecond

// Runner runs one invocation of the wrapped binary.
type Runner struct {
	Binary  string         // resolved path of the wrapped binary
	Self    string         // the wrapper's own executable, guards against recursion
	LogPath string         // terminal log the output is appended to
	Limits  logfile.Limits // bounds enforced before the run
	Stdin   io.Reader
	Stdout  io.Writer
	Logger  *log.Logger
	Now     func() time.Time
}

// Run normalizes the log, executes the binary with args and returns the exit
// code to report. Log maintenance problems are logged and never change the
// result. When the binary cannot be started the returned error is an
// *ExecutionError and the code is ExitNotFound.
func (r *Runner) Run(ctx context.Context, args []string) (int, error) {
	r.maintainLog()

	if err := Check(r.Binary, r.Self); err != nil {
		return ExitNotFound, err
	}

	sink := &duplicator{primary: r.Stdout, logger: r.Logger}
	if f := r.openLog(); f != nil {
		defer f.Close()
		sink.secondary = f
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdin = r.Stdin
	// The same writer for both streams makes exec share one pipe, so the
	// log keeps stdout and stderr in the order they were written.
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.Cancel = func() error { return cmd.Process.Signal(unix.SIGTERM) }
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return ExitNotFound, notRunnable(r.Binary, err)
	}

	stop := forwardSignals(cmd.Process, isTerminal(r.Stdin), r.Logger)
	err := cmd.Wait()
	stop()

	return exitCode(err)
}

func (r *Runner) maintainLog() {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	res, err := logfile.Normalize(r.LogPath, r.Limits, now())
	if err != nil {
		r.logger().Warn("log maintenance failed", "path", r.LogPath, "err", err)
	}
	if res.Archive != "" {
		r.logger().Debug("rotated terminal log", "archive", res.Archive)
	}
	if res.Trimmed {
		r.logger().Debug("trimmed terminal log", "max_lines", r.Limits.MaxLines)
	}
}

// openLog opens the terminal log for appending. A failure is logged and the
// command runs without logging.
func (r *Runner) openLog() *os.File {
	if r.LogPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.LogPath), 0o755); err != nil {
		r.logger().Warn("cannot create log directory", "path", r.LogPath, "err", err)
		return nil
	}
	f, err := os.OpenFile(r.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		r.logger().Warn("cannot open terminal log", "path", r.LogPath, "err", err)
		return nil
	}
	return f
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard)
	}
	return r.Logger
}

// forwardSignals relays the wrapper's signals to the child until the
// returned stop function is called. All forwarded signals are caught so the
// wrapper outlives the child and can report its exit code.
func forwardSignals(p *os.Process, interactive bool, logger *log.Logger) func() {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, forwarded...)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-ch:
				if !relay(sig, interactive) {
					continue
				}
				if err := p.Signal(sig); err != nil && logger != nil {
					logger.Debug("signal forward failed", "signal", sig, "err", err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// relay reports whether sig must be sent on to the child. On a terminal the
// kernel already delivers keyboard signals to the whole foreground process
// group; relaying them again would make one Ctrl-C look like two.
func relay(sig os.Signal, interactive bool) bool {
	if !interactive {
		return true
	}
	return sig != unix.SIGINT && sig != unix.SIGQUIT
}

// isTerminal reports whether r is a terminal, i.e. the wrapper runs in the
// foreground of an interactive shell.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// exitCode maps the result of Wait to the wrapper's exit status. A child
// killed by a signal reports 128+signal, as shells do.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	// The child exited 0 but left a descendant holding the output pipe.
	if errors.Is(err, exec.ErrWaitDelay) {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	return 1, err
}
