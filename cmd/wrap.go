package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/asklog/internal/config"
	"github.com/fakeyudi/asklog/internal/logging"
	"github.com/fakeyudi/asklog/internal/runner"
)

// NewWrapperCommand builds the `ask` command. Flags are not parsed: every
// argument, --help included, goes to the wrapped binary untouched. The
// binary's exit code is stored in *code.
func NewWrapperCommand(code *int) *cobra.Command {
	return &cobra.Command{
		Use:                "ask [args...]",
		Short:              "Run ask and record its output in the terminal log",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = RunWrapper(cmd, args)
			return nil
		},
	}
}

// ExecuteWrapper runs the `ask` wrapper and exits with the wrapped binary's
// exit code.
func ExecuteWrapper() {
	code := 0
	c := NewWrapperCommand(&code)
	// Execute is bypassed: cobra answers its hidden completion commands
	// (__complete) itself, and every argument here belongs to ask.
	os.Exit(RunWrapper(c, os.Args[1:]))
}

// RunWrapper resolves the wrapped binary and runs it with args, using cmd's
// streams and context. Configuration and log problems are reported as
// warnings; only a binary that cannot run changes the outcome, with exit
// code 127.
func RunWrapper(cmd *cobra.Command, args []string) int {
	stderr := cmd.ErrOrStderr()

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(stderr, "ask: resolving home directory: %v\n", err)
		return runner.ExitNotFound
	}

	c, cfgErr := config.Load(home)
	logger := logging.New(stderr, "ask", c.Verbose)
	if cfgErr != nil {
		logger.Warn("using default settings", "err", cfgErr)
	}
	limits, err := c.Limits()
	if err != nil {
		logger.Warn("using default log limits", "err", err)
	}

	self, err := os.Executable()
	if err != nil {
		logger.Debug("cannot locate wrapper executable", "err", err)
	}
	binary, err := runner.Resolve(c.BinaryPathFor(home), self)
	if err != nil {
		fmt.Fprintf(stderr, "ask: %v\n", err)
		return runner.ExitNotFound
	}
	logger.Debug("running", "binary", binary, "args", args, "log", c.LogPath(home))

	r := &runner.Runner{
		Binary:  binary,
		Self:    self,
		LogPath: c.LogPath(home),
		Limits:  limits,
		Stdin:   cmd.InOrStdin(),
		Stdout:  cmd.OutOrStdout(),
		Logger:  logger,
	}
	code, err := r.Run(commandContext(cmd), args)
	if err != nil {
		fmt.Fprintf(stderr, "ask: %v\n", err)
	}
	return code
}
