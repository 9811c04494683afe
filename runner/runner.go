// Package runner executes the external analysis tools.  The tools are
// opaque: the runner's whole contract is "run this argv, capture everything
// it prints into the run log, and tell me whether it exited zero", with an
// optional bounded retry and an optional tolerate-failure mode for commands
// whose failure is not fatal.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/openmetagen/mgx/runlog"
)

// ExitError reports a command that ran to completion with a nonzero exit
// code.  Failures to start the command at all (e.g. binary not found) are
// returned as-is and are never retried.
type ExitError struct {
	Cmd  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit code %d", e.Cmd, e.Code)
}

// Opts controls the failure policy for a single Run call.
type Opts struct {
	// Retries is the number of additional attempts after a nonzero exit.
	Retries int
	// TolerateFailure logs and swallows a nonzero exit once retries are
	// exhausted.
	TolerateFailure bool
}

// Runner runs external commands, appending their combined output to the run
// log.
type Runner struct {
	log *runlog.Logger
}

func New(log *runlog.Logger) *Runner {
	return &Runner{log: log.WithComponent("exec")}
}

// Run executes argv, retrying per opts.  All stdout lines, then all stderr
// lines, are appended to the run log before the exit code is examined.
func (r *Runner) Run(ctx context.Context, opts Opts, argv ...string) error {
	if len(argv) == 0 {
		return errors.New("runner: empty argv")
	}
	for attempt := 0; ; attempt++ {
		err := r.runOnce(ctx, argv)
		if err == nil {
			return nil
		}
		var xerr *ExitError
		if !errors.As(err, &xerr) {
			return err
		}
		if attempt < opts.Retries {
			r.log.Infof("retrying (%d attempts left): %v", opts.Retries-attempt, err)
			continue
		}
		if opts.TolerateFailure {
			r.log.Infof("ignoring failure: %v", err)
			return nil
		}
		return err
	}
}

func (r *Runner) runOnce(ctx context.Context, argv []string) error {
	r.log.Infof("command: %s", strings.Join(argv, " "))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	r.logOutput("stdout", &stdout)
	r.logOutput("stderr", &stderr)
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Cmd: argv[0], Code: exitErr.ExitCode()}
	}
	return err
}

func (r *Runner) logOutput(stream string, buf *bytes.Buffer) {
	if buf.Len() == 0 {
		return
	}
	r.log.Infof("%s of subprocess:", stream)
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		r.log.Infof("%s", line)
	}
}
