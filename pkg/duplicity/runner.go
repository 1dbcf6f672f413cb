package duplicity

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
)

const waitDelay = 10 * time.Second

// Runner starts the engine as a child process with an argument vector and
// captures both of its output streams.
type Runner struct {
	logger logrus.FieldLogger
	env    []string
}

func NewRunner(logger logrus.FieldLogger, env []string) *Runner {
	return &Runner{
		logger: logger,
		env:    env,
	}
}

func (r *Runner) Run(ctx context.Context, program string, args []string) domain.ExecResult {
	logger := appcontext.LoggerFromContext(r.logger, ctx)

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.WaitDelay = waitDelay
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return domain.ExecResult{
			ExitCode: -1,
			StartErr: errors.Wrapf(err, "unable to start %s", program),
			NotFound: isNotFound(err),
		}
	}

	logger.WithField("pid", cmd.Process.Pid).Debug("Started duplicity")

	waitErr := cmd.Wait()

	res := domain.ExecResult{
		ExitCode: exitCode(cmd.ProcessState),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		TimedOut: ctx.Err() == context.DeadlineExceeded,
	}

	if _, ok := waitErr.(*exec.ExitError); waitErr != nil && !ok {
		logger.WithError(waitErr).Warn("Unable to collect duplicity output")
	}

	return res
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// exitCode follows the shell convention of 128+N for a child killed by signal N.
func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}

	return state.ExitCode()
}
