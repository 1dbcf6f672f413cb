package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status int

const (
	// Engine exited with 0
	StatusSuccess Status = iota

	// Engine reported a failure, exit code 1..125
	StatusExternalFailure

	// Engine binary is missing, exit code 127 or the launch found nothing to run
	StatusProgramNotFound

	// Engine crashed or was killed by a signal
	StatusAbnormalTermination

	// Engine could not be started at all
	StatusLaunchFailed

	// Engine ran longer than the configured timeout and was killed
	StatusTimeout
)

var statusNames = map[Status]string{
	StatusSuccess:             "success",
	StatusExternalFailure:     "external_failure",
	StatusProgramNotFound:     "program_not_found",
	StatusAbnormalTermination: "abnormal_termination",
	StatusLaunchFailed:        "launch_failed",
	StatusTimeout:             "timeout",
}

func (s Status) String() string {
	return statusNames[s]
}

// Fatal reports whether the status must abort the process.
func (s Status) Fatal() bool {
	switch s {
	case StatusAbnormalTermination, StatusLaunchFailed, StatusTimeout:
		return true
	}
	return false
}

// Classify maps an engine exit code onto a status.
func Classify(code int) Status {
	switch {
	case code == 0:
		return StatusSuccess
	case code >= 1 && code <= 125:
		return StatusExternalFailure
	case code == 127:
		return StatusProgramNotFound
	default:
		return StatusAbnormalTermination
	}
}

// ExecResult is what a CommandRunner observed about one child process.
type ExecResult struct {
	// Exit code, 128+N when killed by signal N, -1 when never started
	ExitCode int

	Stdout string
	Stderr string

	// Set when the child could not be started
	StartErr error
	NotFound bool

	TimedOut bool
}

func classifyResult(r ExecResult) Status {
	switch {
	case r.TimedOut:
		return StatusTimeout
	case r.StartErr != nil && r.NotFound:
		return StatusProgramNotFound
	case r.StartErr != nil:
		return StatusLaunchFailed
	default:
		return Classify(r.ExitCode)
	}
}

type Outcome struct {
	Operation Operation

	Program string
	Args    []string

	ExitCode int
	Stdout   string
	Stderr   string

	Status Status
	Err    error

	Timeout    time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}

// CommandLine renders the executed command for diagnostics only.
func (o Outcome) CommandLine() string {
	return strings.Join(append([]string{o.Program}, o.Args...), " ")
}

func (o Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// OutcomeError is returned for every outcome other than success.
type OutcomeError struct {
	Outcome Outcome
}

func (e *OutcomeError) Error() string {
	o := e.Outcome

	switch o.Status {
	case StatusExternalFailure:
		return fmt.Sprintf("command '%s' failed, exit-code=%d", o.CommandLine(), o.ExitCode)
	case StatusProgramNotFound:
		return fmt.Sprintf("program '%s' not found", o.Program)
	case StatusLaunchFailed:
		return fmt.Sprintf("failed to run '%s': %v", o.CommandLine(), o.Err)
	case StatusTimeout:
		return fmt.Sprintf("command '%s' timed out after %s", o.CommandLine(), o.Timeout)
	default:
		return fmt.Sprintf("'%s' likely crashed, returned code %d", o.CommandLine(), o.ExitCode)
	}
}

func (e *OutcomeError) Fatal() bool {
	return e.Outcome.Status.Fatal()
}
