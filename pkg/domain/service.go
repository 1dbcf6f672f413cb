package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const (
	DefaultProgram = "/usr/bin/duplicity"

	SubjectFailure = "Duplicity backup Error."
	SubjectSuccess = "Duplicity backup completed."
)

type NotifyPolicy string

const (
	NotifyNever   NotifyPolicy = "never"
	NotifyFailure NotifyPolicy = "failure"
	NotifyAlways  NotifyPolicy = "always"
)

type CommandRunner interface {
	Run(ctx context.Context, program string, args []string) ExecResult
}

type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

type DispatcherConfig struct {
	Program string
	Timeout time.Duration
	Notify  NotifyPolicy
}

// Dispatcher turns a Request into exactly one engine run, classifies the
// result, logs it and optionally notifies about it.
type Dispatcher struct {
	logger logrus.FieldLogger

	settings *settings.Settings
	config   DispatcherConfig

	runner   CommandRunner
	notifier Notifier

	now func() time.Time
}

func NewDispatcher(
	logger logrus.FieldLogger,
	settings *settings.Settings,
	config DispatcherConfig,
	runner CommandRunner,
	notifier Notifier,
) *Dispatcher {
	if config.Program == "" {
		config.Program = DefaultProgram
	}
	if config.Notify == "" {
		config.Notify = NotifyFailure
	}

	return &Dispatcher{
		logger:   logger,
		settings: settings,
		config:   config,
		runner:   runner,
		notifier: notifier,
		now:      time.Now,
	}
}

// Dispatch runs the engine for req. The returned error is an *OutcomeError
// for every outcome but success, or wraps ErrUsage when no argument vector
// could be built.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Outcome, error) {
	ctx = appcontext.WithOperation(ctx, req.Operation.String())
	logger := appcontext.LoggerFromContext(d.logger, ctx)

	args, err := BuildArgs(req, d.settings)
	if err != nil {
		return Outcome{Operation: req.Operation}, err
	}

	outcome := Outcome{
		Operation: req.Operation,
		Program:   d.config.Program,
		Args:      args,
		Timeout:   d.config.Timeout,
	}

	runCtx := ctx
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	logger.WithField("command", outcome.CommandLine()).Info("Start duplicity")

	outcome.StartedAt = d.now()
	res := d.runner.Run(runCtx, d.config.Program, args)
	outcome.FinishedAt = d.now()

	outcome.ExitCode = res.ExitCode
	outcome.Stdout = res.Stdout
	outcome.Stderr = res.Stderr
	outcome.Err = res.StartErr
	outcome.Status = classifyResult(res)

	d.report(ctx, outcome)

	if outcome.Status != StatusSuccess {
		return outcome, &OutcomeError{Outcome: outcome}
	}

	return outcome, nil
}

func (d *Dispatcher) report(ctx context.Context, o Outcome) {
	logger := appcontext.LoggerFromContext(d.logger, ctx).WithFields(logrus.Fields{
		"exit_code": o.ExitCode,
		"status":    o.Status.String(),
		"duration":  o.Duration().String(),
	})

	switch o.Status {
	case StatusSuccess:
		logger.Infof("command '%s' succeeded, returned: %s", o.CommandLine(), o.Stdout)
	case StatusExternalFailure:
		logger.Errorf("command '%s' failed, exit-code=%d error = %s", o.CommandLine(), o.ExitCode, o.Stderr)
	case StatusProgramNotFound:
		logger.Errorf("program '%s' not found: %s", o.Program, notFoundDetail(o))
	default:
		logger.WithError(o.Err).Error((&OutcomeError{Outcome: o}).Error())
	}

	if !d.shouldNotify(o.Status) {
		return
	}

	subject := SubjectFailure
	if o.Status == StatusSuccess {
		subject = SubjectSuccess
	}

	if err := d.notifier.Notify(ctx, subject, notificationMessage(o)); err != nil {
		logger.WithError(err).Error("Unable to send notification")
	}
}

func (d *Dispatcher) shouldNotify(status Status) bool {
	switch d.config.Notify {
	case NotifyNever:
		return false
	case NotifyAlways:
		return true
	default:
		return status != StatusSuccess
	}
}

func notFoundDetail(o Outcome) string {
	if o.Err != nil {
		return o.Err.Error()
	}
	return o.Stderr
}

func notificationMessage(o Outcome) string {
	output := o.Stderr
	if o.Status == StatusSuccess {
		output = o.Stdout
	}
	if o.Err != nil {
		output = o.Err.Error()
	}

	return fmt.Sprintf(
		"Operation: %s\nStatus: %s\nCommand: %s\nExit code: %d\nStarted at: %s\nDuration: %s\n\n%s",
		o.Operation,
		o.Status,
		o.CommandLine(),
		o.ExitCode,
		o.StartedAt.UTC().Format(time.RFC3339),
		o.Duration(),
		output,
	)
}
