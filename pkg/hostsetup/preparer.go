package hostsetup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrPermissionDenied = errors.New("must be run as root")

type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Preparer creates missing host side files after asking the operator.
type Preparer struct {
	logger logrus.FieldLogger

	in        *bufio.Reader
	out       io.Writer
	assumeYes bool

	euid   func() int
	runner commandRunner
}

func NewPreparer(logger logrus.FieldLogger, in io.Reader, out io.Writer, assumeYes bool) *Preparer {
	return &Preparer{
		logger:    logger,
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
		euid:      os.Geteuid,
		runner:    execRunner{},
	}
}

// Check never prompts, it only reports the files that are missing.
func (p *Preparer) Check(files []File) []File {
	var missing []File

	for _, f := range files {
		if exists(f.Path) {
			continue
		}

		p.logger.WithField("path", f.Path).
			Warnf("Can't find %s file, run the setup command to create it", f.Name)
		missing = append(missing, f)
	}

	return missing
}

// EnsureAll runs Ensure for every file and stops at the first error.
func (p *Preparer) EnsureAll(ctx context.Context, files []File) error {
	for _, f := range files {
		if err := p.Ensure(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (p *Preparer) Ensure(ctx context.Context, f File) error {
	logger := p.logger.WithField("path", f.Path)

	if exists(f.Path) {
		logger.Debugf("%s file already exists", f.Name)
		return nil
	}

	logger.Errorf("Can't find %s file", f.Name)

	answer := p.assumeYes
	if !answer {
		var err error

		answer, err = p.confirm(fmt.Sprintf("Do you want to create %s file?", f.Path))
		if err != nil {
			return err
		}
	}

	if !answer {
		logger.Warnf("Skipping %s file, %s integration stays disabled", f.Name, f.Name)
		return nil
	}

	if p.euid() != 0 {
		logger.Errorf("Can't create %s file: must be run as root", f.Name)
		return errors.Wrapf(ErrPermissionDenied, "can't create %s file %s", f.Name, f.Path)
	}

	logger.Infof("Trying to create %s file", f.Name)

	if err := os.WriteFile(f.Path, []byte(f.Content), 0644); err != nil {
		return errors.Wrapf(err, "unable to write %s file", f.Name)
	}

	logger.Infof("Successfully created %s file", f.Name)

	p.activate(ctx, f)

	return nil
}

func (p *Preparer) activate(ctx context.Context, f File) {
	if len(f.Activate) == 0 {
		return
	}

	logger := p.logger.WithField("command", strings.Join(f.Activate, " "))

	out, err := p.runner.Run(ctx, f.Activate[0], f.Activate[1:]...)
	if err != nil {
		logger.WithError(err).WithField("output", string(out)).Errorf("Unable to activate %s file", f.Name)
		return
	}

	logger.WithField("output", string(out)).Infof("Activated %s file", f.Name)
}

// confirm asks until the operator answers yes or no. End of input counts as no.
func (p *Preparer) confirm(question string) (bool, error) {
	prompt := question

	for {
		fmt.Fprintf(p.out, "%s (y/n): ", prompt)

		line, err := p.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, errors.Wrap(err, "unable to read answer")
		}

		reply := strings.ToLower(strings.TrimSpace(line))

		switch {
		case strings.HasPrefix(reply, "y"):
			return true, nil
		case strings.HasPrefix(reply, "n"):
			return false, nil
		case err == io.EOF:
			fmt.Fprintln(p.out)
			return false, nil
		}

		prompt = "Please answer yes or no."
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
