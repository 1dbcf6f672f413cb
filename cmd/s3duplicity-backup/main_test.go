package main

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
	"github.com/yurykabanov/s3duplicity-backup/pkg/hostsetup"
	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const settingsTemplate = `[Global]
source-directory = /srv/data
target-url = bucket/path
restore-dir = /srv/restore
region = eu-west-1

[Options]
full-if-older-than = 3D
remove-time = 2M
restore-time = 1W
file-prefix = bk
volsize = 50
logfile = %s
arnsns =
duplicity = %s
notify = never

[Log]
syslog = false
`

type result struct {
	code   int
	stdout string
	stderr string
	hook   *test.Hook
}

func run(args ...string) result {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var out, errOut bytes.Buffer

	code := execute(context.Background(), logger, args, streams{In: strings.NewReader(""), Out: &out, Err: &errOut})

	return result{code: code, stdout: out.String(), stderr: errOut.String(), hook: hook}
}

// fakeDuplicity writes a settings file pointing at a shell script with the
// given body and returns the settings path.
func fakeDuplicity(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()

	program := filepath.Join(dir, "duplicity")
	require.NoError(t, ioutil.WriteFile(program, []byte("#!/bin/sh\n"+body+"\n"), 0755))

	path := filepath.Join(dir, "s3duplicity-settings.ini")
	content := fmt.Sprintf(settingsTemplate, filepath.Join(dir, "backup.log"), program)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))

	return path
}

func TestExecute_UsageErrors(t *testing.T) {
	// the settings file does not exist, usage errors must be reported before it is read
	missing := filepath.Join(t.TempDir(), "missing.ini")

	cases := map[string][]string{
		"no operation":         {"-c", missing},
		"two operations":       {"-c", missing, "--s3backup", "--remove"},
		"unknown flag":         {"-c", missing, "--backup"},
		"modifier on list":     {"-c", missing, "--lists3", "--dry-run"},
		"incr on restore":      {"-c", missing, "--restore", "--incr"},
		"restore time on list": {"-c", missing, "--lists3", "--restore-time", "3D"},
		"positional argument":  {"-c", missing, "--s3backup", "now"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			r := run(args...)

			assert.Equal(t, ExitUsage, r.code)
			assert.Contains(t, r.stderr, "Error:")
			assert.NotContains(t, r.stderr, "config file not found")
		})
	}
}

func TestExecute_MissingConfig(t *testing.T) {
	r := run("-c", filepath.Join(t.TempDir(), "missing.ini"), "--lists3")

	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "config file not found")
}

func TestExecute_MissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s3duplicity-settings.ini")
	require.NoError(t, ioutil.WriteFile(path, []byte("[Global]\nsource-directory = /srv\n"), 0600))

	r := run("-c", path, "--lists3")

	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "target-url")
}

func TestExecute_Success(t *testing.T) {
	path := fakeDuplicity(t, `echo "$@"`)

	r := run("-c", path, "--lists3")

	assert.Equal(t, ExitSuccess, r.code)
	assert.Equal(t, "list-current-files --no-encryption --file-prefix bk --s3-european-buckets --s3-use-new-style s3+http://bucket/path\n", r.stdout)
	assert.Empty(t, r.stderr)
}

func TestExecute_ModifiersKeepOrder(t *testing.T) {
	path := fakeDuplicity(t, `echo "$@"`)

	r := run("-c", path, "--s3backup", "--incr", "--dry-run", "--incr")

	assert.Equal(t, ExitSuccess, r.code)
	assert.True(t, strings.HasPrefix(r.stdout, "incr --dry-run incr --full-if-older-than 3D "), r.stdout)
}

func TestExecute_RestoreTimeOverride(t *testing.T) {
	path := fakeDuplicity(t, `echo "$@"`)

	r := run("-c", path, "--restore", "--restore-time", "2019-01-01")

	assert.Equal(t, ExitSuccess, r.code)
	assert.True(t, strings.HasPrefix(r.stdout, "-t 2019-01-01 "), r.stdout)
}

func TestExecute_ExternalFailure(t *testing.T) {
	path := fakeDuplicity(t, "echo 'bucket is gone' >&2\nexit 23")

	r := run("-c", path, "--remove")

	assert.Equal(t, ExitFailure, r.code)
	assert.Contains(t, r.stderr, "bucket is gone")
	assert.Contains(t, r.stderr, "exit-code=23")
}

func TestExecute_ProgramNotFoundIsNotFatal(t *testing.T) {
	path := fakeDuplicity(t, "exit 127")

	r := run("-c", path, "--s3backup")

	assert.Equal(t, ExitFailure, r.code)
}

func TestExecute_AbnormalTerminationIsFatal(t *testing.T) {
	path := fakeDuplicity(t, "exit 130")

	r := run("-c", path, "--s3backup")

	assert.Equal(t, ExitFatal, r.code)
	assert.Contains(t, r.stderr, "returned code 130")
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, ExitSuccess},
		{errors.Wrap(domain.ErrUsage, "no operation"), ExitUsage},
		{errors.Wrap(settings.ErrConfigMissing, "/opt"), ExitUsage},
		{&settings.KeyMissingError{Section: "Global", Key: "region"}, ExitUsage},
		{domain.ErrNoRules, ExitUsage},
		{errors.Wrap(hostsetup.ErrPermissionDenied, "rsyslog"), ExitFatal},
		{&domain.OutcomeError{Outcome: domain.Outcome{Status: domain.StatusExternalFailure}}, ExitFailure},
		{&domain.OutcomeError{Outcome: domain.Outcome{Status: domain.StatusProgramNotFound}}, ExitFailure},
		{&domain.OutcomeError{Outcome: domain.Outcome{Status: domain.StatusAbnormalTermination}}, ExitFatal},
		{&domain.OutcomeError{Outcome: domain.Outcome{Status: domain.StatusTimeout}}, ExitFatal},
		{errors.New("something else"), ExitFailure},
	}

	for _, c := range cases {
		assert.Equal(t, c.code, exitCode(c.err), "%v", c.err)
	}
}

func TestModifierFlag(t *testing.T) {
	var modifiers []string

	f := &modifierFlag{token: domain.ModifierIncremental, modifiers: &modifiers}

	require.NoError(t, f.Set("true"))
	require.NoError(t, f.Set("false"))
	require.NoError(t, f.Set("1"))
	assert.Error(t, f.Set("maybe"))

	assert.Equal(t, []string{"incr", "incr"}, modifiers)
	assert.Equal(t, "bool", f.Type())
}

func TestExecute_ScheduleWithoutRules(t *testing.T) {
	path := fakeDuplicity(t, "exit 0")

	r := run("schedule", "-c", path)

	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, domain.ErrNoRules.Error())
}

func TestExecute_ScheduleRejectsRestore(t *testing.T) {
	path := fakeDuplicity(t, "exit 0")

	content, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(path, append(content, []byte("\n[Schedule]\nrestore = @daily\n")...), 0600))

	r := run("schedule", "-c", path)

	assert.Equal(t, ExitFailure, r.code)
	assert.Contains(t, r.stderr, "restore can't be scheduled")
}

func stubSyslog(t *testing.T) *int {
	t.Helper()

	calls := 0
	original := attachSyslog
	attachSyslog = func(*logrus.Logger) error {
		calls++
		return nil
	}
	t.Cleanup(func() { attachSyslog = original })

	return &calls
}

func TestExecute_SetupFollowsSyslogSetting(t *testing.T) {
	disabled := fakeDuplicity(t, "exit 0")

	enabled := fakeDuplicity(t, "exit 0")
	content, err := ioutil.ReadFile(enabled)
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(enabled, []byte(strings.Replace(string(content), "syslog = false", "syslog = true", 1)), 0600))

	cases := map[string]struct {
		path  string
		calls int
	}{
		"syslog enabled":   {enabled, 1},
		"syslog disabled":  {disabled, 0},
		"no settings file": {filepath.Join(t.TempDir(), "missing.ini"), 1},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			calls := stubSyslog(t)

			// stdin is empty, so every prompt is answered with no
			r := run("setup", "-c", c.path)

			assert.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Equal(t, c.calls, *calls)
		})
	}
}
