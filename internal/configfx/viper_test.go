package configfx

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const settingsFile = `[Global]
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
logfile = /var/log/s3duplicity-backup.log
arnsns = arn:aws:sns:eu-west-1:123456789012:backups
timeout = 2h

[Log]
level = debug
`

func flagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))

	return fs
}

func writeSettings(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "s3duplicity-settings.ini")
	require.NoError(t, ioutil.WriteFile(path, []byte(settingsFile), 0600))

	return path
}

func TestLoad(t *testing.T) {
	v, s, err := Load(flagSet(t, "-c", writeSettings(t)))

	require.NoError(t, err)
	assert.Equal(t, "bucket/path", s.TargetURL)
	assert.Equal(t, 2*time.Hour, v.GetDuration(ConfigTimeout))
	assert.Equal(t, "debug", v.GetString(ConfigLogLevel))
	assert.Equal(t, "/usr/bin/duplicity", v.GetString("options.duplicity"))
	assert.True(t, v.GetBool("log.syslog"))
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	v, _, err := Load(flagSet(t, "--config", writeSettings(t), "--timeout", "5m", "--log-level", "warn"))

	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, v.GetDuration(ConfigTimeout))
	assert.Equal(t, "warn", v.GetString(ConfigLogLevel))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("S3DUPLICITY_OPTIONS_DUPLICITY", "/opt/bin/duplicity")

	v, _, err := Load(flagSet(t, "-c", writeSettings(t)))

	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/duplicity", v.GetString("options.duplicity"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(flagSet(t, "-c", filepath.Join(t.TempDir(), "missing.ini")))

	assert.Equal(t, settings.ErrConfigMissing, errors.Cause(err))
}
