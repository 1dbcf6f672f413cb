package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

const (
	DefaultPath = "/opt/s3duplicity/s3duplicity-settings.ini"

	SectionGlobal  = "Global"
	SectionOptions = "Options"
)

var ErrConfigMissing = errors.New("config file not found")

// KeyMissingError reports a required key absent from the settings file.
type KeyMissingError struct {
	Section string
	Key     string
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("required key '%s' is missing in section [%s]", e.Key, e.Section)
}

// Settings is the flat set of parameters read from the settings file.
// Values are kept exactly as written.
type Settings struct {
	SourceDirectory string
	TargetURL       string
	RestoreDir      string
	Region          string

	FullIfOlderThan string
	RemoveTime      string
	RestoreTime     string
	FilePrefix      string
	VolSize         string
	LogFile         string
	ArnSns          string
}

type field struct {
	section string
	key     string
	target  func(*Settings) *string
}

var fields = []field{
	{SectionGlobal, "source-directory", func(s *Settings) *string { return &s.SourceDirectory }},
	{SectionGlobal, "target-url", func(s *Settings) *string { return &s.TargetURL }},
	{SectionGlobal, "restore-dir", func(s *Settings) *string { return &s.RestoreDir }},
	{SectionGlobal, "region", func(s *Settings) *string { return &s.Region }},
	{SectionOptions, "full-if-older-than", func(s *Settings) *string { return &s.FullIfOlderThan }},
	{SectionOptions, "remove-time", func(s *Settings) *string { return &s.RemoveTime }},
	{SectionOptions, "restore-time", func(s *Settings) *string { return &s.RestoreTime }},
	{SectionOptions, "file-prefix", func(s *Settings) *string { return &s.FilePrefix }},
	{SectionOptions, "volsize", func(s *Settings) *string { return &s.VolSize }},
	{SectionOptions, "logfile", func(s *Settings) *string { return &s.LogFile }},
	{SectionOptions, "arnsns", func(s *Settings) *string { return &s.ArnSns }},
}

// Key returns the viper key of an entry in the settings file.
func Key(section, key string) string {
	return section + "." + key
}

// FromViper extracts Settings from an already loaded viper instance.
func FromViper(v *viper.Viper) (*Settings, error) {
	s := &Settings{}

	for _, f := range fields {
		k := Key(f.section, f.key)
		if !v.IsSet(k) {
			return nil, &KeyMissingError{Section: f.section, Key: f.key}
		}

		*f.target(s) = v.GetString(k)
	}

	return s, nil
}

// loadOptions keep values exactly as written: an inline '#' or ';' and
// surrounding quotes are part of the value.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	PreserveSurroundedQuote: true,
}

// Read loads the ini file at path into v. Keys of the DEFAULT section are
// inherited by every other section unless the section sets them itself.
func Read(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrConfigMissing, "can't find config file %s", path)
		}
		return errors.Wrapf(err, "unable to stat config file %s", path)
	}

	file, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return errors.Wrapf(err, "unable to parse config file %s", path)
	}

	defaults := file.Section(ini.DefaultSection)
	config := make(map[string]interface{})

	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		values := make(map[string]interface{})
		for _, key := range defaults.Keys() {
			values[strings.ToLower(key.Name())] = key.Value()
		}
		for _, key := range section.Keys() {
			values[strings.ToLower(key.Name())] = key.Value()
		}

		config[strings.ToLower(section.Name())] = values
	}

	if err := v.MergeConfigMap(config); err != nil {
		return errors.Wrapf(err, "unable to load config file %s", path)
	}

	return nil
}

// Load reads the settings file at path.
func Load(path string) (*Settings, error) {
	v := viper.New()

	if err := Read(v, path); err != nil {
		return nil, err
	}

	return FromViper(v)
}
