package main

import (
	"github.com/pkg/errors"

	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
	"github.com/yurykabanov/s3duplicity-backup/pkg/hostsetup"
	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitFatal   = 3
)

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var outcomeErr *domain.OutcomeError
	if errors.As(err, &outcomeErr) {
		if outcomeErr.Fatal() {
			return ExitFatal
		}
		return ExitFailure
	}

	var keyErr *settings.KeyMissingError
	if errors.As(err, &keyErr) {
		return ExitUsage
	}

	switch errors.Cause(err) {
	case domain.ErrUsage, domain.ErrNoRules, settings.ErrConfigMissing:
		return ExitUsage
	case hostsetup.ErrPermissionDenied:
		return ExitFatal
	}

	return ExitFailure
}

var errScheduleAborted = errors.New("schedule aborted, see the log for details")
