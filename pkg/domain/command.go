package domain

import (
	"github.com/pkg/errors"

	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

const TargetScheme = "s3+http://"

func target(s *settings.Settings) string {
	return TargetScheme + s.TargetURL
}

func commonOptions(s *settings.Settings) []string {
	return []string{
		"--no-encryption",
		"--file-prefix", s.FilePrefix,
		"--s3-european-buckets",
		"--s3-use-new-style",
	}
}

// BuildArgs returns the engine argument vector for a request. Every option
// and its value are separate elements, nothing is ever passed through a shell.
func BuildArgs(req Request, s *settings.Settings) ([]string, error) {
	var args []string

	switch req.Operation {
	case OperationList:
		args = append(args, "list-current-files")
		args = append(args, commonOptions(s)...)
		args = append(args, target(s))

	case OperationBackup:
		args = append(args, req.Modifiers...)
		args = append(args, "--full-if-older-than", s.FullIfOlderThan)
		args = append(args, commonOptions(s)...)
		args = append(args, "--volsize", s.VolSize, s.SourceDirectory, target(s))

	case OperationPrune:
		args = append(args, req.Modifiers...)
		args = append(args, "remove-older-than", s.RemoveTime)
		args = append(args, commonOptions(s)...)
		args = append(args, target(s), "--force")

	case OperationRestore:
		restoreTime := s.RestoreTime
		if req.RestoreTime != "" {
			restoreTime = req.RestoreTime
		}

		args = append(args, req.Modifiers...)
		args = append(args, "-t", restoreTime)
		args = append(args, commonOptions(s)...)
		args = append(args, target(s), s.RestoreDir)

	default:
		return nil, errors.Wrapf(ErrUsage, "unsupported operation '%s'", req.Operation)
	}

	return args, nil
}
