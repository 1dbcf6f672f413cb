package domainfx

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
)

const (
	SectionSchedule = "schedule"

	modifiersSuffix = "-modifiers"
)

var schedulable = []domain.Operation{
	domain.OperationBackup,
	domain.OperationPrune,
	domain.OperationList,
}

// LoadRules builds one rule per operation that has a cron spec in the
// [Schedule] section.
func LoadRules(v *viper.Viper) ([]domain.Rule, error) {
	var rules []domain.Rule

	if section := v.Sub(SectionSchedule); section != nil {
		for _, key := range section.AllKeys() {
			op, err := domain.ParseOperation(strings.TrimSuffix(key, modifiersSuffix))
			if err != nil {
				return nil, errors.Wrap(err, "Unable to load schedule")
			}
			if op == domain.OperationRestore {
				return nil, errors.New("Unable to load schedule: restore can't be scheduled")
			}
		}
	}

	for _, op := range schedulable {
		spec := strings.TrimSpace(v.GetString(SectionSchedule + "." + op.String()))
		if spec == "" {
			continue
		}

		modifiers := splitModifiers(v.GetString(SectionSchedule + "." + op.String() + modifiersSuffix))

		// validate the same way the command line does
		if _, err := domain.NewRequest(selection(op), modifiers, ""); err != nil {
			return nil, errors.Wrapf(err, "Invalid schedule for '%s'", op)
		}

		rules = append(rules, domain.Rule{
			Name:      op.String(),
			Operation: op,
			CronSpec:  spec,
			Modifiers: modifiers,
		})
	}

	return rules, nil
}

func splitModifiers(value string) []string {
	var modifiers []string

	for _, m := range strings.Split(value, ",") {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if m == "dry-run" {
			m = domain.ModifierDryRun
		}
		modifiers = append(modifiers, m)
	}

	return modifiers
}

func selection(op domain.Operation) domain.Selection {
	return domain.Selection{
		List:    op == domain.OperationList,
		Backup:  op == domain.OperationBackup,
		Prune:   op == domain.OperationPrune,
		Restore: op == domain.OperationRestore,
	}
}
