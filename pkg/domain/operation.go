package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

type Operation int

const (
	OperationNone Operation = iota

	// Lists the files contained in the most current backup
	OperationList

	// Backs the source directory up to the bucket
	OperationBackup

	// Deletes backup sets older than the configured remove time
	OperationPrune

	// Restores the backup at the configured time into the restore directory
	OperationRestore
)

var operationNames = map[Operation]string{
	OperationList:    "lists3",
	OperationBackup:  "s3backup",
	OperationPrune:   "remove",
	OperationRestore: "restore",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "none"
}

// ParseOperation maps a command line / config name onto an Operation.
func ParseOperation(name string) (Operation, error) {
	for op, n := range operationNames {
		if n == name {
			return op, nil
		}
	}
	return OperationNone, errors.Errorf("unknown operation '%s'", name)
}

const (
	ModifierDryRun      = "--dry-run"
	ModifierIncremental = "incr"
)

var ErrUsage = errors.New("command line error: enter '--help' for help screen")

// Selection holds the mutually exclusive operation flags as given by the user.
type Selection struct {
	List    bool
	Backup  bool
	Prune   bool
	Restore bool
}

func (s Selection) operations() []Operation {
	var ops []Operation

	if s.List {
		ops = append(ops, OperationList)
	}
	if s.Backup {
		ops = append(ops, OperationBackup)
	}
	if s.Prune {
		ops = append(ops, OperationPrune)
	}
	if s.Restore {
		ops = append(ops, OperationRestore)
	}

	return ops
}

type Request struct {
	Operation Operation

	// Modifier tokens in the order they were given on the command line
	Modifiers []string

	// Overrides the configured restore time when non-empty
	RestoreTime string
}

// NewRequest validates a selection and its modifiers. Every failure wraps ErrUsage.
func NewRequest(sel Selection, modifiers []string, restoreTime string) (Request, error) {
	ops := sel.operations()
	if len(ops) != 1 {
		return Request{}, errors.Wrapf(ErrUsage, "exactly one operation must be selected, got %d", len(ops))
	}

	op := ops[0]

	for _, m := range modifiers {
		switch {
		case m != ModifierDryRun && m != ModifierIncremental:
			return Request{}, errors.Wrapf(ErrUsage, "unknown modifier '%s'", m)
		case op == OperationList:
			return Request{}, errors.Wrapf(ErrUsage, "--%s does not accept modifiers", op)
		case m == ModifierIncremental && op != OperationBackup:
			return Request{}, errors.Wrapf(ErrUsage, "--incr is only valid with --%s", OperationBackup)
		}
	}

	if restoreTime != "" && op != OperationRestore {
		return Request{}, errors.Wrapf(ErrUsage, "--restore-time is only valid with --%s", OperationRestore)
	}

	return Request{
		Operation:   op,
		Modifiers:   append([]string(nil), modifiers...),
		RestoreTime: restoreTime,
	}, nil
}

func (r Request) String() string {
	return fmt.Sprintf("%s %v", r.Operation, r.Modifiers)
}
