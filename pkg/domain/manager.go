package domain

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
)

var ErrNoRules = errors.New("no schedule rules configured")

// ScheduleManager fires rules on their cron specs and feeds them into a
// single worker, so two engine runs never overlap. Every rule holds at most
// one queued run, so a frequent rule can't starve the others.
type ScheduleManager struct {
	logger logrus.FieldLogger

	rules []Rule
	queue chan Rule

	mu      sync.Mutex
	pending map[string]bool

	dispatcher dispatcher
	repo       OutcomeRepository

	cron cron
}

type dispatcher interface {
	Dispatch(context.Context, Request) (Outcome, error)
}

type OutcomeRepository interface {
	Save(context.Context, Outcome) error
}

type cron interface {
	AddFunc(spec string, cmd func()) error
	Start()
	Stop()
}

func NewScheduleManager(
	logger logrus.FieldLogger,
	rules []Rule,
	dispatcher dispatcher,
	repo OutcomeRepository,
	cron cron,
) *ScheduleManager {
	return &ScheduleManager{
		logger: logger,

		rules:   rules,
		queue:   make(chan Rule, len(rules)),
		pending: make(map[string]bool, len(rules)),

		dispatcher: dispatcher,
		repo:       repo,

		cron: cron,
	}
}

// Run registers every rule and processes triggered rules until ctx is done.
func (m *ScheduleManager) Run(ctx context.Context) error {
	if len(m.rules) == 0 {
		return ErrNoRules
	}

	for _, rule := range m.rules {
		if rule.Operation == OperationRestore {
			return errors.Errorf("rule '%s': restore can't be scheduled", rule.Name)
		}

		if err := m.registerRule(rule); err != nil {
			return errors.Wrapf(err, "invalid cron spec '%s' for rule '%s'", rule.CronSpec, rule.Name)
		}
	}

	m.logger.WithField("total_rules", len(m.rules)).Debug("Starting cron")
	m.cron.Start()
	defer m.cron.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Stopping schedule manager")
			return nil
		case rule := <-m.queue:
			m.release(rule)
			m.handleRule(ctx, rule)
		}
	}
}

func (m *ScheduleManager) registerRule(rule Rule) error {
	return m.cron.AddFunc(rule.CronSpec, func() {
		m.enqueue(rule)
	})
}

func (m *ScheduleManager) enqueue(rule Rule) {
	logger := m.logger.WithFields(logrus.Fields{"rule": rule.Name, "triggered_at": time.Now()})

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending[rule.Name] {
		logger.Warn("Unable to dispatch scheduled run, previous run of the rule is still queued")
		return
	}

	select {
	case m.queue <- rule:
		m.pending[rule.Name] = true
		logger.Info("Dispatched scheduled run")
	default:
		logger.Warn("Unable to dispatch scheduled run, queue is full")
	}
}

func (m *ScheduleManager) release(rule Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, rule.Name)
}

func (m *ScheduleManager) handleRule(ctx context.Context, rule Rule) {
	ctx = appcontext.WithRunId(appcontext.WithRuleName(ctx, rule.Name), uuid.New().String())
	logger := appcontext.LoggerFromContext(m.logger, ctx)

	logger.Info("Handling scheduled run")

	outcome, err := m.dispatcher.Dispatch(ctx, rule.Request())
	if err != nil {
		// already logged and notified by the dispatcher
		logger.WithError(err).Warn("Scheduled run finished unsuccessfully")
	}

	if outcome.Program == "" {
		return
	}

	if err := m.repo.Save(ctx, outcome); err != nil {
		logger.WithError(err).Error("Unable to store outcome")
	}
}
