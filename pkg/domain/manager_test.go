package domain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
)

// region dispatcherMock
type dispatcherMock struct {
	mock.Mock
}

func (m *dispatcherMock) Dispatch(ctx context.Context, req Request) (Outcome, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(Outcome), args.Error(1)
}

// endregion

// region outcomeRepositoryMock
type outcomeRepositoryMock struct {
	mock.Mock
}

func (m *outcomeRepositoryMock) Save(ctx context.Context, outcome Outcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

// endregion

// region cronMock
// Captures registered funcs so tests can fire them by hand.
type cronMock struct {
	mock.Mock

	mu    sync.Mutex
	funcs []func()
}

func (m *cronMock) AddFunc(spec string, cmd func()) error {
	args := m.Called(spec)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.funcs = append(m.funcs, cmd)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *cronMock) calledFuncs() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]func(){}, m.funcs...)
}

func (m *cronMock) Start() {
	m.Called()
}

func (m *cronMock) Stop() {
	m.Called()
}

// endregion

// region Test: Run
func TestScheduleManager_Run_DispatchesTriggeredRule(t *testing.T) {
	rule := Rule{Name: "nightly", Operation: OperationBackup, CronSpec: "@daily", Modifiers: []string{ModifierIncremental}}
	outcome := Outcome{Operation: OperationBackup, Program: DefaultProgram, Status: StatusSuccess}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &cronMock{}
	c.On("AddFunc", "@daily").Return(nil)
	c.On("Start").Return()
	c.On("Stop").Return()

	d := &dispatcherMock{}
	d.On("Dispatch", mock.MatchedBy(func(ctx context.Context) bool {
		return appcontext.RunIdFromContext(ctx) != ""
	}), Request{Operation: OperationBackup, Modifiers: []string{"incr"}}).Return(outcome, nil)

	repo := &outcomeRepositoryMock{}
	repo.On("Save", mock.Anything, outcome).Run(func(mock.Arguments) { cancel() }).Return(nil)

	m := NewScheduleManager(discardLogger(), []Rule{rule}, d, repo, c)

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return len(c.calledFuncs()) == 1 }, time.Second, 5*time.Millisecond)
	c.calledFuncs()[0]()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("schedule manager did not stop")
	}

	d.AssertExpectations(t)
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestScheduleManager_Run_FailedOutcomeIsStored(t *testing.T) {
	rule := Rule{Name: "prune", Operation: OperationPrune, CronSpec: "@weekly"}
	outcome := Outcome{Operation: OperationPrune, Program: DefaultProgram, Status: StatusExternalFailure, ExitCode: 23}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &cronMock{}
	c.On("AddFunc", "@weekly").Return(nil)
	c.On("Start").Return()
	c.On("Stop").Return()

	d := &dispatcherMock{}
	d.On("Dispatch", mock.Anything, mock.Anything).Return(outcome, &OutcomeError{Outcome: outcome})

	repo := &outcomeRepositoryMock{}
	repo.On("Save", mock.Anything, outcome).Run(func(mock.Arguments) { cancel() }).Return(nil)

	m := NewScheduleManager(discardLogger(), []Rule{rule}, d, repo, c)

	// queued before Run starts reading
	m.enqueue(rule)

	assert.NoError(t, m.Run(ctx))
	repo.AssertExpectations(t)
}

func TestScheduleManager_Run_InvalidSpec(t *testing.T) {
	c := &cronMock{}
	c.On("AddFunc", "not a spec").Return(errors.New("expected 5 to 6 fields"))

	m := NewScheduleManager(discardLogger(), []Rule{{Name: "bad", Operation: OperationList, CronSpec: "not a spec"}}, &dispatcherMock{}, &outcomeRepositoryMock{}, c)

	err := m.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rule 'bad'")
	c.AssertNotCalled(t, "Start")
}

func TestScheduleManager_Run_RestoreIsRejected(t *testing.T) {
	m := NewScheduleManager(discardLogger(), []Rule{{Name: "restore", Operation: OperationRestore, CronSpec: "@daily"}}, &dispatcherMock{}, &outcomeRepositoryMock{}, &cronMock{})

	assert.Error(t, m.Run(context.Background()))
}

func TestScheduleManager_Run_NoRules(t *testing.T) {
	m := NewScheduleManager(discardLogger(), nil, &dispatcherMock{}, &outcomeRepositoryMock{}, &cronMock{})

	assert.Equal(t, ErrNoRules, m.Run(context.Background()))
}

// endregion

// region Test: enqueue
func TestScheduleManager_enqueue_DropsWhenFull(t *testing.T) {
	rule := Rule{Name: "nightly", Operation: OperationBackup, CronSpec: "@daily"}

	m := NewScheduleManager(discardLogger(), []Rule{rule}, &dispatcherMock{}, &outcomeRepositoryMock{}, &cronMock{})

	m.enqueue(rule)
	m.enqueue(rule)

	assert.Len(t, m.queue, 1)
}

func TestScheduleManager_enqueue_OneQueuedRunPerRule(t *testing.T) {
	frequent := Rule{Name: "lists3", Operation: OperationList, CronSpec: "@every 1m"}
	nightly := Rule{Name: "s3backup", Operation: OperationBackup, CronSpec: "@daily"}

	m := NewScheduleManager(discardLogger(), []Rule{frequent, nightly}, &dispatcherMock{}, &outcomeRepositoryMock{}, &cronMock{})

	m.enqueue(frequent)
	m.enqueue(frequent)
	m.enqueue(frequent)
	m.enqueue(nightly)

	require.Len(t, m.queue, 2)
	assert.Equal(t, frequent, <-m.queue)
	assert.Equal(t, nightly, <-m.queue)
}

func TestScheduleManager_enqueue_RequeuesAfterRelease(t *testing.T) {
	rule := Rule{Name: "nightly", Operation: OperationBackup, CronSpec: "@daily"}

	m := NewScheduleManager(discardLogger(), []Rule{rule}, &dispatcherMock{}, &outcomeRepositoryMock{}, &cronMock{})

	m.enqueue(rule)
	m.release(<-m.queue)
	m.enqueue(rule)

	assert.Len(t, m.queue, 1)
}

// endregion
