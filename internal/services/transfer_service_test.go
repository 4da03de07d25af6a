package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskfollowup/internal/models"
)

var testScope = models.Scope{AcademicDirectorID: "dir", SchoolID: "school", RncpTitleID: "title", ClassID: "class"}

func scoped(id string, tasks ...string) models.HistoryReminder {
	return models.HistoryReminder{
		ID:                 id,
		AcademicDirectorID: testScope.AcademicDirectorID,
		SchoolID:           testScope.SchoolID,
		RncpTitleID:        testScope.RncpTitleID,
		ClassID:            testScope.ClassID,
		TaskIDs:            pq.StringArray(tasks),
	}
}

func newTransferService(store *fakeHistoryStore, tasks *fakeTasks) (*TransferService, *test.Hook) {
	log, hook := test.NewNullLogger()
	return NewTransferService(store, tasks, NewProgressCalculator(store, tasks), log), hook
}

func TestCountTransferredTasksPartitionsAndRecalculates(t *testing.T) {
	store := newFakeHistoryStore(scoped("h1", "t1", "t2", "t3"))
	svc, _ := newTransferService(store, &fakeTasks{status: map[string]string{"t1": "done", "t2": "todo", "t3": "done"}})

	summary, err := svc.CountTransferredTasks(context.Background(), TransferRequest{Scope: testScope})
	require.NoError(t, err)

	assert.Equal(t, TransferSummary{Updated: 1}, summary)
	h := store.records["h1"]
	assert.Equal(t, pq.StringArray{"t1", "t3"}, h.TaskIDs)
	assert.Equal(t, pq.StringArray{"t2"}, h.TransferedTaskIDs)
	require.NotNil(t, h.TotalTaskTransfered)
	assert.Equal(t, 1, *h.TotalTaskTransfered)
	require.NotNil(t, h.PercentageTaskAfterSend)
	assert.Equal(t, 100.0, *h.PercentageTaskAfterSend)
	assert.Equal(t, 2, *h.TaskDone)
	assert.Equal(t, []string{"partition:h1", "progress:h1"}, store.writes)
}

func TestCountTransferredTasksAllTodo(t *testing.T) {
	store := newFakeHistoryStore(scoped("h1", "t1", "t2"))
	svc, _ := newTransferService(store, &fakeTasks{status: map[string]string{"t1": "todo", "t2": "todo"}})

	_, err := svc.CountTransferredTasks(context.Background(), TransferRequest{Scope: testScope})
	require.NoError(t, err)

	h := store.records["h1"]
	assert.Empty(t, h.TaskIDs)
	assert.NotNil(t, h.TaskIDs)
	assert.Equal(t, pq.StringArray{"t1", "t2"}, h.TransferedTaskIDs)
	assert.Equal(t, 2, *h.TotalTaskTransfered)
	assert.Equal(t, 0.0, *h.PercentageTaskAfterSend)
	assert.Equal(t, 0, *h.TaskDone)
}

func TestCountTransferredTasksSkipsEmptyAndOutOfScope(t *testing.T) {
	other := scoped("h3", "t9")
	other.ClassID = "another-class"
	store := newFakeHistoryStore(scoped("h1"), scoped("h2", "t1"), other)
	svc, _ := newTransferService(store, &fakeTasks{status: map[string]string{"t1": "done", "t9": "todo"}})

	summary, err := svc.CountTransferredTasks(context.Background(), TransferRequest{Scope: testScope})
	require.NoError(t, err)

	assert.Equal(t, TransferSummary{Updated: 1, Skipped: 1}, summary)
	assert.Equal(t, []string{"partition:h2", "progress:h2"}, store.writes)
	assert.Nil(t, store.records["h1"].TotalTaskTransfered)
	assert.Equal(t, pq.StringArray{"t9"}, store.records["h3"].TaskIDs)
}

func TestCountTransferredTasksDropsUnknownStatuses(t *testing.T) {
	store := newFakeHistoryStore(scoped("h1", "t1", "t2"))
	svc, hook := newTransferService(store, &fakeTasks{status: map[string]string{"t1": "done", "t2": "archived"}})

	summary, err := svc.CountTransferredTasks(context.Background(), TransferRequest{Scope: testScope})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DroppedTasks)
	assert.Equal(t, pq.StringArray{"t1"}, store.records["h1"].TaskIDs)
	assert.Empty(t, store.records["h1"].TransferedTaskIDs)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["history_reminder_id"] == "h1" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestCountTransferredTasksStopsOnFirstError(t *testing.T) {
	store := newFakeHistoryStore(scoped("h1", "t1"), scoped("h2", "t2"))
	store.failWrite = "h1"
	svc, _ := newTransferService(store, &fakeTasks{status: map[string]string{"t1": "done", "t2": "done"}})

	summary, err := svc.CountTransferredTasks(context.Background(), TransferRequest{Scope: testScope})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "h1")
	assert.Equal(t, 0, summary.Updated)
	assert.Empty(t, store.writes)
}

func TestCountTransferredTasksPropagatesLookupError(t *testing.T) {
	store := newFakeHistoryStore(scoped("h1", "t1"))
	lookupErr := errors.New("connection reset")
	svc, _ := newTransferService(store, &fakeTasks{err: lookupErr})

	_, err := svc.CountTransferredTasks(context.Background(), TransferRequest{Scope: testScope})

	assert.ErrorIs(t, err, lookupErr)
}

func TestProgressCalculator(t *testing.T) {
	tasks := &fakeTasks{status: map[string]string{"t1": "done", "t2": "todo", "t3": "todo"}}
	calc := NewProgressCalculator(newFakeHistoryStore(scoped("h1", "t1", "t2", "t3"), scoped("empty")), tasks)

	p, err := calc.Calculate(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, Progress{Percentage: 33.33, TaskDone: 1}, p)

	p, err = calc.Calculate(context.Background(), "empty")
	require.NoError(t, err)
	assert.Equal(t, Progress{}, p)

	_, err = calc.Calculate(context.Background(), "missing")
	assert.Error(t, err)
}

func TestProgressWorkerRefreshContinuesPastFailures(t *testing.T) {
	store := newFakeHistoryStore(scoped("h1", "t1"), scoped("h2"), scoped("h3", "t3"))
	store.failWrite = "h1"
	tasks := &fakeTasks{status: map[string]string{"t1": "done", "t3": "done"}}
	log, _ := test.NewNullLogger()
	worker := NewProgressWorker(store, NewProgressCalculator(store, tasks), log, "@every 1h")

	refreshed, err := worker.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, refreshed)
	assert.Equal(t, 100.0, *store.records["h3"].PercentageTaskAfterSend)
	assert.Nil(t, store.records["h2"].PercentageTaskAfterSend)
}

func TestProgressWorkerRejectsBadSpec(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := newFakeHistoryStore()
	worker := NewProgressWorker(store, NewProgressCalculator(store, &fakeTasks{}), log, "not a spec")

	assert.Error(t, worker.Start())
}
