package services

import (
	"context"
	"errors"
	"sync"

	"taskfollowup/internal/models"
)

type fakeLister struct {
	records []models.HistoryReminder
	pages   []models.Pagination
	err     error
}

func (f *fakeLister) List(_ context.Context, _ models.HistoryFilter, _ models.HistorySorting, page models.Pagination, _ string) (models.HistoryPage, error) {
	f.pages = append(f.pages, page)
	if f.err != nil {
		return models.HistoryPage{}, f.err
	}
	start := page.Skip()
	if start > len(f.records) {
		start = len(f.records)
	}
	end := start + page.Limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return models.HistoryPage{Records: f.records[start:end], Total: int64(len(f.records))}, nil
}

type fakeDirectory struct {
	templates map[string]models.TemplateReminder
	titles    map[string]models.RncpTitle
	classes   map[string]models.Class
	schools   map[string]models.School
	users     map[string]models.User
	calls     int
}

func (f *fakeDirectory) TemplatesByID(context.Context, []string) (map[string]models.TemplateReminder, error) {
	f.calls++
	return f.templates, nil
}

func (f *fakeDirectory) RncpTitlesByID(context.Context, []string) (map[string]models.RncpTitle, error) {
	f.calls++
	return f.titles, nil
}

func (f *fakeDirectory) ClassesByID(context.Context, []string) (map[string]models.Class, error) {
	f.calls++
	return f.classes, nil
}

func (f *fakeDirectory) SchoolsByID(context.Context, []string) (map[string]models.School, error) {
	f.calls++
	return f.schools, nil
}

func (f *fakeDirectory) UsersByID(context.Context, []string) (map[string]models.User, error) {
	f.calls++
	return f.users, nil
}

func (f *fakeDirectory) User(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

type fakeStore struct {
	mu      sync.Mutex
	names   []string
	content []byte
	err     error
}

func (f *fakeStore) Upload(_ context.Context, name string, data []byte) (UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	f.content = data
	if f.err != nil {
		return UploadResult{}, f.err
	}
	return UploadResult{Name: name}, nil
}

func (f *fakeStore) uploads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.names)
}

type fakeQueue struct {
	messages []Message
	err      error
}

func (f *fakeQueue) Submit(msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

type fakeTasks struct {
	status map[string]string
	err    error
}

func (f *fakeTasks) TaskIDsWithStatus(_ context.Context, ids []string, status string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, 0)
	for _, id := range ids {
		if f.status[id] == status {
			out = append(out, id)
		}
	}
	return out, nil
}

// fakeHistoryStore keeps records in memory and serves the reconciler, the calculator and the worker
type fakeHistoryStore struct {
	records   map[string]*models.HistoryReminder
	order     []string
	writes    []string
	failWrite string
}

func newFakeHistoryStore(records ...models.HistoryReminder) *fakeHistoryStore {
	s := &fakeHistoryStore{records: map[string]*models.HistoryReminder{}}
	for i := range records {
		r := records[i]
		s.records[r.ID] = &r
		s.order = append(s.order, r.ID)
	}
	return s
}

func (s *fakeHistoryStore) Get(_ context.Context, id string) (*models.HistoryReminder, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, errors.New("history reminder not found")
	}
	cp := *r
	return &cp, nil
}

func (s *fakeHistoryStore) FindByScope(_ context.Context, scope models.Scope) ([]models.HistoryReminder, error) {
	out := make([]models.HistoryReminder, 0)
	for _, id := range s.order {
		r := s.records[id]
		if r.AcademicDirectorID == scope.AcademicDirectorID && r.SchoolID == scope.SchoolID &&
			r.RncpTitleID == scope.RncpTitleID && r.ClassID == scope.ClassID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeHistoryStore) SetTaskPartition(_ context.Context, id string, done, todo []string) error {
	if id == s.failWrite {
		return errors.New("write failed")
	}
	s.writes = append(s.writes, "partition:"+id)
	r := s.records[id]
	r.TaskIDs = done
	r.TransferedTaskIDs = todo
	n := len(todo)
	r.TotalTaskTransfered = &n
	return nil
}

func (s *fakeHistoryStore) SetProgress(_ context.Context, id string, percentage float64, done int) error {
	if id == s.failWrite {
		return errors.New("write failed")
	}
	s.writes = append(s.writes, "progress:"+id)
	r := s.records[id]
	r.PercentageTaskAfterSend = &percentage
	r.TaskDone = &done
	return nil
}

func (s *fakeHistoryStore) EachWithTasks(_ context.Context, batchSize int, fn func([]models.HistoryReminder) error) error {
	var batch []models.HistoryReminder
	for _, id := range s.order {
		if len(s.records[id].TaskIDs) == 0 {
			continue
		}
		batch = append(batch, *s.records[id])
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = nil
		}
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}
