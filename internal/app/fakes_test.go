package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"projectflow_reminder/internal/domain/reminder"
	"projectflow_reminder/internal/domain/schedule"
	"projectflow_reminder/internal/domain/workitem"
	idb "projectflow_reminder/internal/infra/database"
)

func newTestLogger() (*logrus.Entry, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(l), hook
}

type memorySlot struct {
	mu     sync.Mutex
	values map[string][]byte
	puts   int
	getErr error
	putErr error
}

func newMemorySlot() *memorySlot {
	return &memorySlot{values: map[string][]byte{}}
}

func (s *memorySlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memorySlot) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *memorySlot) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

type fakeProbe struct {
	results map[string]idb.CheckResult
}

func (p *fakeProbe) Exists(ctx context.Context, collection string) idb.CheckResult {
	if r, ok := p.results[collection]; ok {
		return r
	}
	return idb.CheckResult{Collection: collection, Exists: true}
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules []*schedule.Schedule
	err       error
	calls     int
	lastDay   time.Time
}

func (r *fakeScheduleRepo) ListOpenCoveringDay(ctx context.Context, userID string, day time.Time) ([]*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.lastDay = day
	return r.schedules, r.err
}

func (r *fakeScheduleRepo) ListOpenByOwner(ctx context.Context, userID string) ([]*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.schedules, r.err
}

func (r *fakeScheduleRepo) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeWorkItemRepo struct {
	items []*workitem.WorkItem
	err   error
	calls int
}

func (r *fakeWorkItemRepo) ListOpenByAssignee(ctx context.Context, assigneeID string) ([]*workitem.WorkItem, error) {
	r.calls++
	return r.items, r.err
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []reminder.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, note reminder.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, note)
}

func (n *recordingNotifier) All() []reminder.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]reminder.Notification(nil), n.got...)
}

type fakeCapability struct {
	mu        sync.Mutex
	initial   reminder.Permission
	resolve   reminder.Permission
	resolveFn func() // called on each request, before returning
	requests  int
	presented []reminder.PresentOptions
	titles    []string
	err       error
}

func (c *fakeCapability) Permission() reminder.Permission { return c.initial }

func (c *fakeCapability) RequestPermission(ctx context.Context) (reminder.Permission, error) {
	if c.resolveFn != nil {
		c.resolveFn()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	return c.resolve, nil
}

func (c *fakeCapability) Present(ctx context.Context, title string, opts reminder.PresentOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titles = append(c.titles, title)
	c.presented = append(c.presented, opts)
	return c.err
}

func (c *fakeCapability) Requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}

func (c *fakeCapability) Presented() []reminder.PresentOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]reminder.PresentOptions(nil), c.presented...)
}

func testRuleDeps(probe CollectionProbe, cache *RemindedCache, notifier Notifier) ruleDeps {
	log, _ := newTestLogger()
	return ruleDeps{probe: probe, cache: cache, notifier: notifier, log: log}
}

func emptyCache() *RemindedCache {
	log, _ := newTestLogger()
	return LoadRemindedCache(context.Background(), newMemorySlot(), log)
}
