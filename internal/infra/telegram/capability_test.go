package telegram

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"

	"projectflow_reminder/internal/app"
	"projectflow_reminder/internal/domain/reminder"
	"projectflow_reminder/internal/domain/schedule"
	"projectflow_reminder/internal/domain/workitem"
	idb "projectflow_reminder/internal/infra/database"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeClient struct {
	mu        sync.Mutex
	sent      []sentMessage
	sendErr   error
	chatErr   error
	chatDelay time.Duration
	lookedUp  []int64
}

func (f *fakeClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeClient) ChatReachable(chatID int64) error {
	time.Sleep(f.chatDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookedUp = append(f.lookedUp, chatID)
	return f.chatErr
}

func (f *fakeClient) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func testEntry() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func TestNotificationCapability_RequestPermission(t *testing.T) {
	ctx := context.Background()

	c := NewNotificationCapability(&fakeClient{}, 55, testEntry())
	assert.Equal(t, reminder.PermissionGranted, c.Permission())
	p, err := c.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionGranted, p)

	failing := &fakeClient{chatErr: errors.New("chat not found")}
	c = NewNotificationCapability(failing, 55, testEntry())
	assert.Equal(t, reminder.PermissionDenied, c.Permission())

	failing.mu.Lock()
	failing.chatErr = nil
	failing.mu.Unlock()
	p, err = c.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionGranted, p)
	assert.Equal(t, reminder.PermissionGranted, c.Permission())

	client := &fakeClient{}
	c = NewNotificationCapability(client, 0, testEntry())
	assert.Equal(t, reminder.PermissionDenied, c.Permission())
	p, err = c.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionDenied, p)
	assert.Empty(t, client.lookedUp)
}

func TestNotificationCapability_PresentCollapsesTags(t *testing.T) {
	client := &fakeClient{}
	c := NewNotificationCapability(client, 55, testEntry())
	ctx := context.Background()

	require.NoError(t, c.Present(ctx, "🔔 Schedule reminder: Dentist", reminder.PresentOptions{Body: "Date: 2026-10-14", Tag: "schedule-1"}))
	require.NoError(t, c.Present(ctx, "🔔 Schedule reminder: Dentist", reminder.PresentOptions{Body: "Date: 2026-10-14", Tag: "schedule-1"}))
	require.NoError(t, c.Present(ctx, "untagged", reminder.PresentOptions{}))

	require.Len(t, client.sent, 2)
	assert.Equal(t, sentMessage{chatID: 55, text: "🔔 Schedule reminder: Dentist\n\nDate: 2026-10-14"}, client.sent[0])
	assert.Equal(t, "untagged", client.sent[1].text)
}

func TestNotificationCapability_FailedSendDoesNotCollapse(t *testing.T) {
	client := &fakeClient{sendErr: errors.New("bot was blocked by the user")}
	c := NewNotificationCapability(client, 55, testEntry())
	ctx := context.Background()

	assert.Error(t, c.Present(ctx, "t", reminder.PresentOptions{Tag: "workitem-3"}))

	client.sendErr = nil
	require.NoError(t, c.Present(ctx, "t", reminder.PresentOptions{Tag: "workitem-3"}))
	assert.Len(t, client.sent, 1)
}

type openCollections struct{}

func (openCollections) Exists(_ context.Context, collection string) idb.CheckResult {
	return idb.CheckResult{Collection: collection, Exists: true}
}

type todaySchedules struct{ s *schedule.Schedule }

func (r todaySchedules) ListOpenCoveringDay(context.Context, string, time.Time) ([]*schedule.Schedule, error) {
	return []*schedule.Schedule{r.s}, nil
}

func (r todaySchedules) ListOpenByOwner(context.Context, string) ([]*schedule.Schedule, error) {
	return []*schedule.Schedule{r.s}, nil
}

type noWorkItems struct{}

func (noWorkItems) ListOpenByAssignee(context.Context, string) ([]*workitem.WorkItem, error) {
	return nil, nil
}

type memorySlot struct{ values map[string][]byte }

func (s *memorySlot) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memorySlot) Put(_ context.Context, key string, value []byte) error {
	s.values[key] = value
	return nil
}

func (s *memorySlot) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func TestNotificationCapability_FirstPassAfterRestartIsSent(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	today := sql.NullTime{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), Valid: true}

	client := &fakeClient{chatDelay: 100 * time.Millisecond}
	capability := NewNotificationCapability(client, 55, testEntry())
	dispatcher := app.NewDispatcher(ctx, capability, testEntry())

	deps := app.EngineDeps{
		Probe:    openCollections{},
		Cache:    app.LoadRemindedCache(ctx, &memorySlot{values: map[string][]byte{}}, testEntry()),
		Notifier: dispatcher,
		Schedules: todaySchedules{s: &schedule.Schedule{
			ID: 9, Title: "Dentist", Status: schedule.StatusPending,
			StartDate: today, EndDate: today, CreatedAt: now,
		}},
		WorkItems: noWorkItems{},
		Logger:    testEntry(),
	}
	deps.NewEngine("user-1").RunPass(ctx)

	assert.Equal(t, reminder.PermissionGranted, dispatcher.Permission())
	sent := client.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].text, "Dentist")
	assert.Equal(t, 1, deps.Cache.Len())
}
