package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"projectflow_reminder/internal/app"
)

// DefaultPollSpec re-evaluates reminders every minute.
const DefaultPollSpec = "@every 60s"

// EngineFactory builds the engine of a newly logged-in user.
type EngineFactory func(userID string) *app.ReminderEngine

// ReminderScheduler owns the polling loop. At most one loop is active.
type ReminderScheduler struct {
	newEngine EngineFactory
	spec      string
	logger    *logrus.Entry

	mu         sync.Mutex
	cronEngine *cron.Cron
	engine     *app.ReminderEngine
}

func NewReminderScheduler(newEngine EngineFactory, spec string, logger *logrus.Entry) (*ReminderScheduler, error) {
	if spec == "" {
		spec = DefaultPollSpec
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid reminder poll spec %q: %w", spec, err)
	}
	return &ReminderScheduler{
		newEngine: newEngine,
		spec:      spec,
		logger:    logger.WithField("component", "reminder_scheduler"),
	}, nil
}

// Start begins periodic evaluation for userID. An empty userID is ignored.
// A running loop is stopped first. The first pass runs immediately.
func (s *ReminderScheduler) Start(userID string) {
	if userID == "" {
		s.logger.Debug("No user, reminder loop not started")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	engine := s.newEngine(userID)
	c := cron.New(cron.WithLocation(time.Local))
	if _, err := c.AddFunc(s.spec, func() {
		engine.RunPass(context.Background())
	}); err != nil {
		s.logger.WithError(err).Error("Could not schedule reminder loop")
		return
	}

	s.cronEngine = c
	s.engine = engine
	c.Start()
	go engine.RunPass(context.Background())

	s.logger.WithFields(logrus.Fields{"user_id": userID, "spec": s.spec}).Info("Reminder loop started")
}

// Stop cancels the pending trigger. Passes already running finish on their own.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// ActiveUser returns the user of the running loop, or "".
func (s *ReminderScheduler) ActiveUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return ""
	}
	return s.engine.UserID()
}

func (s *ReminderScheduler) stopLocked() {
	if s.cronEngine == nil {
		return
	}
	s.cronEngine.Stop()
	s.logger.WithField("user_id", s.engine.UserID()).Info("Reminder loop stopped")
	s.cronEngine = nil
	s.engine = nil
}
