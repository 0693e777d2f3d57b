package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"projectflow_reminder/internal/domain/schedule"
	"projectflow_reminder/internal/domain/workitem"
)

// EngineDeps holds the collaborators shared by every engine instance.
type EngineDeps struct {
	Probe     CollectionProbe
	Cache     *RemindedCache
	Notifier  Notifier
	Schedules schedule.Repository
	WorkItems workitem.Repository
	Clock     func() time.Time // defaults to time.Now
	Logger    *logrus.Entry
}

// ReminderEngine evaluates every reminder rule for one user.
type ReminderEngine struct {
	userID     string
	evaluators []Evaluator
	clock      func() time.Time
	logger     *logrus.Entry
}

// NewEngine builds an engine with fresh evaluator state for userID.
func (d EngineDeps) NewEngine(userID string) *ReminderEngine {
	log := d.Logger.WithFields(logrus.Fields{"component": "reminder_engine", "user_id": userID})
	deps := func(name string) ruleDeps {
		return ruleDeps{probe: d.Probe, cache: d.Cache, notifier: d.Notifier, log: log.WithField("evaluator", name)}
	}

	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}

	return NewReminderEngine(userID, []Evaluator{
		&UpcomingScheduleEvaluator{ruleDeps: deps("upcoming_schedule"), repo: d.Schedules},
		&StagnantScheduleEvaluator{ruleDeps: deps("stagnant_schedule"), repo: d.Schedules},
		&UpcomingWorkItemEvaluator{ruleDeps: deps("upcoming_work_item"), repo: d.WorkItems},
	}, clock, log)
}

func NewReminderEngine(userID string, evaluators []Evaluator, clock func() time.Time, logger *logrus.Entry) *ReminderEngine {
	return &ReminderEngine{userID: userID, evaluators: evaluators, clock: clock, logger: logger}
}

func (e *ReminderEngine) UserID() string { return e.userID }

// RunPass runs all evaluators concurrently and returns once every one of them
// has finished. A failing evaluator does not affect the others.
func (e *ReminderEngine) RunPass(ctx context.Context) {
	now := e.clock()
	var g errgroup.Group
	for _, ev := range e.evaluators {
		g.Go(func() error {
			logCtx := e.logger.WithField("evaluator", ev.Name())
			defer func() {
				if r := recover(); r != nil {
					logCtx.WithField("panic", fmt.Sprint(r)).Error("Evaluator panicked")
				}
			}()
			if err := ev.Evaluate(ctx, e.userID, now); err != nil {
				logCtx.WithError(err).Warn("Reminder check failed, retrying next tick")
			}
			return nil
		})
	}
	_ = g.Wait()
}
