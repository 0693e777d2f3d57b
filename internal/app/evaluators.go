package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"projectflow_reminder/internal/domain/reminder"
	"projectflow_reminder/internal/domain/schedule"
	"projectflow_reminder/internal/domain/workitem"
	idb "projectflow_reminder/internal/infra/database"
)

const (
	stagnantCheckInterval = time.Hour
	stagnantPendingDays   = 3
	stagnantActiveDays    = 7
	workItemLookahead     = 15 * time.Minute

	dateLayout = "2006-01-02"
)

// Evaluator applies one reminder rule for a user.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, userID string, now time.Time) error
}

// CollectionProbe reports whether a collection can be queried.
type CollectionProbe interface {
	Exists(ctx context.Context, collection string) idb.CheckResult
}

// Notifier receives the notifications decided by the evaluators.
type Notifier interface {
	Notify(ctx context.Context, n reminder.Notification)
}

type ruleDeps struct {
	probe    CollectionProbe
	cache    *RemindedCache
	notifier Notifier
	log      *logrus.Entry
}

// available probes the collection. A missing collection is silent; any other
// probe failure is returned so the pass can log it.
func (d *ruleDeps) available(ctx context.Context, collection string) (bool, error) {
	res := d.probe.Exists(ctx, collection)
	switch {
	case res.Exists:
		return true, nil
	case res.Err != nil:
		return false, fmt.Errorf("probing %s: %w", collection, res.Err)
	default:
		d.log.WithField("collection", collection).Debug("Collection not provisioned, skipping")
		return false, nil
	}
}

// fetchFailed filters out query errors caused by a missing collection.
func (d *ruleDeps) fetchFailed(err error) error {
	if errors.Is(err, reminder.ErrCollectionUnavailable) {
		d.log.WithError(err).Debug("Collection disappeared, skipping")
		return nil
	}
	return err
}

// remind notifies once per id.
func (d *ruleDeps) remind(ctx context.Context, n reminder.Notification) bool {
	if d.cache.Has(n.Tag) {
		return false
	}
	d.notifier.Notify(ctx, n)
	d.cache.Add(ctx, n.Tag)
	return true
}

// UpcomingScheduleEvaluator reminds about schedules whose day range includes today.
type UpcomingScheduleEvaluator struct {
	ruleDeps
	repo schedule.Repository
}

func (e *UpcomingScheduleEvaluator) Name() string { return "upcoming_schedule" }

func (e *UpcomingScheduleEvaluator) Evaluate(ctx context.Context, userID string, now time.Time) error {
	ok, err := e.available(ctx, idb.TableSchedules)
	if !ok {
		return err
	}

	today := dayOf(now)
	schedules, err := e.repo.ListOpenCoveringDay(ctx, userID, today)
	if err != nil {
		return e.fetchFailed(err)
	}

	for _, s := range schedules {
		if s.Status.IsTerminal() || !coversDay(s, today) {
			continue
		}
		if e.remind(ctx, reminder.Notification{
			Title: "🔔 Schedule reminder: " + s.Title,
			Body:  scheduleBody(s),
			Tag:   reminder.ScheduleID(s.ID),
		}) {
			e.log.WithField("schedule_id", s.ID).Info("Schedule reminder sent")
		}
	}
	return nil
}

// coversDay reports whether day equals the start or end day or falls between them.
func coversDay(s *schedule.Schedule, day time.Time) bool {
	start, end := s.Range()
	if start.Valid && dayOf(start.Time).Equal(day) {
		return true
	}
	if end.Valid && dayOf(end.Time).Equal(day) {
		return true
	}
	return start.Valid && end.Valid &&
		!dayOf(start.Time).After(day) && !day.After(dayOf(end.Time))
}

func scheduleBody(s *schedule.Schedule) string {
	dateInfo := "today"
	switch {
	case s.StartDate.Valid && s.EndDate.Valid && !dayOf(s.StartDate.Time).Equal(dayOf(s.EndDate.Time)):
		dateInfo = s.StartDate.Time.Format(dateLayout) + " - " + s.EndDate.Time.Format(dateLayout)
	case s.StartDate.Valid:
		dateInfo = s.StartDate.Time.Format(dateLayout)
	case s.LegacyDate.Valid:
		dateInfo = s.LegacyDate.Time.Format(dateLayout)
	}

	body := "Date: " + dateInfo
	if s.Description.Valid && s.Description.String != "" {
		body += "\nDescription: " + s.Description.String
	}
	return body
}

// StagnantScheduleEvaluator sends one aggregate reminder about schedules that
// kept the same status for too long. It runs at most once per hour.
//
// The aggregate uses the fixed id reminder.StagnantTasksID, so after the first
// notification it stays silent for the lifetime of the cache even when the
// set of stagnant schedules changes.
type StagnantScheduleEvaluator struct {
	ruleDeps
	repo schedule.Repository

	mu      sync.Mutex
	lastRun time.Time
}

func (e *StagnantScheduleEvaluator) Name() string { return "stagnant_schedule" }

func (e *StagnantScheduleEvaluator) Evaluate(ctx context.Context, userID string, now time.Time) error {
	if !e.due(now) {
		return nil
	}

	ok, err := e.available(ctx, idb.TableSchedules)
	if !ok {
		return err
	}

	schedules, err := e.repo.ListOpenByOwner(ctx, userID)
	if err != nil {
		return e.fetchFailed(err)
	}

	stagnant := 0
	for _, s := range schedules {
		if isStagnant(s, now) {
			stagnant++
		}
	}
	if stagnant == 0 {
		return nil
	}

	if e.remind(ctx, reminder.Notification{
		Title: "🔄 Task status reminder",
		Body:  fmt.Sprintf("You have %d tasks whose status has not changed for a long time. Please update them.", stagnant),
		Tag:   reminder.StagnantTasksID,
	}) {
		e.log.WithField("stagnant_count", stagnant).Info("Stagnant reminder sent")
	}
	return nil
}

// due claims the hourly slot. The timestamp is taken before fetching so a
// failed pass also waits for the next hour.
func (e *StagnantScheduleEvaluator) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.lastRun.IsZero() && now.Sub(e.lastRun) < stagnantCheckInterval {
		return false
	}
	e.lastRun = now
	return true
}

func isStagnant(s *schedule.Schedule, now time.Time) bool {
	days := elapsedDays(s.CreatedAt, now)
	switch s.Status {
	case schedule.StatusPending:
		return days >= stagnantPendingDays
	case schedule.StatusInProgress:
		return days >= stagnantActiveDays
	default:
		return false
	}
}

// UpcomingWorkItemEvaluator reminds about work items planned to start in the
// next 15 minutes.
type UpcomingWorkItemEvaluator struct {
	ruleDeps
	repo workitem.Repository
}

func (e *UpcomingWorkItemEvaluator) Name() string { return "upcoming_work_item" }

func (e *UpcomingWorkItemEvaluator) Evaluate(ctx context.Context, userID string, now time.Time) error {
	ok, err := e.available(ctx, idb.TableWorkItems)
	if !ok {
		return err
	}

	items, err := e.repo.ListOpenByAssignee(ctx, userID)
	if err != nil {
		return e.fetchFailed(err)
	}

	soon := now.Add(workItemLookahead)
	for _, it := range items {
		if it.Status.IsTerminal() || !it.PlannedStartTime.Valid {
			continue
		}
		start := it.PlannedStartTime.Time
		if start.Before(now) || start.After(soon) {
			continue
		}
		if e.remind(ctx, reminder.Notification{
			Title: "🚀 Team task starting soon: " + it.Title,
			Body:  "Planned start: " + start.Local().Format("2006-01-02 15:04"),
			Tag:   reminder.WorkItemID(it.ID),
		}) {
			e.log.WithField("work_item_id", it.ID).Info("Work item reminder sent")
		}
	}
	return nil
}

// dayOf truncates t to its calendar day. Comparisons use local wall-clock days.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// elapsedDays counts whole 24h periods between from and to.
func elapsedDays(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
