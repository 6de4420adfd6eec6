// Package scheduler runs the recurring coach jobs on a cron timetable.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"lg/diet-mentor-go-api/internal/coach"
	"lg/diet-mentor-go-api/internal/config"
	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/phrase"
)

// Jobs is the part of coach.Service the scheduler drives.
type Jobs interface {
	Today() domain.DateOnly
	AuditAll(ctx context.Context, date domain.DateOnly, workers int) (coach.AuditSummary, error)
	ReminderCandidates(ctx context.Context, date domain.DateOnly) ([]coach.Reminder, error)
}

// Scheduler owns a cron runner with the audit and reminder jobs registered.
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	phrases phrase.Provider
	workers int
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the jobs described by cfg. Schedules are evaluated in loc.
func New(jobs Jobs, phrases phrase.Provider, cfg config.AuditConfig, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	cronLog := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		jobs:    jobs,
		phrases: phrases,
		workers: cfg.Workers,
		log:     logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.RunAudit); err != nil {
		cancel()
		return nil, fmt.Errorf("audit schedule %q: %w", cfg.Schedule, err)
	}
	if _, err := s.cron.AddFunc(cfg.ReminderSchedule, s.RunReminders); err != nil {
		cancel()
		return nil, fmt.Errorf("reminder schedule %q: %w", cfg.ReminderSchedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info("scheduled job", "id", e.ID, "next", e.Next)
	}
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// RunAudit snapshots today's risk for every user.
func (s *Scheduler) RunAudit() {
	date := s.jobs.Today()
	summary, err := s.jobs.AuditAll(s.ctx, date, s.workers)
	if err != nil {
		s.log.Error("risk audit failed", "date", date.String(), "users", summary.Users, "error", err)
	}
}

// RunReminders logs a reminder for each user without a record today.
func (s *Scheduler) RunReminders() {
	date := s.jobs.Today()
	reminders, err := s.jobs.ReminderCandidates(s.ctx, date)
	if err != nil {
		s.log.Error("reminder sweep failed", "date", date.String(), "error", err)
		return
	}
	if len(reminders) == 0 {
		s.log.Info("no reminders to send", "date", date.String())
		return
	}
	for _, r := range reminders {
		s.log.Info("reminder", "user_id", r.UserID, "message", phrase.RenderReminder(s.phrases, r.Name))
	}
}
