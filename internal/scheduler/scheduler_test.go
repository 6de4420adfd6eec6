package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"lg/diet-mentor-go-api/internal/coach"
	"lg/diet-mentor-go-api/internal/config"
	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/phrase"
)

type fakeJobs struct {
	today       domain.DateOnly
	auditDate   domain.DateOnly
	auditWorker int
	auditErr    error
	reminders   []coach.Reminder
	reminderErr error
}

func (f *fakeJobs) Today() domain.DateOnly { return f.today }

func (f *fakeJobs) AuditAll(ctx context.Context, date domain.DateOnly, workers int) (coach.AuditSummary, error) {
	f.auditDate, f.auditWorker = date, workers
	return coach.AuditSummary{Date: date, Users: 3}, f.auditErr
}

func (f *fakeJobs) ReminderCandidates(ctx context.Context, date domain.DateOnly) ([]coach.Reminder, error) {
	return f.reminders, f.reminderErr
}

func newTestScheduler(t *testing.T, jobs *fakeJobs) (*Scheduler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := New(jobs, phrase.Default(), config.AuditConfig{
		Schedule:         "30 23 * * *",
		ReminderSchedule: "0 10 * * *",
		Workers:          3,
	}, time.UTC, logger)
	if err != nil {
		t.Fatal(err)
	}
	return s, &buf
}

func TestNew_RegistersBothJobs(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeJobs{})
	if n := len(s.cron.Entries()); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	for _, cfg := range []config.AuditConfig{
		{Schedule: "whenever", ReminderSchedule: "0 10 * * *"},
		{Schedule: "30 23 * * *", ReminderSchedule: "99 10 * * *"},
	} {
		if _, err := New(&fakeJobs{}, phrase.Default(), cfg, time.UTC, logger); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func TestRunAudit(t *testing.T) {
	today, _ := domain.ParseDate("2026-10-18")
	jobs := &fakeJobs{today: today}
	s, buf := newTestScheduler(t, jobs)

	s.RunAudit()
	if jobs.auditDate.String() != "2026-10-18" || jobs.auditWorker != 3 {
		t.Errorf("audit called with %s, %d workers", jobs.auditDate, jobs.auditWorker)
	}
	if strings.Contains(buf.String(), "risk audit failed") {
		t.Errorf("unexpected failure log: %s", buf.String())
	}

	jobs.auditErr = errors.New("db down")
	s.RunAudit()
	if !strings.Contains(buf.String(), "risk audit failed") {
		t.Errorf("failure not logged: %s", buf.String())
	}
}

func TestRunReminders(t *testing.T) {
	jobs := &fakeJobs{reminders: []coach.Reminder{{UserID: 7, Name: "Mio"}}}
	s, buf := newTestScheduler(t, jobs)

	s.RunReminders()
	out := buf.String()
	if !strings.Contains(out, "user_id=7") || !strings.Contains(out, "Good morning, Mio!") {
		t.Errorf("reminder not logged: %s", out)
	}

	buf.Reset()
	jobs.reminders = nil
	s.RunReminders()
	if !strings.Contains(buf.String(), "no reminders to send") {
		t.Errorf("got %s", buf.String())
	}

	buf.Reset()
	jobs.reminderErr = errors.New("db down")
	s.RunReminders()
	if !strings.Contains(buf.String(), "reminder sweep failed") {
		t.Errorf("got %s", buf.String())
	}
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeJobs{})
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	if s.ctx.Err() == nil {
		t.Error("job context not canceled")
	}
}
