package coach

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/risk"
	"lg/diet-mentor-go-api/internal/store"
)

// TaskError accumulates the per-user failures of a bulk run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// AuditSummary counts the snapshots written by AuditAll.
type AuditSummary struct {
	Date   domain.DateOnly    `json:"date"`
	Users  int                `json:"users"`
	Failed int                `json:"failed"`
	Levels map[risk.Level]int `json:"levels"`
}

// AuditAll assesses and persists the risk of every user with a profile as of
// date, using up to workers goroutines. Users whose program starts after date
// are skipped. Failures for single users are collected into a *TaskError and
// do not stop the run.
func (s *Service) AuditAll(ctx context.Context, date domain.DateOnly, workers int) (AuditSummary, error) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return AuditSummary{}, fmt.Errorf("list users: %w", err)
	}

	summary := AuditSummary{Date: date, Levels: make(map[risk.Level]int)}
	var mu sync.Mutex

	runErr := runPool(ctx, workers, len(ids), func(idx int) error {
		userID := ids[idx]
		p, err := s.store.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}
		if date.Before(p.StartDate.Time) {
			return nil
		}
		a, err := s.assessProfile(ctx, p, date, true)
		if err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}
		mu.Lock()
		summary.Users++
		summary.Levels[a.Level]++
		mu.Unlock()
		return nil
	})

	var taskErr *TaskError
	if errors.As(runErr, &taskErr) {
		summary.Failed = len(taskErr.Errors)
	}
	s.log.Info("risk audit finished", "date", date.String(), "users", summary.Users,
		"failed", summary.Failed, "high", summary.Levels[risk.High])
	return summary, runErr
}

// Reminder is a user who has not recorded anything for a given day.
type Reminder struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}

// ReminderCandidates lists users with an active program and no record on
// date, ordered by user id.
func (s *Service) ReminderCandidates(ctx context.Context, date domain.DateOnly) ([]Reminder, error) {
	ids, err := s.store.UsersWithoutRecord(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("users without record: %w", err)
	}
	out := make([]Reminder, 0, len(ids))
	for _, id := range ids {
		p, err := s.store.GetProfile(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if date.Before(p.StartDate.Time) {
			continue
		}
		out = append(out, Reminder{UserID: id, Name: p.Name})
	}
	return out, nil
}

// runPool calls fn for every index in [0, total) from a fixed set of
// workers. Cancellation stops dispatch and is returned as is; other failures
// are gathered into a *TaskError.
func runPool(ctx context.Context, workers, total int, fn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 4
	}
	if workers > total {
		workers = total
	}

	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := fn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}
	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
