package coach

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/risk"
	"lg/diet-mentor-go-api/internal/store"
)

func TestAuditAll(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-17")
	seedProfile(t, st, 2, "2026-10-01")
	// User 3 has not started yet and user 4 has no profile.
	seedProfile(t, st, 3, "2026-10-20")
	st.userIDs = append(st.userIDs, 4)
	ctx := context.Background()
	if _, err := svc.RecordDay(ctx, domain.DailyRecord{UserID: 1, Date: date(t, "2026-10-17"), WeightKG: 75}); err != nil {
		t.Fatal(err)
	}

	st.profileReads = 0
	summary, err := svc.AuditAll(ctx, date(t, "2026-10-18"), 2)

	var taskErr *TaskError
	if !errors.As(err, &taskErr) || len(taskErr.Errors) != 1 {
		t.Fatalf("expected one task error, got %v", err)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound inside task error, got %v", err)
	}
	if summary.Users != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	// User 1 started yesterday and recorded; user 2 has 17 silent days.
	if summary.Levels[risk.Low] != 1 || summary.Levels[risk.High] != 1 {
		t.Errorf("levels = %v", summary.Levels)
	}
	if len(st.assessments) != 2 {
		t.Errorf("snapshots = %d, want 2", len(st.assessments))
	}
	if st.profileReads != 4 {
		t.Errorf("profile reads = %d, want one per user", st.profileReads)
	}
}

func TestAuditAll_NoUsers(t *testing.T) {
	svc := newTestService(t, newStubStore())
	summary, err := svc.AuditAll(context.Background(), date(t, "2026-10-18"), 4)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Users != 0 || summary.Levels == nil {
		t.Errorf("summary = %+v", summary)
	}
}

func TestReminderCandidates(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-01")
	seedProfile(t, st, 2, "2026-10-01")
	seedProfile(t, st, 3, "2026-10-25")
	if _, err := svc.RecordDay(context.Background(), domain.DailyRecord{UserID: 1, WeightKG: 74}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ReminderCandidates(context.Background(), date(t, "2026-10-18"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Reminder{{UserID: 2, Name: "Aki"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

/* ─── Worker pool ────────────────────────────────────────────────────── */

func TestRunPool_VisitsEveryIndex(t *testing.T) {
	var sum atomic.Int64
	err := runPool(context.Background(), 3, 100, func(idx int) error {
		sum.Add(int64(idx))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Load() != 4950 {
		t.Errorf("sum = %d, want 4950", sum.Load())
	}
}

func TestRunPool_CollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	err := runPool(context.Background(), 2, 5, func(idx int) error {
		if idx%2 == 0 {
			return boom
		}
		return nil
	})
	var taskErr *TaskError
	if !errors.As(err, &taskErr) || len(taskErr.Errors) != 3 {
		t.Fatalf("expected 3 collected errors, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("errors.Is should see through TaskError")
	}
}

func TestRunPool_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runPool(ctx, 2, 10, func(int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTaskError_Message(t *testing.T) {
	var e TaskError
	if e.Error() != "no errors" || e.asError() != nil {
		t.Errorf("empty TaskError misbehaves: %q", e.Error())
	}
	e.append(errors.New("a"))
	if e.Error() != "a" {
		t.Errorf("got %q", e.Error())
	}
	e.append(nil)
	e.append(errors.New("b"))
	if e.Error() != "multiple errors: a; b;" {
		t.Errorf("got %q", e.Error())
	}
}
