package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"lg/diet-mentor-go-api/internal/config"
	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/nutrition"
	"lg/diet-mentor-go-api/internal/report"
	"lg/diet-mentor-go-api/internal/risk"
	"lg/diet-mentor-go-api/internal/store"
)

type stubStore struct {
	mu           sync.Mutex
	profiles     map[int]domain.Profile
	records      map[int][]domain.DailyRecord
	assessments  []store.AssessmentRecord
	userIDs      []int
	historyLimit int
	profileReads int
	saveErr      error
}

func newStubStore() *stubStore {
	return &stubStore{
		profiles: make(map[int]domain.Profile),
		records:  make(map[int][]domain.DailyRecord),
	}
}

func (s *stubStore) GetProfile(ctx context.Context, userID int) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileReads++
	p, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (s *stubStore) SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if s.saveErr != nil {
		return domain.Profile{}, s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return p, nil
}

func (s *stubStore) UpsertRecord(ctx context.Context, r domain.DailyRecord) (domain.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.records[r.UserID]
	for i := range list {
		if list[i].Date.Equal(r.Date.Time) {
			r.ID = list[i].ID
			list[i] = r
			return r, nil
		}
	}
	r.ID = len(list) + 1
	list = append(list, r)
	sort.Slice(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date.Time) })
	s.records[r.UserID] = list
	return r, nil
}

func (s *stubStore) ListRecords(ctx context.Context, userID int, start, end domain.DateOnly) ([]domain.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.DailyRecord{}
	for _, r := range s.records[userID] {
		if !r.Date.Before(start.Time) && !r.Date.After(end.Time) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) SaveAssessment(ctx context.Context, a store.AssessmentRecord) (store.AssessmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments = append(s.assessments, a)
	return a, nil
}

func (s *stubStore) ListAssessments(ctx context.Context, userID, limit int) ([]store.AssessmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyLimit = limit
	return []store.AssessmentRecord{}, nil
}

func (s *stubStore) ListUserIDs(ctx context.Context) ([]int, error) {
	return s.userIDs, nil
}

func (s *stubStore) UsersWithoutRecord(ctx context.Context, date domain.DateOnly) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int
	for _, id := range s.userIDs {
		logged := false
		for _, r := range s.records[id] {
			if r.Date.Equal(date.Time) {
				logged = true
			}
		}
		if !logged {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func date(t *testing.T, s string) domain.DateOnly {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func fp(v float64) *float64 { return &v }

// newTestService returns a service whose clock reads 2026-10-18 05:00 in Tokyo,
// which is still 2026-10-17 in UTC.
func newTestService(t *testing.T, st *stubStore) *Service {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(st, config.CoachConfig{
		ActivityCoefficient: 1.4,
		MaxReductionRate:    0.04,
		Location:            loc,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.WithClock(func() time.Time { return time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC) })
	return svc
}

func seedProfile(t *testing.T, st *stubStore, userID int, start string) domain.Profile {
	t.Helper()
	p, err := nutrition.Refresh(domain.Profile{
		UserID:          userID,
		Name:            "Aki",
		Gender:          domain.GenderMale,
		Age:             30,
		HeightCM:        175,
		CurrentWeightKG: 75,
		TargetWeightKG:  68,
		DietMode:        domain.DietModeLight,
		StartDate:       date(t, start),
	}, 1.4, 0.04)
	if err != nil {
		t.Fatal(err)
	}
	st.profiles[userID] = p
	st.userIDs = append(st.userIDs, userID)
	return p
}

/* ─── Clock and targets ──────────────────────────────────────────────── */

func TestToday_UsesConfiguredZone(t *testing.T) {
	svc := newTestService(t, newStubStore())
	if got := svc.Today().String(); got != "2026-10-18" {
		t.Errorf("Today = %s, want 2026-10-18", got)
	}
}

func TestComputeTargets_DefaultsCoefficient(t *testing.T) {
	svc := newTestService(t, newStubStore())
	in := nutrition.Input{Gender: domain.GenderMale, WeightKG: 75, HeightCM: 175, Age: 30, ReductionRate: 0.02}

	got, err := svc.ComputeTargets(in)
	if err != nil {
		t.Fatal(err)
	}
	in.ActivityCoefficient = 1.4
	want, _ := nutrition.ComputeTargets(in)
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestValidateRate_UsesConfiguredMaximum(t *testing.T) {
	svc := newTestService(t, newStubStore())
	if r := svc.ValidateRate(75, 68, 0.05); r.Valid || r.Reason != nutrition.ReasonRateExceedsMaximum {
		t.Errorf("got %+v", r)
	}
	if r := svc.ValidateRate(75, 68, 0.04); !r.Valid {
		t.Errorf("got %+v", r)
	}
}

/* ─── Profile ────────────────────────────────────────────────────────── */

func TestUpdateProfile_NewProfileStartsToday(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)

	saved, err := svc.UpdateProfile(context.Background(), domain.Profile{
		UserID: 1, Gender: domain.GenderFemale, Age: 34, HeightCM: 162,
		CurrentWeightKG: 64, TargetWeightKG: 58, DietMode: domain.DietModeHard,
	})
	if err != nil {
		t.Fatal(err)
	}
	if saved.StartDate.String() != "2026-10-18" {
		t.Errorf("start date = %s", saved.StartDate)
	}
	if saved.ReductionRate != 0.04 || saved.Targets.TargetCalories == 0 {
		t.Errorf("targets not derived: %+v", saved)
	}
	if _, ok := st.profiles[1]; !ok {
		t.Error("profile not stored")
	}
}

func TestUpdateProfile_KeepsStartDate(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	p := seedProfile(t, st, 1, "2026-09-01")

	p.StartDate = domain.DateOnly{}
	p.CurrentWeightKG = 72
	saved, err := svc.UpdateProfile(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if saved.StartDate.String() != "2026-09-01" {
		t.Errorf("start date = %s", saved.StartDate)
	}
	if saved.Targets.MonthlyTargetLossKG != 1.4 {
		t.Errorf("monthly target = %v, want 1.4", saved.Targets.MonthlyTargetLossKG)
	}
}

func TestUpdateProfile_RejectsInvalid(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)

	_, err := svc.UpdateProfile(context.Background(), domain.Profile{
		UserID: 1, Gender: domain.GenderMale, Age: 30, HeightCM: 175,
		CurrentWeightKG: 70, TargetWeightKG: 75, DietMode: domain.DietModeLight,
	})
	if !errors.Is(err, nutrition.ErrTargetAboveCurrent) {
		t.Fatalf("expected ErrTargetAboveCurrent, got %v", err)
	}
	if len(st.profiles) != 0 {
		t.Error("invalid profile was stored")
	}
}

func TestUpdateProfile_StoreFailure(t *testing.T) {
	st := newStubStore()
	st.saveErr = errors.New("disk full")
	svc := newTestService(t, st)
	p := seedProfile(t, st, 1, "2026-09-01")

	if _, err := svc.UpdateProfile(context.Background(), p); !errors.Is(err, st.saveErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

/* ─── Records ────────────────────────────────────────────────────────── */

func TestRecordDay_AssignsDayCount(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-01")
	ctx := context.Background()

	r, err := svc.RecordDay(ctx, domain.DailyRecord{UserID: 1, Date: date(t, "2026-10-05"), WeightKG: 74.6})
	if err != nil {
		t.Fatal(err)
	}
	if r.DayCount != 5 {
		t.Errorf("day count = %d, want 5", r.DayCount)
	}

	today, err := svc.RecordDay(ctx, domain.DailyRecord{UserID: 1, WeightKG: 74.1, Calories: fp(1900)})
	if err != nil {
		t.Fatal(err)
	}
	if today.Date.String() != "2026-10-18" || today.DayCount != 18 {
		t.Errorf("got %s day %d", today.Date, today.DayCount)
	}
}

func TestRecordDay_Rejects(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-01")

	cases := []struct {
		name   string
		record domain.DailyRecord
		want   error
	}{
		{"zero weight", domain.DailyRecord{UserID: 1, Date: date(t, "2026-10-05")}, ErrInvalidRecord},
		{"negative calories", domain.DailyRecord{UserID: 1, Date: date(t, "2026-10-05"), WeightKG: 70, Calories: fp(-1)}, ErrInvalidRecord},
		{"negative fat", domain.DailyRecord{UserID: 1, Date: date(t, "2026-10-05"), WeightKG: 70, FatG: fp(-3)}, ErrInvalidRecord},
		{"before start", domain.DailyRecord{UserID: 1, Date: date(t, "2026-09-30"), WeightKG: 70}, ErrBeforeStart},
		{"future", domain.DailyRecord{UserID: 1, Date: date(t, "2026-10-19"), WeightKG: 70}, ErrFutureDate},
		{"no profile", domain.DailyRecord{UserID: 2, Date: date(t, "2026-10-05"), WeightKG: 70}, store.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RecordDay(context.Background(), tc.record); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(st.records[1]) != 0 {
		t.Errorf("rejected records were stored: %v", st.records[1])
	}
}

/* ─── Risk ───────────────────────────────────────────────────────────── */

func TestAssessRisk_HistoryAndPersist(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-01")
	ctx := context.Background()

	// Eight flat days at the end of an 18-day program leave 9 days missing.
	for d := 11; d <= 18; d++ {
		day := date(t, "2026-10-01").AddDays(d - 1)
		if _, err := svc.RecordDay(ctx, domain.DailyRecord{UserID: 1, Date: day, WeightKG: 70}); err != nil {
			t.Fatal(err)
		}
	}

	a, err := svc.AssessRisk(ctx, 1, date(t, "2026-10-18"), true)
	if err != nil {
		t.Fatal(err)
	}
	if a.Level != risk.High {
		t.Errorf("level = %v, want high", a.Level)
	}
	wantReasons := []risk.ReasonCode{risk.ReasonWeightStagnation, risk.ReasonMissingRecords}
	if !reflect.DeepEqual(a.Reasons, wantReasons) {
		t.Errorf("reasons = %v, want %v", a.Reasons, wantReasons)
	}
	if len(st.assessments) != 1 || st.assessments[0].Level != risk.High || st.assessments[0].Date.String() != "2026-10-18" {
		t.Errorf("snapshot = %+v", st.assessments)
	}

	if _, err := svc.AssessRisk(ctx, 1, date(t, "2026-10-18"), false); err != nil {
		t.Fatal(err)
	}
	if len(st.assessments) != 1 {
		t.Error("non-persisting assessment was saved")
	}
}

func TestAssessRisk_UnknownUser(t *testing.T) {
	svc := newTestService(t, newStubStore())
	if _, err := svc.AssessRisk(context.Background(), 9, date(t, "2026-10-18"), false); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHistory_ClampsLimit(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	for _, tc := range []struct{ in, want int }{{0, 30}, {-5, 30}, {10, 10}, {5000, 365}} {
		if _, err := svc.History(context.Background(), 1, tc.in); err != nil {
			t.Fatal(err)
		}
		if st.historyLimit != tc.want {
			t.Errorf("limit %d passed as %d, want %d", tc.in, st.historyLimit, tc.want)
		}
	}
}

/* ─── Reports ────────────────────────────────────────────────────────── */

func TestReport_DailyComparesWithPreviousRecord(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-01")
	ctx := context.Background()
	for _, r := range []domain.DailyRecord{
		{UserID: 1, Date: date(t, "2026-10-14"), WeightKG: 71},
		{UserID: 1, Date: date(t, "2026-10-16"), WeightKG: 70.4},
		{UserID: 1, Date: date(t, "2026-10-18"), WeightKG: 70.0},
	} {
		if _, err := svc.RecordDay(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	rep, err := svc.Report(ctx, 1, report.KindDaily, date(t, "2026-10-18"))
	if err != nil {
		t.Fatal(err)
	}
	if rep.NoData || rep.Daily == nil {
		t.Fatalf("expected daily facts, got %+v", rep)
	}
	if rep.Daily.WeightDeltaKG == nil || *rep.Daily.WeightDeltaKG != -0.4 {
		t.Errorf("delta = %v, want -0.4", rep.Daily.WeightDeltaKG)
	}
	if rep.Daily.WeightBand != report.WeightImproved || rep.Daily.DayCount != 18 {
		t.Errorf("got %+v", rep.Daily)
	}

	missing, err := svc.Report(ctx, 1, report.KindDaily, date(t, "2026-10-17"))
	if err != nil {
		t.Fatal(err)
	}
	if !missing.NoData {
		t.Errorf("expected no data for a day without a record, got %+v", missing)
	}
}

func TestReport_FirstDayHasNoPrevious(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-18")
	if _, err := svc.RecordDay(context.Background(), domain.DailyRecord{UserID: 1, WeightKG: 75}); err != nil {
		t.Fatal(err)
	}

	rep, err := svc.Report(context.Background(), 1, report.KindDaily, date(t, "2026-10-18"))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Daily == nil || rep.Daily.WeightDeltaKG != nil || rep.Daily.WeightBand != "" {
		t.Errorf("got %+v", rep.Daily)
	}
}

func TestReport_WeeklyWindow(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-01")
	ctx := context.Background()
	for _, d := range []string{"2026-10-05", "2026-10-12", "2026-10-15", "2026-10-18"} {
		if _, err := svc.RecordDay(ctx, domain.DailyRecord{UserID: 1, Date: date(t, d), WeightKG: 74}); err != nil {
			t.Fatal(err)
		}
	}

	rep, err := svc.Report(ctx, 1, report.KindWeekly, date(t, "2026-10-18"))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Period == nil || rep.Period.RecordDays != 3 || rep.Period.ExpectedDays != 7 {
		t.Errorf("got %+v", rep.Period)
	}
}

func TestReport_UnknownKind(t *testing.T) {
	st := newStubStore()
	svc := newTestService(t, st)
	seedProfile(t, st, 1, "2026-10-01")
	if _, err := svc.Report(context.Background(), 1, report.Kind("yearly"), date(t, "2026-10-18")); !errors.Is(err, report.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
