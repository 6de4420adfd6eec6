// Package coach ties the pure engine packages to persistence. It owns the
// notion of "today" and turns a user id plus a date into the profile and
// record window the engine needs.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lg/diet-mentor-go-api/internal/config"
	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/nutrition"
	"lg/diet-mentor-go-api/internal/report"
	"lg/diet-mentor-go-api/internal/risk"
	"lg/diet-mentor-go-api/internal/store"
)

// Store is the persistence contract required by the service.
type Store interface {
	GetProfile(ctx context.Context, userID int) (domain.Profile, error)
	SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)
	UpsertRecord(ctx context.Context, r domain.DailyRecord) (domain.DailyRecord, error)
	ListRecords(ctx context.Context, userID int, start, end domain.DateOnly) ([]domain.DailyRecord, error)
	SaveAssessment(ctx context.Context, a store.AssessmentRecord) (store.AssessmentRecord, error)
	ListAssessments(ctx context.Context, userID, limit int) ([]store.AssessmentRecord, error)
	ListUserIDs(ctx context.Context) ([]int, error)
	UsersWithoutRecord(ctx context.Context, date domain.DateOnly) ([]int, error)
}

var (
	ErrInvalidRecord = errors.New("invalid daily record")
	ErrBeforeStart   = errors.New("date is before the program start date")
	ErrFutureDate    = errors.New("date is in the future")
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
)

// Service orchestrates profile maintenance, record keeping, risk assessment
// and report composition for stored users.
type Service struct {
	store               Store
	activityCoefficient float64
	maxRate             float64
	loc                 *time.Location
	nowFn               func() time.Time
	log                 *slog.Logger
}

// NewService constructs a Service. A nil location means UTC.
func NewService(st Store, cfg config.CoachConfig, logger *slog.Logger) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:               st,
		activityCoefficient: cfg.ActivityCoefficient,
		maxRate:             cfg.MaxReductionRate,
		loc:                 loc,
		nowFn:               time.Now,
		log:                 logger,
	}
}

// WithClock overrides the time source, mainly for tests.
func (s *Service) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Today is the current calendar date in the configured zone.
func (s *Service) Today() domain.DateOnly {
	return domain.NewDate(s.nowFn().In(s.loc))
}

/* ─── Targets ────────────────────────────────────────────────────────── */

// ComputeTargets runs the calculator without touching storage. A zero
// activity coefficient is replaced by the configured one.
func (s *Service) ComputeTargets(in nutrition.Input) (domain.Targets, error) {
	if in.ActivityCoefficient == 0 {
		in.ActivityCoefficient = s.activityCoefficient
	}
	return nutrition.ComputeTargets(in)
}

// ValidateRate checks a requested pace against the configured maximum.
func (s *Service) ValidateRate(currentWeightKG, targetWeightKG, reductionRate float64) nutrition.ValidationResult {
	return nutrition.ValidateReductionRate(currentWeightKG, targetWeightKG, reductionRate, s.maxRate)
}

/* ─── Profile ────────────────────────────────────────────────────────── */

func (s *Service) Profile(ctx context.Context, userID int) (domain.Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// UpdateProfile validates p, recomputes its targets and saves it. An unset
// StartDate keeps the stored one, or starts the program today for a new
// profile.
func (s *Service) UpdateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if p.StartDate.IsZero() {
		existing, err := s.store.GetProfile(ctx, p.UserID)
		switch {
		case err == nil:
			p.StartDate = existing.StartDate
		case errors.Is(err, store.ErrNotFound):
			p.StartDate = s.Today()
		default:
			return domain.Profile{}, err
		}
	}

	refreshed, err := nutrition.Refresh(p, s.activityCoefficient, s.maxRate)
	if err != nil {
		return domain.Profile{}, err
	}
	saved, err := s.store.SaveProfile(ctx, refreshed)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	s.log.Info("profile updated", "user_id", saved.UserID, "diet_mode", saved.DietMode,
		"target_calories", saved.Targets.TargetCalories)
	return saved, nil
}

/* ─── Records ────────────────────────────────────────────────────────── */

// RecordDay stores r, replacing any record for the same date, and stamps its
// program day. A zero date means today.
func (s *Service) RecordDay(ctx context.Context, r domain.DailyRecord) (domain.DailyRecord, error) {
	if err := validateRecord(r); err != nil {
		return domain.DailyRecord{}, err
	}
	today := s.Today()
	if r.Date.IsZero() {
		r.Date = today
	}
	if r.Date.After(today.Time) {
		return domain.DailyRecord{}, fmt.Errorf("%w: %s", ErrFutureDate, r.Date)
	}

	p, err := s.store.GetProfile(ctx, r.UserID)
	if err != nil {
		return domain.DailyRecord{}, err
	}
	if r.Date.Before(p.StartDate.Time) {
		return domain.DailyRecord{}, fmt.Errorf("%w: %s < %s", ErrBeforeStart, r.Date, p.StartDate)
	}
	r.DayCount = p.DayCount(r.Date)

	saved, err := s.store.UpsertRecord(ctx, r)
	if err != nil {
		return domain.DailyRecord{}, fmt.Errorf("upsert record: %w", err)
	}
	return saved, nil
}

func validateRecord(r domain.DailyRecord) error {
	if r.WeightKG <= 0 {
		return fmt.Errorf("%w: weight_kg must be positive", ErrInvalidRecord)
	}
	for name, v := range map[string]*float64{
		"calories":  r.Calories,
		"protein_g": r.ProteinG,
		"fat_g":     r.FatG,
		"carbs_g":   r.CarbsG,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidRecord, name)
		}
	}
	return nil
}

// Records lists a user's records between start and end inclusive.
func (s *Service) Records(ctx context.Context, userID int, start, end domain.DateOnly) ([]domain.DailyRecord, error) {
	return s.store.ListRecords(ctx, userID, start, end)
}

/* ─── Risk ───────────────────────────────────────────────────────────── */

// AssessRisk evaluates the user's whole history up to date. With persist set
// the result is also saved as that day's audit snapshot.
func (s *Service) AssessRisk(ctx context.Context, userID int, date domain.DateOnly, persist bool) (risk.Assessment, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return risk.Assessment{}, err
	}
	return s.assessProfile(ctx, p, date, persist)
}

// assessProfile is AssessRisk for an already loaded profile.
func (s *Service) assessProfile(ctx context.Context, p domain.Profile, date domain.DateOnly, persist bool) (risk.Assessment, error) {
	records, err := s.store.ListRecords(ctx, p.UserID, p.StartDate, date)
	if err != nil {
		return risk.Assessment{}, fmt.Errorf("list records: %w", err)
	}

	a := risk.Assess(p.Targets, records, p.DayCount(date))
	s.log.Debug("risk assessed", "user_id", p.UserID, "date", date.String(), "level", a.Level.String())

	if persist {
		if _, err := s.store.SaveAssessment(ctx, store.AssessmentRecord{
			UserID:      p.UserID,
			Date:        date,
			Level:       a.Level,
			Reasons:     a.Reasons,
			Suggestions: a.Suggestions,
		}); err != nil {
			return risk.Assessment{}, fmt.Errorf("save assessment: %w", err)
		}
	}
	return a, nil
}

// History returns the newest audit snapshots first. limit is clamped to
// [1, 365]; zero selects the default of 30.
func (s *Service) History(ctx context.Context, userID, limit int) ([]store.AssessmentRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return s.store.ListAssessments(ctx, userID, limit)
}

/* ─── Reports ────────────────────────────────────────────────────────── */

// Report composes the kind of report that ends on date. A daily report
// compares against the latest record before date.
func (s *Service) Report(ctx context.Context, userID int, kind report.Kind, date domain.DateOnly) (report.Report, error) {
	if _, err := report.ParseKind(string(kind)); err != nil {
		return report.Report{}, err
	}
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return report.Report{}, err
	}

	window, err := s.store.ListRecords(ctx, userID, date.AddDays(1-kind.WindowDays()), date)
	if err != nil {
		return report.Report{}, fmt.Errorf("list records: %w", err)
	}

	var previous *domain.DailyRecord
	if kind == report.KindDaily && len(window) > 0 && p.StartDate.Before(date.Time) {
		earlier, err := s.store.ListRecords(ctx, userID, p.StartDate, date.AddDays(-1))
		if err != nil {
			return report.Report{}, fmt.Errorf("list previous records: %w", err)
		}
		if n := len(earlier); n > 0 {
			previous = &earlier[n-1]
		}
	}

	return report.Compose(kind, p, window, previous)
}
