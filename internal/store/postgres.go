package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/risk"
)

// Postgres is the production store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres opens a pool for url. We use a pool (not a single conn) because
// managed Postgres hosts close idle connections.
func NewPostgres(ctx context.Context, url string, logger *slog.Logger) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" errors
	// from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool, log: logger}, nil
}

func (s *Postgres) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Postgres) Close() { s.pool.Close() }

/* ─── Query helpers ───────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
// pgx.ErrNoRows comes back as ErrNotFound.
func queryOne[T any](ctx context.Context, s *Postgres, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		s.log.Error("[queryOne] query error", "error", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return result, ErrNotFound
	}
	if err != nil {
		s.log.Error("[queryOne] scan error", "error", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, s *Postgres, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		s.log.Error("[queryMany] query error", "error", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		s.log.Error("[queryMany] scan error", "error", err)
	}
	return results, err
}

/* ─── Row structs ─────────────────────────────────────────────────────── */

type userRow struct {
	ID        int        `db:"id"`
	Username  string     `db:"username"`
	Email     string     `db:"email"`
	AuthToken string     `db:"auth_token"`
	Password  string     `db:"password"`
	CreatedAt *time.Time `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		AuthToken: r.AuthToken,
		Password:  r.Password,
		CreatedAt: r.CreatedAt,
	}
}

const profileColumns = `user_id, name, gender, age, height_cm, current_weight_kg, target_weight_kg,
	diet_mode, reduction_rate, start_date, bmr, tdee, target_calories, target_protein_g,
	target_fat_g, target_carbs_g, monthly_target_loss_kg, created_at, updated_at`

type profileRow struct {
	UserID              int             `db:"user_id"`
	Name                string          `db:"name"`
	Gender              string          `db:"gender"`
	Age                 int             `db:"age"`
	HeightCM            float64         `db:"height_cm"`
	CurrentWeightKG     float64         `db:"current_weight_kg"`
	TargetWeightKG      float64         `db:"target_weight_kg"`
	DietMode            string          `db:"diet_mode"`
	ReductionRate       float64         `db:"reduction_rate"`
	StartDate           domain.DateOnly `db:"start_date"`
	BMR                 float64         `db:"bmr"`
	TDEE                float64         `db:"tdee"`
	TargetCalories      float64         `db:"target_calories"`
	TargetProteinG      float64         `db:"target_protein_g"`
	TargetFatG          float64         `db:"target_fat_g"`
	TargetCarbsG        float64         `db:"target_carbs_g"`
	MonthlyTargetLossKG float64         `db:"monthly_target_loss_kg"`
	CreatedAt           *time.Time      `db:"created_at"`
	UpdatedAt           *time.Time      `db:"updated_at"`
}

func (r profileRow) toDomain() domain.Profile {
	return domain.Profile{
		UserID:          r.UserID,
		Name:            r.Name,
		Gender:          domain.Gender(r.Gender),
		Age:             r.Age,
		HeightCM:        r.HeightCM,
		CurrentWeightKG: r.CurrentWeightKG,
		TargetWeightKG:  r.TargetWeightKG,
		DietMode:        domain.DietMode(r.DietMode),
		ReductionRate:   r.ReductionRate,
		StartDate:       r.StartDate,
		Targets: domain.Targets{
			BMR:                 r.BMR,
			TDEE:                r.TDEE,
			TargetCalories:      r.TargetCalories,
			TargetProteinG:      r.TargetProteinG,
			TargetFatG:          r.TargetFatG,
			TargetCarbsG:        r.TargetCarbsG,
			MonthlyTargetLossKG: r.MonthlyTargetLossKG,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const recordColumns = `id, user_id, date, day_count, weight_kg, calories, protein_g, fat_g, carbs_g, exercise, created_at`

// recordRow maps to daily_records. Nullable nutrition fields use pointers so
// pgx can scan NULLs.
type recordRow struct {
	ID        int             `db:"id"`
	UserID    int             `db:"user_id"`
	Date      domain.DateOnly `db:"date"`
	DayCount  int             `db:"day_count"`
	WeightKG  float64         `db:"weight_kg"`
	Calories  *float64        `db:"calories"`
	ProteinG  *float64        `db:"protein_g"`
	FatG      *float64        `db:"fat_g"`
	CarbsG    *float64        `db:"carbs_g"`
	Exercise  string          `db:"exercise"`
	CreatedAt *time.Time      `db:"created_at"`
}

func (r recordRow) toDomain() domain.DailyRecord {
	return domain.DailyRecord(r)
}

const assessmentColumns = `id, user_id, date, level, reasons, suggestions, created_at`

type assessmentRow struct {
	ID          string          `db:"id"`
	UserID      int             `db:"user_id"`
	Date        domain.DateOnly `db:"date"`
	Level       string          `db:"level"`
	Reasons     []string        `db:"reasons"`
	Suggestions []string        `db:"suggestions"`
	CreatedAt   *time.Time      `db:"created_at"`
}

func (r assessmentRow) toDomain() (AssessmentRecord, error) {
	level, err := risk.ParseLevel(r.Level)
	if err != nil {
		return AssessmentRecord{}, err
	}
	reasons, suggestions := reasonCodes(r.Reasons, r.Suggestions)
	return AssessmentRecord{
		ID:          r.ID,
		UserID:      r.UserID,
		Date:        r.Date,
		Level:       level,
		Reasons:     reasons,
		Suggestions: suggestions,
		CreatedAt:   r.CreatedAt,
	}, nil
}

/* ─── Users ───────────────────────────────────────────────────────────── */

func (s *Postgres) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	row, err := queryOne[userRow](ctx, s,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @authToken)
		 RETURNING id, username, email, auth_token, password, created_at`,
		pgx.NamedArgs{"username": u.Username, "email": u.Email, "password": u.Password, "authToken": u.AuthToken})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Postgres) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	row, err := queryOne[userRow](ctx, s,
		`SELECT id, username, email, auth_token, password, created_at
		 FROM users WHERE username = @username`,
		pgx.NamedArgs{"username": username})
	if err != nil {
		return domain.User{}, err
	}
	return row.toDomain(), nil
}

func (s *Postgres) UserIDForToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.pool.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return userID, err
}

/* ─── Profiles ────────────────────────────────────────────────────────── */

func (s *Postgres) GetProfile(ctx context.Context, userID int) (domain.Profile, error) {
	row, err := queryOne[profileRow](ctx, s,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return domain.Profile{}, err
	}
	return row.toDomain(), nil
}

// SaveProfile inserts or replaces the user's profile. Derived targets are
// stored as given; callers recompute them first.
func (s *Postgres) SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	row, err := queryOne[profileRow](ctx, s,
		`INSERT INTO profiles (user_id, name, gender, age, height_cm, current_weight_kg, target_weight_kg,
			diet_mode, reduction_rate, start_date, bmr, tdee, target_calories, target_protein_g,
			target_fat_g, target_carbs_g, monthly_target_loss_kg)
		 VALUES (@userID, @name, @gender, @age, @heightCM, @currentWeightKG, @targetWeightKG,
			@dietMode, @reductionRate, @startDate, @bmr, @tdee, @targetCalories, @targetProteinG,
			@targetFatG, @targetCarbsG, @monthlyTargetLossKG)
		 ON CONFLICT (user_id) DO UPDATE SET
			name                   = EXCLUDED.name,
			gender                 = EXCLUDED.gender,
			age                    = EXCLUDED.age,
			height_cm              = EXCLUDED.height_cm,
			current_weight_kg      = EXCLUDED.current_weight_kg,
			target_weight_kg       = EXCLUDED.target_weight_kg,
			diet_mode              = EXCLUDED.diet_mode,
			reduction_rate         = EXCLUDED.reduction_rate,
			start_date             = EXCLUDED.start_date,
			bmr                    = EXCLUDED.bmr,
			tdee                   = EXCLUDED.tdee,
			target_calories        = EXCLUDED.target_calories,
			target_protein_g       = EXCLUDED.target_protein_g,
			target_fat_g           = EXCLUDED.target_fat_g,
			target_carbs_g         = EXCLUDED.target_carbs_g,
			monthly_target_loss_kg = EXCLUDED.monthly_target_loss_kg,
			updated_at             = NOW()
		 RETURNING `+profileColumns,
		profileArgs(p))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return row.toDomain(), nil
}

func profileArgs(p domain.Profile) pgx.NamedArgs {
	return pgx.NamedArgs{
		"userID":              p.UserID,
		"name":                p.Name,
		"gender":              string(p.Gender),
		"age":                 p.Age,
		"heightCM":            p.HeightCM,
		"currentWeightKG":     p.CurrentWeightKG,
		"targetWeightKG":      p.TargetWeightKG,
		"dietMode":            string(p.DietMode),
		"reductionRate":       p.ReductionRate,
		"startDate":           p.StartDate.String(),
		"bmr":                 p.Targets.BMR,
		"tdee":                p.Targets.TDEE,
		"targetCalories":      p.Targets.TargetCalories,
		"targetProteinG":      p.Targets.TargetProteinG,
		"targetFatG":          p.Targets.TargetFatG,
		"targetCarbsG":        p.Targets.TargetCarbsG,
		"monthlyTargetLossKG": p.Targets.MonthlyTargetLossKG,
	}
}

/* ─── Daily records ───────────────────────────────────────────────────── */

// UpsertRecord creates or replaces the record for (user, date). The
// UNIQUE(user_id, date) constraint means posting the same date updates in place.
func (s *Postgres) UpsertRecord(ctx context.Context, r domain.DailyRecord) (domain.DailyRecord, error) {
	row, err := queryOne[recordRow](ctx, s,
		`INSERT INTO daily_records (user_id, date, day_count, weight_kg, calories, protein_g, fat_g, carbs_g, exercise)
		 VALUES (@userID, @date, @dayCount, @weightKG, @calories, @proteinG, @fatG, @carbsG, @exercise)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			day_count = EXCLUDED.day_count,
			weight_kg = EXCLUDED.weight_kg,
			calories  = EXCLUDED.calories,
			protein_g = EXCLUDED.protein_g,
			fat_g     = EXCLUDED.fat_g,
			carbs_g   = EXCLUDED.carbs_g,
			exercise  = EXCLUDED.exercise
		 RETURNING `+recordColumns,
		pgx.NamedArgs{
			"userID":   r.UserID,
			"date":     r.Date.String(),
			"dayCount": r.DayCount,
			"weightKG": r.WeightKG,
			"calories": r.Calories,
			"proteinG": r.ProteinG,
			"fatG":     r.FatG,
			"carbsG":   r.CarbsG,
			"exercise": r.Exercise,
		})
	if err != nil {
		return domain.DailyRecord{}, fmt.Errorf("upsert record: %w", err)
	}
	return row.toDomain(), nil
}

// ListRecords returns the user's records within [start, end], ascending.
// Returns an empty slice (not nil) when there are none.
func (s *Postgres) ListRecords(ctx context.Context, userID int, start, end domain.DateOnly) ([]domain.DailyRecord, error) {
	rows, err := queryMany[recordRow](ctx, s,
		`SELECT `+recordColumns+` FROM daily_records
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start.String(), "end": end.String()})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out := make([]domain.DailyRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

/* ─── Risk audit ──────────────────────────────────────────────────────── */

func (s *Postgres) SaveAssessment(ctx context.Context, a AssessmentRecord) (AssessmentRecord, error) {
	reasons, suggestions := reasonStrings(a)
	row, err := queryOne[assessmentRow](ctx, s,
		`INSERT INTO risk_assessments (id, user_id, date, level, reasons, suggestions)
		 VALUES (@id, @userID, @date, @level, @reasons, @suggestions)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			level       = EXCLUDED.level,
			reasons     = EXCLUDED.reasons,
			suggestions = EXCLUDED.suggestions,
			created_at  = NOW()
		 RETURNING `+assessmentColumns,
		pgx.NamedArgs{
			"id":          uuid.NewString(),
			"userID":      a.UserID,
			"date":        a.Date.String(),
			"level":       a.Level.String(),
			"reasons":     reasons,
			"suggestions": suggestions,
		})
	if err != nil {
		return AssessmentRecord{}, fmt.Errorf("save assessment: %w", err)
	}
	return row.toDomain()
}

// ListAssessments returns the newest limit snapshots for the user.
func (s *Postgres) ListAssessments(ctx context.Context, userID, limit int) ([]AssessmentRecord, error) {
	rows, err := queryMany[assessmentRow](ctx, s,
		`SELECT `+assessmentColumns+` FROM risk_assessments
		 WHERE user_id = @userID
		 ORDER BY date DESC
		 LIMIT @limit`,
		pgx.NamedArgs{"userID": userID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]AssessmentRecord, 0, len(rows))
	for _, r := range rows {
		a, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

/* ─── Batch queries ───────────────────────────────────────────────────── */

// ListUserIDs returns every user with a profile.
func (s *Postgres) ListUserIDs(ctx context.Context) ([]int, error) {
	return s.collectIDs(ctx, "SELECT user_id FROM profiles ORDER BY user_id", nil)
}

// UsersWithoutRecord returns users with a profile and no record on date.
func (s *Postgres) UsersWithoutRecord(ctx context.Context, date domain.DateOnly) ([]int, error) {
	return s.collectIDs(ctx,
		`SELECT p.user_id FROM profiles p
		 WHERE NOT EXISTS (
			SELECT 1 FROM daily_records r WHERE r.user_id = p.user_id AND r.date = @date
		 )
		 ORDER BY p.user_id`,
		pgx.NamedArgs{"date": date.String()})
}

func (s *Postgres) collectIDs(ctx context.Context, sql string, args pgx.NamedArgs) ([]int, error) {
	var queryArgs []any
	if args != nil {
		queryArgs = append(queryArgs, args)
	}
	rows, err := s.pool.Query(ctx, sql, queryArgs...)
	if err != nil {
		s.log.Error("[collectIDs] query error", "error", err)
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}
