package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/risk"
)

// SQLite is the development store. Dates are stored as YYYY-MM-DD text so
// range queries compare lexically.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func NewSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and avoids "database is locked".
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLite{db: db, log: logger}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("sqlite database ready", "path", path)
	return s, nil
}

func (s *SQLite) init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			password TEXT NOT NULL,
			auth_token TEXT UNIQUE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS profiles (
			user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL,
			age INTEGER NOT NULL,
			height_cm REAL NOT NULL,
			current_weight_kg REAL NOT NULL,
			target_weight_kg REAL NOT NULL,
			diet_mode TEXT NOT NULL,
			reduction_rate REAL NOT NULL,
			start_date TEXT NOT NULL,
			bmr REAL NOT NULL,
			tdee REAL NOT NULL,
			target_calories REAL NOT NULL,
			target_protein_g REAL NOT NULL,
			target_fat_g REAL NOT NULL,
			target_carbs_g REAL NOT NULL,
			monthly_target_loss_kg REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS daily_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date TEXT NOT NULL,
			day_count INTEGER NOT NULL,
			weight_kg REAL NOT NULL,
			calories REAL,
			protein_g REAL,
			fat_g REAL,
			carbs_g REAL,
			exercise TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS risk_assessments (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date TEXT NOT NULL,
			level TEXT NOT NULL,
			reasons TEXT NOT NULL DEFAULT '',
			suggestions TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_daily_records_user_date ON daily_records(user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_risk_assessments_user_date ON risk_assessments(user_id, date)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Error("close sqlite", "error", err)
	}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// sqliteTime scans DATETIME columns, which the driver returns as time.Time
// when it knows the declared type and as text otherwise (e.g. RETURNING).
type sqliteTime struct{ time.Time }

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	time.RFC3339Nano,
}

func (t *sqliteTime) Scan(v any) error {
	switch v := v.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("cannot scan %T into time", v)
}

func (t *sqliteTime) parse(s string) error {
	for _, layout := range sqliteTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t sqliteTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t.Time
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

/* ─── Users ───────────────────────────────────────────────────────────── */

const sqliteUserColumns = `id, username, email, auth_token, password, created_at`

func scanUser(row scanner) (domain.User, error) {
	var u domain.User
	var created sqliteTime
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.AuthToken, &u.Password, &created); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = created.ptr()
	return u, nil
}

func (s *SQLite) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+sqliteUserColumns,
		u.Username, u.Email, u.Password, u.AuthToken)
	created, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *SQLite) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteUserColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	return u, notFound(err)
}

func (s *SQLite) UserIDForToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE auth_token = ?", token).Scan(&userID)
	return userID, notFound(err)
}

/* ─── Profiles ────────────────────────────────────────────────────────── */

func scanProfile(row scanner) (domain.Profile, error) {
	var p domain.Profile
	var gender, mode, start string
	var created, updated sqliteTime
	err := row.Scan(
		&p.UserID, &p.Name, &gender, &p.Age, &p.HeightCM, &p.CurrentWeightKG, &p.TargetWeightKG,
		&mode, &p.ReductionRate, &start,
		&p.Targets.BMR, &p.Targets.TDEE, &p.Targets.TargetCalories, &p.Targets.TargetProteinG,
		&p.Targets.TargetFatG, &p.Targets.TargetCarbsG, &p.Targets.MonthlyTargetLossKG,
		&created, &updated,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	p.Gender = domain.Gender(gender)
	p.DietMode = domain.DietMode(mode)
	if p.StartDate, err = domain.ParseDate(start); err != nil {
		return domain.Profile{}, fmt.Errorf("parse start_date %q: %w", start, err)
	}
	p.CreatedAt, p.UpdatedAt = created.ptr(), updated.ptr()
	return p, nil
}

func (s *SQLite) GetProfile(ctx context.Context, userID int) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	return p, notFound(err)
}

func (s *SQLite) SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO profiles (user_id, name, gender, age, height_cm, current_weight_kg, target_weight_kg,
			diet_mode, reduction_rate, start_date, bmr, tdee, target_calories, target_protein_g,
			target_fat_g, target_carbs_g, monthly_target_loss_kg)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			name                   = excluded.name,
			gender                 = excluded.gender,
			age                    = excluded.age,
			height_cm              = excluded.height_cm,
			current_weight_kg      = excluded.current_weight_kg,
			target_weight_kg       = excluded.target_weight_kg,
			diet_mode              = excluded.diet_mode,
			reduction_rate         = excluded.reduction_rate,
			start_date             = excluded.start_date,
			bmr                    = excluded.bmr,
			tdee                   = excluded.tdee,
			target_calories        = excluded.target_calories,
			target_protein_g       = excluded.target_protein_g,
			target_fat_g           = excluded.target_fat_g,
			target_carbs_g         = excluded.target_carbs_g,
			monthly_target_loss_kg = excluded.monthly_target_loss_kg,
			updated_at             = CURRENT_TIMESTAMP
		 RETURNING `+profileColumns,
		p.UserID, p.Name, string(p.Gender), p.Age, p.HeightCM, p.CurrentWeightKG, p.TargetWeightKG,
		string(p.DietMode), p.ReductionRate, p.StartDate.String(),
		p.Targets.BMR, p.Targets.TDEE, p.Targets.TargetCalories, p.Targets.TargetProteinG,
		p.Targets.TargetFatG, p.Targets.TargetCarbsG, p.Targets.MonthlyTargetLossKG,
	)
	saved, err := scanProfile(row)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return saved, nil
}

/* ─── Daily records ───────────────────────────────────────────────────── */

func scanRecord(row scanner) (domain.DailyRecord, error) {
	var r domain.DailyRecord
	var date string
	var created sqliteTime
	err := row.Scan(&r.ID, &r.UserID, &date, &r.DayCount, &r.WeightKG,
		&r.Calories, &r.ProteinG, &r.FatG, &r.CarbsG, &r.Exercise, &created)
	if err != nil {
		return domain.DailyRecord{}, err
	}
	if r.Date, err = domain.ParseDate(date); err != nil {
		return domain.DailyRecord{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	r.CreatedAt = created.ptr()
	return r, nil
}

func (s *SQLite) UpsertRecord(ctx context.Context, r domain.DailyRecord) (domain.DailyRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO daily_records (user_id, date, day_count, weight_kg, calories, protein_g, fat_g, carbs_g, exercise)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			day_count = excluded.day_count,
			weight_kg = excluded.weight_kg,
			calories  = excluded.calories,
			protein_g = excluded.protein_g,
			fat_g     = excluded.fat_g,
			carbs_g   = excluded.carbs_g,
			exercise  = excluded.exercise
		 RETURNING `+recordColumns,
		r.UserID, r.Date.String(), r.DayCount, r.WeightKG,
		r.Calories, r.ProteinG, r.FatG, r.CarbsG, r.Exercise)
	saved, err := scanRecord(row)
	if err != nil {
		return domain.DailyRecord{}, fmt.Errorf("upsert record: %w", err)
	}
	return saved, nil
}

func (s *SQLite) ListRecords(ctx context.Context, userID int, start, end domain.DateOnly) ([]domain.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM daily_records
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []domain.DailyRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

/* ─── Risk audit ──────────────────────────────────────────────────────── */

func scanAssessment(row scanner) (AssessmentRecord, error) {
	var a AssessmentRecord
	var date, level, reasons, suggestions string
	var created sqliteTime
	if err := row.Scan(&a.ID, &a.UserID, &date, &level, &reasons, &suggestions, &created); err != nil {
		return AssessmentRecord{}, err
	}
	var err error
	if a.Date, err = domain.ParseDate(date); err != nil {
		return AssessmentRecord{}, err
	}
	if a.Level, err = risk.ParseLevel(level); err != nil {
		return AssessmentRecord{}, err
	}
	a.Reasons, a.Suggestions = reasonCodes(splitList(reasons), splitList(suggestions))
	a.CreatedAt = created.ptr()
	return a, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (s *SQLite) SaveAssessment(ctx context.Context, a AssessmentRecord) (AssessmentRecord, error) {
	reasons, suggestions := reasonStrings(a)
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO risk_assessments (id, user_id, date, level, reasons, suggestions)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			level       = excluded.level,
			reasons     = excluded.reasons,
			suggestions = excluded.suggestions,
			created_at  = CURRENT_TIMESTAMP
		 RETURNING `+assessmentColumns,
		uuid.NewString(), a.UserID, a.Date.String(), a.Level.String(),
		strings.Join(reasons, ","), strings.Join(suggestions, ","))
	saved, err := scanAssessment(row)
	if err != nil {
		return AssessmentRecord{}, fmt.Errorf("save assessment: %w", err)
	}
	return saved, nil
}

func (s *SQLite) ListAssessments(ctx context.Context, userID, limit int) ([]AssessmentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assessmentColumns+` FROM risk_assessments
		 WHERE user_id = ?
		 ORDER BY date DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	out := []AssessmentRecord{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

/* ─── Batch queries ───────────────────────────────────────────────────── */

func (s *SQLite) ListUserIDs(ctx context.Context) ([]int, error) {
	return s.collectIDs(ctx, "SELECT user_id FROM profiles ORDER BY user_id")
}

func (s *SQLite) UsersWithoutRecord(ctx context.Context, date domain.DateOnly) ([]int, error) {
	return s.collectIDs(ctx,
		`SELECT p.user_id FROM profiles p
		 WHERE NOT EXISTS (
			SELECT 1 FROM daily_records r WHERE r.user_id = p.user_id AND r.date = ?
		 )
		 ORDER BY p.user_id`,
		date.String())
}

func (s *SQLite) collectIDs(ctx context.Context, query string, args ...any) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
