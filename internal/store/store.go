// Package store persists users, profiles, daily records and risk audit
// snapshots. Postgres is the production backend; SQLite backs local
// development and tests. Both return records ascending by date, one per day.
package store

import (
	"context"
	"errors"
	"time"

	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/risk"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("not found")

// AssessmentRecord is an audit copy of a risk assessment. At most one exists
// per (user, date); saving again replaces it.
type AssessmentRecord struct {
	ID          string                `json:"id"`
	UserID      int                   `json:"user_id"`
	Date        domain.DateOnly       `json:"date"`
	Level       risk.Level            `json:"level"`
	Reasons     []risk.ReasonCode     `json:"reasons"`
	Suggestions []risk.SuggestionCode `json:"suggestions"`
	CreatedAt   *time.Time            `json:"created_at,omitempty"`
}

// Store is implemented by Postgres and SQLite.
type Store interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UserIDForToken(ctx context.Context, token string) (int, error)

	GetProfile(ctx context.Context, userID int) (domain.Profile, error)
	SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)

	UpsertRecord(ctx context.Context, r domain.DailyRecord) (domain.DailyRecord, error)
	ListRecords(ctx context.Context, userID int, start, end domain.DateOnly) ([]domain.DailyRecord, error)

	SaveAssessment(ctx context.Context, a AssessmentRecord) (AssessmentRecord, error)
	ListAssessments(ctx context.Context, userID, limit int) ([]AssessmentRecord, error)

	ListUserIDs(ctx context.Context) ([]int, error)
	UsersWithoutRecord(ctx context.Context, date domain.DateOnly) ([]int, error)

	Ping(ctx context.Context) error
	Close()
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*SQLite)(nil)
)

func reasonStrings(a AssessmentRecord) (reasons, suggestions []string) {
	reasons = make([]string, len(a.Reasons))
	for i, r := range a.Reasons {
		reasons[i] = string(r)
	}
	suggestions = make([]string, len(a.Suggestions))
	for i, s := range a.Suggestions {
		suggestions[i] = string(s)
	}
	return reasons, suggestions
}

func reasonCodes(reasons, suggestions []string) ([]risk.ReasonCode, []risk.SuggestionCode) {
	rs := make([]risk.ReasonCode, len(reasons))
	for i, r := range reasons {
		rs[i] = risk.ReasonCode(r)
	}
	ss := make([]risk.SuggestionCode, len(suggestions))
	for i, s := range suggestions {
		ss[i] = risk.SuggestionCode(s)
	}
	return rs, ss
}
