package domain

import "time"

// DailyRecord is one day's self-report. Weight is required; the nutrition
// fields are nil when the user did not log them. At most one record exists
// per (user, date).
type DailyRecord struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	Date      DateOnly   `json:"date"`
	DayCount  int        `json:"day_count"`
	WeightKG  float64    `json:"weight_kg"`
	Calories  *float64   `json:"calories"`
	ProteinG  *float64   `json:"protein_g"`
	FatG      *float64   `json:"fat_g"`
	CarbsG    *float64   `json:"carbs_g"`
	Exercise  string     `json:"exercise,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// HasMacros reports whether protein, fat and carbs were all logged.
func (r DailyRecord) HasMacros() bool {
	return r.ProteinG != nil && r.FatG != nil && r.CarbsG != nil
}

// Trailing returns the last n records, or nil when fewer than n exist.
func Trailing(records []DailyRecord, n int) []DailyRecord {
	if n <= 0 || len(records) < n {
		return nil
	}
	return records[len(records)-n:]
}

// Last returns up to n trailing records.
func Last(records []DailyRecord, n int) []DailyRecord {
	if n <= 0 {
		return nil
	}
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}
