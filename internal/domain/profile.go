package domain

import "time"

// Gender selects the BMR formula. Anything other than GenderMale uses the
// female coefficients.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// DietMode is the requested pace of weight change.
type DietMode string

const (
	DietModeLight DietMode = "light"
	DietModeHard  DietMode = "hard"
)

// Targets are the energy and macro targets derived from a body profile.
// They are recomputed whenever weight or diet mode changes, never edited.
type Targets struct {
	BMR                 float64 `json:"bmr"`
	TDEE                float64 `json:"tdee"`
	TargetCalories      float64 `json:"target_calories"`
	TargetProteinG      float64 `json:"target_protein_g"`
	TargetFatG          float64 `json:"target_fat_g"`
	TargetCarbsG        float64 `json:"target_carbs_g"`
	MonthlyTargetLossKG float64 `json:"monthly_target_loss_kg"`
}

// Macros is a gram split of protein, fat and carbohydrate.
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

// MacroPercentages is the share of kcal contributed by each macro. Each value
// is rounded on its own, so the three may not sum to exactly 100.
type MacroPercentages struct {
	ProteinPct int `json:"protein_pct"`
	FatPct     int `json:"fat_pct"`
	CarbsPct   int `json:"carbs_pct"`
}

// Profile is one user's body profile plus the targets derived from it.
// StartDate is day 1 of the program and anchors DailyRecord.DayCount.
type Profile struct {
	UserID          int        `json:"user_id"`
	Name            string     `json:"name"`
	Gender          Gender     `json:"gender"`
	Age             int        `json:"age"`
	HeightCM        float64    `json:"height_cm"`
	CurrentWeightKG float64    `json:"current_weight_kg"`
	TargetWeightKG  float64    `json:"target_weight_kg"`
	DietMode        DietMode   `json:"diet_mode"`
	ReductionRate   float64    `json:"reduction_rate"`
	StartDate       DateOnly   `json:"start_date"`
	Targets         Targets    `json:"targets"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// DayCount returns the 1-based program day that date falls on.
func (p Profile) DayCount(date DateOnly) int {
	return date.DaysSince(p.StartDate) + 1
}

// User is an account that owns a profile. Password and AuthToken never leave
// the server.
type User struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	AuthToken string     `json:"-"`
	Password  string     `json:"-"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
