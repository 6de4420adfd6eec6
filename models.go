package main

import (
	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/nutrition"
	"lg/diet-mentor-go-api/internal/report"
	"lg/diet-mentor-go-api/internal/risk"
)

/* ─── Requests ───────────────────────────────────────────────────────── */

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// targetsRequest is the body of POST /api/targets. DietMode wins over
// ReductionRate when both are sent. A zero ActivityCoefficient selects the
// server default.
type targetsRequest struct {
	Gender              domain.Gender   `json:"gender" binding:"required"`
	Age                 int             `json:"age"`
	HeightCM            float64         `json:"height_cm"`
	WeightKG            float64         `json:"weight_kg"`
	ActivityCoefficient float64         `json:"activity_coefficient"`
	DietMode            domain.DietMode `json:"diet_mode" binding:"omitempty,oneof=light hard"`
	ReductionRate       float64         `json:"reduction_rate"`
}

// validateRateRequest only requires a positive current weight; zero target
// or rate values are judged by the validator, not rejected at binding.
type validateRateRequest struct {
	CurrentWeightKG float64 `json:"current_weight_kg" binding:"required,gt=0"`
	TargetWeightKG  float64 `json:"target_weight_kg" binding:"gte=0"`
	ReductionRate   float64 `json:"reduction_rate" binding:"gte=0"`
}

// profileRequest is the body of PUT /api/profile. Targets are always
// recomputed server-side; StartDate may be omitted to keep the current one.
type profileRequest struct {
	Name            string          `json:"name" binding:"max=100"`
	Gender          domain.Gender   `json:"gender" binding:"required"`
	Age             int             `json:"age"`
	HeightCM        float64         `json:"height_cm"`
	CurrentWeightKG float64         `json:"current_weight_kg"`
	TargetWeightKG  float64         `json:"target_weight_kg"`
	DietMode        domain.DietMode `json:"diet_mode" binding:"omitempty,oneof=light hard"`
	ReductionRate   float64         `json:"reduction_rate"`
	StartDate       string          `json:"start_date"`
}

// recordRequest is the body of POST /api/records. Date defaults to today.
// Posting the same date again replaces that day's record.
type recordRequest struct {
	Date     string   `json:"date"`
	WeightKG float64  `json:"weight_kg" binding:"required"`
	Calories *float64 `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	FatG     *float64 `json:"fat_g"`
	CarbsG   *float64 `json:"carbs_g"`
	Exercise string   `json:"exercise" binding:"max=500"`
}

/* ─── Responses ──────────────────────────────────────────────────────── */

// targetsResponse echoes the resolved mode and rate with the computed targets.
type targetsResponse struct {
	DietMode      domain.DietMode `json:"diet_mode"`
	ReductionRate float64         `json:"reduction_rate"`
	Targets       domain.Targets  `json:"targets"`
}

// riskResponse is GET /api/risk. Messages is present only with render=true.
type riskResponse struct {
	Date domain.DateOnly `json:"date"`
	risk.Assessment
	Messages []string `json:"messages,omitempty"`
}

// reportResponse is GET /api/reports/:kind. Messages is present only with
// render=true.
type reportResponse struct {
	Date domain.DateOnly `json:"date"`
	report.Report
	Messages []string `json:"messages,omitempty"`
}

// resolveRate applies the diet mode / reduction rate precedence shared by
// targets and profile requests.
func resolveRate(mode domain.DietMode, rate float64) (domain.DietMode, float64, error) {
	if mode != "" {
		r, err := nutrition.ReductionRateFor(mode)
		return mode, r, err
	}
	m, err := nutrition.ModeFor(rate)
	return m, rate, err
}
