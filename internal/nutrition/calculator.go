package nutrition

import (
	"math"

	"lg/diet-mentor-go-api/internal/domain"
)

// Reduction rates are the fractional monthly body-weight loss for each diet
// mode. These are the only two rates TargetCalories understands.
const (
	LightReductionRate = 0.02
	HardReductionRate  = 0.04
	MaxReductionRate   = 0.04

	DefaultActivityCoefficient = 1.4
)

// Calorie deficit applied to TDEE for each mode.
const (
	lightDeficitRate = 0.15
	hardDeficitRate  = 0.25
)

// kcal per gram for each macro.
const (
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
	kcalPerGramCarbs   = 4
)

// rateEpsilon absorbs float noise from rates that arrive over JSON or SQL.
const rateEpsilon = 1e-9

// Ratios is the kcal share assigned to each macro.
type Ratios struct {
	Protein float64
	Fat     float64
	Carbs   float64
}

// DefaultRatios is the P30/F20/C50 split.
var DefaultRatios = Ratios{Protein: 0.30, Fat: 0.20, Carbs: 0.50}

// ReductionRateFor maps a diet mode to its monthly reduction rate.
func ReductionRateFor(mode domain.DietMode) (float64, error) {
	switch mode {
	case domain.DietModeLight:
		return LightReductionRate, nil
	case domain.DietModeHard:
		return HardReductionRate, nil
	}
	return 0, &ValidationError{Reason: ReasonUnrecognizedDietMode, Field: "diet_mode"}
}

// ModeFor maps a reduction rate back to its diet mode. Any rate other than the
// two recognized constants is rejected.
func ModeFor(rate float64) (domain.DietMode, error) {
	switch {
	case sameRate(rate, LightReductionRate):
		return domain.DietModeLight, nil
	case sameRate(rate, HardReductionRate):
		return domain.DietModeHard, nil
	}
	return "", invalid(ReasonUnrecognizedReductionRate, "reduction_rate", rate)
}

func sameRate(a, b float64) bool {
	return math.Abs(a-b) < rateEpsilon
}

// BMR computes basal metabolic rate (kcal/day) with the revised
// Harris-Benedict equation. Non-male genders use the female coefficients.
func BMR(gender domain.Gender, weightKG, heightCM float64, ageYears int) (float64, error) {
	if weightKG <= 0 {
		return 0, invalid(ReasonInvalidPhysicalInput, "weight_kg", weightKG)
	}
	if heightCM <= 0 {
		return 0, invalid(ReasonInvalidPhysicalInput, "height_cm", heightCM)
	}
	if ageYears < 0 {
		return 0, invalid(ReasonInvalidPhysicalInput, "age", float64(ageYears))
	}

	age := float64(ageYears)
	if gender == domain.GenderMale {
		return 13.397*weightKG + 4.799*heightCM - 5.677*age + 88.362, nil
	}
	return 9.247*weightKG + 3.098*heightCM - 4.330*age + 447.593, nil
}

// TDEE scales BMR by an activity coefficient (1.4 = light exercise).
func TDEE(bmr, activityCoefficient float64) float64 {
	return bmr * activityCoefficient
}

// TargetCalories applies the mode's deficit to TDEE, rounded to 2 decimals.
// The deficit is a two-point step (15% light, 25% hard), so a rate that is
// neither mode's constant is an error rather than a silent hard-mode default.
func TargetCalories(tdee, reductionRate float64) (float64, error) {
	mode, err := ModeFor(reductionRate)
	if err != nil {
		return 0, err
	}
	deficit := hardDeficitRate
	if mode == domain.DietModeLight {
		deficit = lightDeficitRate
	}
	return round(tdee*(1-deficit), 2), nil
}

// PFCTargets splits a calorie target into grams of protein, fat and carbs
// using 4/9/4 kcal per gram. Each value is rounded to 1 decimal on its own.
func PFCTargets(targetCalories float64, r Ratios) domain.Macros {
	return domain.Macros{
		ProteinG: round(targetCalories*r.Protein/kcalPerGramProtein, 1),
		FatG:     round(targetCalories*r.Fat/kcalPerGramFat, 1),
		CarbsG:   round(targetCalories*r.Carbs/kcalPerGramCarbs, 1),
	}
}

// MonthlyTargetLoss is the kg to lose in a month at the given rate, rounded
// to 1 decimal.
func MonthlyTargetLoss(currentWeightKG, reductionRate float64) float64 {
	return round(currentWeightKG*reductionRate, 1)
}

// PFCPercentage converts gram intake into each macro's share of total kcal.
// Percentages are rounded independently, halves to even, and can drift from
// 100 by a point; that drift is accepted. A zero total yields all zeros.
func PFCPercentage(proteinG, fatG, carbsG float64) domain.MacroPercentages {
	p := proteinG * kcalPerGramProtein
	f := fatG * kcalPerGramFat
	c := carbsG * kcalPerGramCarbs
	total := p + f + c
	if total <= 0 {
		return domain.MacroPercentages{}
	}
	return domain.MacroPercentages{
		ProteinPct: int(math.RoundToEven(p / total * 100)),
		FatPct:     int(math.RoundToEven(f / total * 100)),
		CarbsPct:   int(math.RoundToEven(c / total * 100)),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
