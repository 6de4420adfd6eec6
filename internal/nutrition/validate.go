package nutrition

import (
	"lg/diet-mentor-go-api/internal/domain"
)

// ValidationResult is the outcome of ValidateReductionRate. Reason is empty
// when Valid is true.
type ValidationResult struct {
	Valid  bool       `json:"valid"`
	Reason ReasonCode `json:"reason,omitempty"`
}

// Err returns the result as an error, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Reason: r.Reason}
}

// ValidateReductionRate checks a requested pace against maxRate and rejects
// weight-gain goals, which are not supported. The first failing check wins.
func ValidateReductionRate(currentWeightKG, targetWeightKG, reductionRate, maxRate float64) ValidationResult {
	if reductionRate > maxRate {
		return ValidationResult{Reason: ReasonRateExceedsMaximum}
	}
	if currentWeightKG < targetWeightKG {
		return ValidationResult{Reason: ReasonTargetAboveCurrent}
	}
	return ValidationResult{Valid: true}
}

// Input is everything ComputeTargets needs from a body profile.
type Input struct {
	Gender              domain.Gender
	WeightKG            float64
	HeightCM            float64
	Age                 int
	ActivityCoefficient float64
	ReductionRate       float64
}

// ComputeTargets derives BMR, TDEE, the calorie target, macro targets and the
// monthly loss target. It fails with a *ValidationError for non-positive body
// measurements, a negative age, a non-positive activity coefficient or a
// reduction rate that is not one of the two diet modes.
func ComputeTargets(in Input) (domain.Targets, error) {
	bmr, err := BMR(in.Gender, in.WeightKG, in.HeightCM, in.Age)
	if err != nil {
		return domain.Targets{}, err
	}
	if in.ActivityCoefficient <= 0 {
		return domain.Targets{}, invalid(ReasonInvalidActivityCoefficient, "activity_coefficient", in.ActivityCoefficient)
	}
	if _, err := ModeFor(in.ReductionRate); err != nil {
		return domain.Targets{}, err
	}

	tdee := TDEE(bmr, in.ActivityCoefficient)
	calories, err := TargetCalories(tdee, in.ReductionRate)
	if err != nil {
		return domain.Targets{}, err
	}
	macros := PFCTargets(calories, DefaultRatios)

	return domain.Targets{
		BMR:                 round(bmr, 2),
		TDEE:                round(tdee, 2),
		TargetCalories:      calories,
		TargetProteinG:      macros.ProteinG,
		TargetFatG:          macros.FatG,
		TargetCarbsG:        macros.CarbsG,
		MonthlyTargetLossKG: MonthlyTargetLoss(in.WeightKG, in.ReductionRate),
	}, nil
}

// Refresh validates p and recomputes its derived targets from its current
// body fields. DietMode wins over ReductionRate when both are set; the rate is
// rewritten to match the mode.
func Refresh(p domain.Profile, activityCoefficient, maxRate float64) (domain.Profile, error) {
	if p.DietMode != "" {
		rate, err := ReductionRateFor(p.DietMode)
		if err != nil {
			return p, err
		}
		p.ReductionRate = rate
	} else {
		mode, err := ModeFor(p.ReductionRate)
		if err != nil {
			return p, err
		}
		p.DietMode = mode
	}

	if err := ValidateReductionRate(p.CurrentWeightKG, p.TargetWeightKG, p.ReductionRate, maxRate).Err(); err != nil {
		return p, err
	}

	targets, err := ComputeTargets(Input{
		Gender:              p.Gender,
		WeightKG:            p.CurrentWeightKG,
		HeightCM:            p.HeightCM,
		Age:                 p.Age,
		ActivityCoefficient: activityCoefficient,
		ReductionRate:       p.ReductionRate,
	})
	if err != nil {
		return p, err
	}
	p.Targets = targets
	return p, nil
}
