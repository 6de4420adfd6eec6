package risk

import (
	"math"

	"lg/diet-mentor-go-api/internal/domain"
)

// Rule identifies one independently evaluated risk rule.
type Rule string

const (
	RuleWeightTrend       Rule = "weight_trend"
	RuleMissingRecords    Rule = "missing_records"
	RuleCalorieOverage    Rule = "calorie_overage"
	RuleProteinDeficiency Rule = "protein_deficiency"
)

// ReasonCode names the pattern a rule found.
type ReasonCode string

const (
	ReasonWeightStagnation     ReasonCode = "weight_stagnation"
	ReasonWeightRegain         ReasonCode = "weight_regain"
	ReasonMissingRecords       ReasonCode = "missing_records"
	ReasonCalorieOverageStreak ReasonCode = "calorie_overage_streak"
	ReasonCalorieOverage       ReasonCode = "calorie_overage"
	ReasonProteinDeficiency    ReasonCode = "protein_deficiency"
)

// SuggestionCode names the coaching response paired with a reason.
type SuggestionCode string

const (
	SuggestPlateauPatience   SuggestionCode = "plateau_patience"
	SuggestBackToBasics      SuggestionCode = "back_to_basics"
	SuggestLogWeightOnly     SuggestionCode = "log_weight_only"
	SuggestWithinTenPercent  SuggestionCode = "within_ten_percent"
	SuggestHoldSteady        SuggestionCode = "hold_steady"
	SuggestProteinEasySource SuggestionCode = "protein_easy_source"
)

// Window sizes and thresholds.
const (
	weightTrendWindow      = 8
	stagnationThresholdKG  = 0.3
	regainThresholdKG      = 0.5
	missingDaysThreshold   = 2
	intakeWindow           = 3
	proteinDeficiencyRatio = 0.7
	proteinDeficientDays   = 2
)

// Finding is the evidence behind one fired rule. Value carries the rule's
// measured quantity: net weight change in kg for the weight trend, the number
// of missing days, or the number of offending days in the intake window.
type Finding struct {
	Rule       Rule           `json:"rule"`
	Floor      Level          `json:"floor"`
	Reason     ReasonCode     `json:"reason"`
	Suggestion SuggestionCode `json:"suggestion"`
	Value      float64        `json:"value"`
}

// Assessment is the detector output. It is recomputed on demand; callers may
// store a copy for audit but it is never authoritative state.
type Assessment struct {
	Level       Level            `json:"level"`
	Reasons     []ReasonCode     `json:"reasons"`
	Suggestions []SuggestionCode `json:"suggestions"`
	Evidence    []Finding        `json:"evidence"`
}

// Input bundles what the rules read.
type Input struct {
	TargetCalories float64
	TargetProteinG float64
	Records        []domain.DailyRecord
	DayCount       int
}

type ruleFunc func(Input) (Finding, bool)

// rules run in this order; the order also fixes the order of reasons and
// suggestions in the result.
var rules = []ruleFunc{
	weightTrend,
	missingRecords,
	calorieOverage,
	proteinDeficiency,
}

// Assess evaluates every rule against records (ascending by date, one per
// day) and merges the fired rules by taking the highest floor. A dayCount of
// zero or less means the program day is unknown and the missing-record rule
// is skipped.
func Assess(targets domain.Targets, records []domain.DailyRecord, dayCount int) Assessment {
	return AssessInput(Input{
		TargetCalories: targets.TargetCalories,
		TargetProteinG: targets.TargetProteinG,
		Records:        records,
		DayCount:       dayCount,
	})
}

// AssessInput is Assess over a prepared Input.
func AssessInput(in Input) Assessment {
	a := Assessment{
		Level:       Low,
		Reasons:     make([]ReasonCode, 0, len(rules)),
		Suggestions: make([]SuggestionCode, 0, len(rules)),
		Evidence:    make([]Finding, 0, len(rules)),
	}
	for _, rule := range rules {
		f, fired := rule(in)
		if !fired {
			continue
		}
		a.Level = maxLevel(a.Level, f.Floor)
		a.Reasons = append(a.Reasons, f.Reason)
		a.Suggestions = append(a.Suggestions, f.Suggestion)
		a.Evidence = append(a.Evidence, f)
	}
	return a
}

// weightTrend compares the first and last of the 8 most recent weights.
// Stagnation and regain are exclusive branches.
func weightTrend(in Input) (Finding, bool) {
	window := domain.Trailing(in.Records, weightTrendWindow)
	if window == nil {
		return Finding{}, false
	}
	// Positive change is a loss. Rounded to scale precision so 70.0 -> 70.3
	// is not read as 0.2999.
	change := roundKG(window[0].WeightKG - window[len(window)-1].WeightKG)

	switch {
	case math.Abs(change) < stagnationThresholdKG:
		return Finding{
			Rule:       RuleWeightTrend,
			Floor:      Medium,
			Reason:     ReasonWeightStagnation,
			Suggestion: SuggestPlateauPatience,
			Value:      change,
		}, true
	case change < -regainThresholdKG:
		return Finding{
			Rule:       RuleWeightTrend,
			Floor:      High,
			Reason:     ReasonWeightRegain,
			Suggestion: SuggestBackToBasics,
			Value:      change,
		}, true
	}
	return Finding{}, false
}

// missingRecords counts program days before today that have no record.
func missingRecords(in Input) (Finding, bool) {
	if in.DayCount <= 0 {
		return Finding{}, false
	}
	missing := in.DayCount - 1 - len(in.Records)
	if missing < missingDaysThreshold {
		return Finding{}, false
	}
	return Finding{
		Rule:       RuleMissingRecords,
		Floor:      High,
		Reason:     ReasonMissingRecords,
		Suggestion: SuggestLogWeightOnly,
		Value:      float64(missing),
	}, true
}

// calorieOverage counts days over the calorie target among the last three,
// provided all three logged calories.
func calorieOverage(in Input) (Finding, bool) {
	window := domain.Trailing(in.Records, intakeWindow)
	if window == nil {
		return Finding{}, false
	}
	over := 0
	for _, r := range window {
		if r.Calories == nil {
			return Finding{}, false
		}
		if *r.Calories > in.TargetCalories {
			over++
		}
	}

	switch over {
	case 3:
		return Finding{
			Rule:       RuleCalorieOverage,
			Floor:      High,
			Reason:     ReasonCalorieOverageStreak,
			Suggestion: SuggestWithinTenPercent,
			Value:      float64(over),
		}, true
	case 2:
		return Finding{
			Rule:       RuleCalorieOverage,
			Floor:      Medium,
			Reason:     ReasonCalorieOverage,
			Suggestion: SuggestHoldSteady,
			Value:      float64(over),
		}, true
	}
	return Finding{}, false
}

// proteinDeficiency counts days under 70% of the protein target among the
// last three, provided all three logged protein.
func proteinDeficiency(in Input) (Finding, bool) {
	window := domain.Trailing(in.Records, intakeWindow)
	if window == nil {
		return Finding{}, false
	}
	floor := in.TargetProteinG * proteinDeficiencyRatio
	low := 0
	for _, r := range window {
		if r.ProteinG == nil {
			return Finding{}, false
		}
		if *r.ProteinG < floor {
			low++
		}
	}
	if low < proteinDeficientDays {
		return Finding{}, false
	}
	return Finding{
		Rule:       RuleProteinDeficiency,
		Floor:      Medium,
		Reason:     ReasonProteinDeficiency,
		Suggestion: SuggestProteinEasySource,
		Value:      float64(low),
	}, true
}

func roundKG(v float64) float64 {
	return math.Round(v*100) / 100
}
