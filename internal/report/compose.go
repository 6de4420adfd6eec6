package report

import (
	"math"
	"strings"

	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/nutrition"
)

const (
	calorieTolerancePct = 10.0
	onTrackShare        = 0.8
	weeksPerMonth       = 4

	excellentCoverage = 0.9
	goodCoverage      = 0.7

	adequateProteinShare = 0.9
	lowProteinShare      = 0.7
)

// noExercise holds the notes users send when they did not exercise.
var noExercise = map[string]bool{
	"":        true,
	"none":    true,
	"no":      true,
	"nothing": true,
	"-":       true,
	"なし":      true,
	"なし。":     true,
	"特になし":    true,
}

// DailyFacts describes the most recent day of a window. Pointer fields and
// empty bands are omitted when the inputs they depend on were not logged.
type DailyFacts struct {
	Date                domain.DateOnly          `json:"date"`
	DayCount            int                      `json:"day_count"`
	WeightKG            float64                  `json:"weight_kg"`
	WeightDeltaKG       *float64                 `json:"weight_delta_kg,omitempty"`
	WeightBand          WeightBand               `json:"weight_band,omitempty"`
	WeightToGoalKG      float64                  `json:"weight_to_goal_kg"`
	Calories            *float64                 `json:"calories,omitempty"`
	CalorieDeviationPct *float64                 `json:"calorie_deviation_pct,omitempty"`
	CalorieBand         CalorieBand              `json:"calorie_band,omitempty"`
	Macros              *domain.MacroPercentages `json:"macros,omitempty"`
	ProteinBand         ProteinBand              `json:"protein_band,omitempty"`
	ExerciseLogged      bool                     `json:"exercise_logged"`
}

// PeriodFacts aggregates a weekly or monthly window. Number is the 1-based
// week or month of the program the window ends in.
type PeriodFacts struct {
	Number          int          `json:"number"`
	StartWeightKG   float64      `json:"start_weight_kg"`
	EndWeightKG     float64      `json:"end_weight_kg"`
	WeightChangeKG  float64      `json:"weight_change_kg"`
	TargetChangeKG  float64      `json:"target_change_kg"`
	PaceBand        PaceBand     `json:"pace_band"`
	ChangeRatePct   *float64     `json:"change_rate_pct,omitempty"`
	AverageCalories *float64     `json:"average_calories,omitempty"`
	CalorieBand     CalorieBand  `json:"calorie_band,omitempty"`
	RecordDays      int          `json:"record_days"`
	ExpectedDays    int          `json:"expected_days"`
	Coverage        float64      `json:"coverage"`
	CoverageTier    CoverageTier `json:"coverage_tier"`
}

// Report is structured facts only; wording belongs to the phrase catalog.
type Report struct {
	Kind   Kind         `json:"kind"`
	NoData bool         `json:"no_data"`
	Daily  *DailyFacts  `json:"daily,omitempty"`
	Period *PeriodFacts `json:"period,omitempty"`
}

// Compose builds a report of kind from window, which must be ascending by
// date with at most one record per day. For daily reports the last record is
// "today" and previous, when non-nil, is the record it is compared against.
// Weekly and monthly reports read at most the trailing 7 or 30 records.
// An empty window yields a NoData report.
func Compose(kind Kind, profile domain.Profile, window []domain.DailyRecord, previous *domain.DailyRecord) (Report, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Report{}, err
	}
	window = domain.Last(window, kind.WindowDays())
	if len(window) == 0 {
		return Report{Kind: kind, NoData: true}, nil
	}

	if kind == KindDaily {
		return Report{Kind: kind, Daily: daily(profile, window[len(window)-1], previous)}, nil
	}
	return Report{Kind: kind, Period: period(kind, profile, window)}, nil
}

func daily(p domain.Profile, today domain.DailyRecord, previous *domain.DailyRecord) *DailyFacts {
	facts := &DailyFacts{
		Date:           today.Date,
		DayCount:       dayCount(p, today),
		WeightKG:       today.WeightKG,
		WeightToGoalKG: round(today.WeightKG-p.TargetWeightKG, 2),
		ExerciseLogged: exerciseLogged(today.Exercise),
	}

	if previous != nil {
		delta := round(today.WeightKG-previous.WeightKG, 2)
		facts.WeightDeltaKG = &delta
		switch {
		case delta < 0:
			facts.WeightBand = WeightImproved
		case delta > 0:
			facts.WeightBand = WeightWorsened
		default:
			facts.WeightBand = WeightFlat
		}
	}

	if hasCalories(today) {
		cal := *today.Calories
		facts.Calories = &cal
		if dev, band, ok := calorieDeviation(cal, p.Targets.TargetCalories); ok {
			facts.CalorieDeviationPct = &dev
			facts.CalorieBand = band
		}
	}

	if today.HasMacros() {
		pct := nutrition.PFCPercentage(*today.ProteinG, *today.FatG, *today.CarbsG)
		facts.Macros = &pct
	}

	if today.ProteinG != nil && p.Targets.TargetProteinG > 0 {
		share := *today.ProteinG / p.Targets.TargetProteinG
		switch {
		case share >= adequateProteinShare:
			facts.ProteinBand = ProteinAdequate
		case share < lowProteinShare:
			facts.ProteinBand = ProteinLow
		default:
			facts.ProteinBand = ProteinFair
		}
	}
	return facts
}

func period(kind Kind, p domain.Profile, window []domain.DailyRecord) *PeriodFacts {
	first, last := window[0], window[len(window)-1]
	expected := kind.WindowDays()

	// Positive change is a loss.
	change := round(first.WeightKG-last.WeightKG, 2)
	target := p.CurrentWeightKG * p.ReductionRate
	if kind == KindWeekly {
		target /= weeksPerMonth
	}

	facts := &PeriodFacts{
		Number:         (dayCount(p, last)-1)/expected + 1,
		StartWeightKG:  first.WeightKG,
		EndWeightKG:    last.WeightKG,
		WeightChangeKG: change,
		TargetChangeKG: round(target, 2),
		PaceBand:       pace(change, target),
		RecordDays:     len(window),
		ExpectedDays:   expected,
		Coverage:       float64(len(window)) / float64(expected),
	}
	if facts.Number < 1 {
		facts.Number = 1
	}

	switch {
	case facts.Coverage >= excellentCoverage:
		facts.CoverageTier = CoverageExcellent
	case facts.Coverage >= goodCoverage:
		facts.CoverageTier = CoverageGood
	default:
		facts.CoverageTier = CoverageLow
	}

	if kind == KindMonthly && first.WeightKG > 0 {
		rate := round(change/first.WeightKG*100, 1)
		facts.ChangeRatePct = &rate
	}

	var sum float64
	var n int
	for _, r := range window {
		if hasCalories(r) {
			sum += *r.Calories
			n++
		}
	}
	if n > 0 {
		raw := sum / float64(n)
		avg := round(raw, 1)
		facts.AverageCalories = &avg
		if _, band, ok := calorieDeviation(raw, p.Targets.TargetCalories); ok {
			facts.CalorieBand = band
		}
	}
	return facts
}

// pace compares loss against target: at least 80% is on track, any other
// loss is slow, and no loss is stalled. The threshold is rounded so that a
// change read off the scale compares cleanly against it.
func pace(change, target float64) PaceBand {
	switch {
	case change >= round(target*onTrackShare, 4):
		return PaceOnTrack
	case change > 0:
		return PaceSlow
	}
	return PaceStalled
}

// calorieDeviation returns the deviation from target in percent, rounded to
// 2 decimals, and its band. The band is taken from the unrounded value.
// ok is false when there is no usable target.
func calorieDeviation(calories, target float64) (float64, CalorieBand, bool) {
	if target <= 0 {
		return 0, "", false
	}
	dev := (calories - target) / target * 100
	band := CaloriesUnder
	switch {
	case math.Abs(dev) <= calorieTolerancePct:
		band = CaloriesOnTarget
	case dev > 0:
		band = CaloriesOver
	}
	return round(dev, 2), band, true
}

// hasCalories reports whether r counts as a day with calorie data. A logged
// zero is treated like no entry.
func hasCalories(r domain.DailyRecord) bool {
	return r.Calories != nil && *r.Calories > 0
}

func dayCount(p domain.Profile, r domain.DailyRecord) int {
	if r.DayCount > 0 {
		return r.DayCount
	}
	if p.StartDate.IsZero() {
		return 0
	}
	return p.DayCount(r.Date)
}

func exerciseLogged(note string) bool {
	return !noExercise[strings.ToLower(strings.TrimSpace(note))]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
