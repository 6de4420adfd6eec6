package phrase

import (
	"fmt"
	"math"
	"strconv"

	"lg/diet-mentor-go-api/internal/report"
	"lg/diet-mentor-go-api/internal/risk"
)

const KindRiskLevel = "risk_level"

// RenderAssessment renders the level followed by a reason and suggestion line
// per fired rule, in rule order. Keys the provider does not know are skipped.
func RenderAssessment(p Provider, a risk.Assessment) []string {
	var lines []string
	lines = appendPhrase(lines, p, Key{KindRiskLevel, a.Level.String()}, nil)
	for _, ev := range a.Evidence {
		vars := Vars{
			"count": strconv.Itoa(int(ev.Value)),
			"kg":    kg(ev.Value),
		}
		lines = appendPhrase(lines, p, Key{KindRiskReason, string(ev.Reason)}, vars)
		lines = appendPhrase(lines, p, Key{KindRiskSuggestion, string(ev.Suggestion)}, vars)
	}
	return lines
}

// RenderReport renders one line per fact present in r.
func RenderReport(p Provider, r report.Report) []string {
	kind := string(r.Kind)
	if r.NoData {
		return appendPhrase(nil, p, Key{kind, "no_data"}, nil)
	}

	var lines []string
	if d := r.Daily; d != nil {
		if d.WeightBand != "" {
			vars := Vars{"delta": kg(*d.WeightDeltaKG), "to_goal": kg(d.WeightToGoalKG)}
			lines = appendPhrase(lines, p, Key{kind, "weight_band." + string(d.WeightBand)}, vars)
		}
		if d.CalorieBand != "" {
			vars := Vars{"calories": whole(*d.Calories), "deviation": whole(math.Abs(*d.CalorieDeviationPct))}
			lines = appendPhrase(lines, p, Key{kind, "calorie_band." + string(d.CalorieBand)}, vars)
		}
		if d.Macros != nil {
			vars := Vars{
				"p": strconv.Itoa(d.Macros.ProteinPct),
				"f": strconv.Itoa(d.Macros.FatPct),
				"c": strconv.Itoa(d.Macros.CarbsPct),
			}
			lines = appendPhrase(lines, p, Key{kind, "macros"}, vars)
		}
		if d.ProteinBand != "" {
			lines = appendPhrase(lines, p, Key{kind, "protein_band." + string(d.ProteinBand)}, nil)
		}
		if d.ExerciseLogged {
			lines = appendPhrase(lines, p, Key{kind, "exercise_logged"}, nil)
		}
	}

	if f := r.Period; f != nil {
		vars := Vars{
			"number":   strconv.Itoa(f.Number),
			"start":    kg(f.StartWeightKG),
			"end":      kg(f.EndWeightKG),
			"change":   kg(f.WeightChangeKG),
			"target":   kg(f.TargetChangeKG),
			"days":     strconv.Itoa(f.RecordDays),
			"expected": strconv.Itoa(f.ExpectedDays),
			"coverage": whole(f.Coverage * 100),
		}
		if f.ChangeRatePct != nil {
			vars["rate"] = kg(*f.ChangeRatePct)
		}
		if f.AverageCalories != nil {
			vars["average"] = whole(*f.AverageCalories)
		}
		lines = appendPhrase(lines, p, Key{kind, "summary"}, vars)
		lines = appendPhrase(lines, p, Key{kind, "pace_band." + string(f.PaceBand)}, vars)
		if f.CalorieBand != "" {
			lines = appendPhrase(lines, p, Key{kind, "calorie_band." + string(f.CalorieBand)}, vars)
		}
		lines = appendPhrase(lines, p, Key{kind, "coverage_tier." + string(f.CoverageTier)}, vars)
	}
	return lines
}

// KindReminder groups the nudges sent to users with no record for today.
const KindReminder = "reminder"

// RenderReminder returns a reminder nudge for name, or "" when p has none.
func RenderReminder(p Provider, name string) string {
	if name == "" {
		name = "there"
	}
	lines := appendPhrase(nil, p, Key{KindReminder, "daily"}, Vars{"name": name})
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

func appendPhrase(lines []string, p Provider, key Key, vars Vars) []string {
	s, ok := p.Phrase(key)
	if !ok {
		return lines
	}
	return append(lines, fill(s, vars))
}

// kg formats a magnitude to one decimal; sign is carried by the wording.
func kg(v float64) string {
	return fmt.Sprintf("%.1f", math.Abs(v))
}

func whole(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
