package risk

import (
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"lg/diet-mentor-go-api/internal/domain"
)

var testTargets = domain.Targets{TargetCalories: 1800, TargetProteinG: 120}

func f(v float64) *float64 { return &v }

// weights builds one record per day starting 2026-01-01 with no intake logged.
func weights(ws ...float64) []domain.DailyRecord {
	start, _ := domain.ParseDate("2026-01-01")
	out := make([]domain.DailyRecord, len(ws))
	for i, w := range ws {
		out[i] = domain.DailyRecord{Date: start.AddDays(i), DayCount: i + 1, WeightKG: w}
	}
	return out
}

// withIntake sets calories and protein on the trailing records, oldest first.
func withIntake(records []domain.DailyRecord, calories, protein []float64) []domain.DailyRecord {
	offset := len(records) - len(calories)
	for i := range calories {
		records[offset+i].Calories = f(calories[i])
		records[offset+i].ProteinG = f(protein[i])
	}
	return records
}

/* ─── Weight trend ───────────────────────────────────────────────────── */

func TestAssess_Stagnation(t *testing.T) {
	records := weights(70.0, 70.1, 69.9, 70.2, 70.0, 69.8, 70.1, 70.1)
	a := Assess(testTargets, records, 9)

	if a.Level != Medium {
		t.Errorf("level = %v, want medium", a.Level)
	}
	if !reflect.DeepEqual(a.Reasons, []ReasonCode{ReasonWeightStagnation}) {
		t.Errorf("reasons = %v", a.Reasons)
	}
	if !reflect.DeepEqual(a.Suggestions, []SuggestionCode{SuggestPlateauPatience}) {
		t.Errorf("suggestions = %v", a.Suggestions)
	}
}

// TestAssess_StagnationBoundary verifies a net change of exactly 0.3 kg is
// not a plateau even though the float subtraction lands just under it.
func TestAssess_StagnationBoundary(t *testing.T) {
	records := weights(70.3, 70.2, 70.2, 70.1, 70.1, 70.0, 70.0, 70.0)
	a := Assess(testTargets, records, 0)
	if a.Level != Low || len(a.Reasons) != 0 {
		t.Errorf("got %+v, want low with no reasons", a)
	}
}

func TestAssess_Regain(t *testing.T) {
	records := weights(70.0, 70.1, 70.2, 70.3, 70.4, 70.5, 70.6, 70.7)
	a := Assess(testTargets, records, 0)

	if a.Level != High {
		t.Errorf("level = %v, want high", a.Level)
	}
	if len(a.Evidence) != 1 || a.Evidence[0].Reason != ReasonWeightRegain {
		t.Fatalf("evidence = %+v", a.Evidence)
	}
	if a.Evidence[0].Value != -0.7 {
		t.Errorf("change = %v, want -0.7", a.Evidence[0].Value)
	}
}

func TestAssess_SteadyLossIsLow(t *testing.T) {
	records := weights(72.0, 71.8, 71.6, 71.5, 71.3, 71.1, 71.0, 70.8)
	a := Assess(testTargets, records, 9)
	if a.Level != Low {
		t.Errorf("level = %v, want low (reasons %v)", a.Level, a.Reasons)
	}
}

// TestAssess_WeightTrendNeedsEightRecords verifies that seven flat records do
// not trigger stagnation.
func TestAssess_WeightTrendNeedsEightRecords(t *testing.T) {
	records := weights(70, 70, 70, 70, 70, 70, 70)
	a := Assess(testTargets, records, 0)
	if a.Level != Low {
		t.Errorf("level = %v, want low", a.Level)
	}
}

// TestAssess_UsesMostRecentEight verifies older records outside the window are
// ignored. The ninth-from-last weight would make the window look like a loss.
func TestAssess_UsesMostRecentEight(t *testing.T) {
	records := weights(75, 70, 70, 70, 70, 70, 70, 70, 70)
	a := Assess(testTargets, records, 0)
	if len(a.Reasons) != 1 || a.Reasons[0] != ReasonWeightStagnation {
		t.Errorf("reasons = %v, want stagnation", a.Reasons)
	}
}

/* ─── Missing records ────────────────────────────────────────────────── */

func TestAssess_MissingRecords(t *testing.T) {
	a := Assess(testTargets, weights(70, 69.9, 69.8, 69.7, 69.6), 10)

	if a.Level != High {
		t.Errorf("level = %v, want high", a.Level)
	}
	if len(a.Evidence) != 1 || a.Evidence[0].Rule != RuleMissingRecords {
		t.Fatalf("evidence = %+v", a.Evidence)
	}
	if a.Evidence[0].Value != 4 {
		t.Errorf("missing = %v, want 4", a.Evidence[0].Value)
	}
}

func TestAssess_MissingRecordsThreshold(t *testing.T) {
	cases := []struct {
		name     string
		records  int
		dayCount int
		fired    bool
	}{
		{"none missing", 4, 5, false},
		{"one missing", 3, 5, false},
		{"two missing", 2, 5, true},
		{"day one", 0, 1, false},
		{"unknown day", 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ws := make([]float64, tc.records)
			for i := range ws {
				ws[i] = 70 - float64(i)*0.1
			}
			_, fired := missingRecords(Input{Records: weights(ws...), DayCount: tc.dayCount})
			if fired != tc.fired {
				t.Errorf("fired = %v, want %v", fired, tc.fired)
			}
		})
	}
}

/* ─── Intake ─────────────────────────────────────────────────────────── */

func TestAssess_CalorieOverage(t *testing.T) {
	cases := []struct {
		name     string
		calories []float64
		want     Level
		reason   ReasonCode
	}{
		{"three over", []float64{1900, 2000, 1850}, High, ReasonCalorieOverageStreak},
		{"two over", []float64{1900, 1700, 1850}, Medium, ReasonCalorieOverage},
		{"one over", []float64{1900, 1700, 1600}, Low, ""},
		// Equal to the target is not over.
		{"at target", []float64{1800, 1800, 1800}, Low, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := withIntake(weights(70, 69.9, 69.8), tc.calories, []float64{120, 120, 120})
			a := Assess(testTargets, records, 4)
			if a.Level != tc.want {
				t.Errorf("level = %v, want %v", a.Level, tc.want)
			}
			if tc.reason == "" {
				if len(a.Reasons) != 0 {
					t.Errorf("unexpected reasons %v", a.Reasons)
				}
				return
			}
			if len(a.Reasons) != 1 || a.Reasons[0] != tc.reason {
				t.Errorf("reasons = %v, want [%s]", a.Reasons, tc.reason)
			}
		})
	}
}

// TestAssess_CalorieOverageNeedsAllThree verifies a gap in the last three
// calorie entries skips the rule entirely.
func TestAssess_CalorieOverageNeedsAllThree(t *testing.T) {
	records := withIntake(weights(70, 69.9, 69.8), []float64{2500, 2500, 2500}, []float64{120, 120, 120})
	records[1].Calories = nil
	a := Assess(testTargets, records, 4)
	if a.Level != Low {
		t.Errorf("level = %v, want low", a.Level)
	}
}

func TestAssess_ProteinDeficiency(t *testing.T) {
	// 70% of 120 g is 84 g.
	records := withIntake(weights(70, 69.9, 69.8), []float64{1700, 1700, 1700}, []float64{80, 83.9, 84})
	a := Assess(testTargets, records, 4)

	if a.Level != Medium {
		t.Errorf("level = %v, want medium", a.Level)
	}
	if !reflect.DeepEqual(a.Reasons, []ReasonCode{ReasonProteinDeficiency}) {
		t.Errorf("reasons = %v", a.Reasons)
	}
	if a.Evidence[0].Value != 2 {
		t.Errorf("low days = %v, want 2", a.Evidence[0].Value)
	}
}

func TestAssess_ProteinNeedsAllThree(t *testing.T) {
	records := withIntake(weights(70, 69.9, 69.8), []float64{1700, 1700, 1700}, []float64{10, 10, 10})
	records[2].ProteinG = nil
	a := Assess(testTargets, records, 4)
	if a.Level != Low {
		t.Errorf("level = %v, want low", a.Level)
	}
}

/* ─── Merge ──────────────────────────────────────────────────────────── */

// TestAssess_MergeOrder verifies every fired rule contributes in rule order and
// the level is the highest floor.
func TestAssess_MergeOrder(t *testing.T) {
	records := weights(70, 70, 70, 70, 70, 70, 70, 70)
	records = withIntake(records, []float64{1900, 1700, 1900}, []float64{50, 50, 50})
	a := Assess(testTargets, records, 12)

	wantReasons := []ReasonCode{
		ReasonWeightStagnation,
		ReasonMissingRecords,
		ReasonCalorieOverage,
		ReasonProteinDeficiency,
	}
	if !reflect.DeepEqual(a.Reasons, wantReasons) {
		t.Errorf("reasons = %v, want %v", a.Reasons, wantReasons)
	}
	if len(a.Suggestions) != len(a.Reasons) {
		t.Errorf("%d suggestions for %d reasons", len(a.Suggestions), len(a.Reasons))
	}
	if a.Level != High {
		t.Errorf("level = %v, want high", a.Level)
	}
}

func TestAssess_EmptyHistory(t *testing.T) {
	a := Assess(testTargets, nil, 1)
	if a.Level != Low {
		t.Errorf("level = %v, want low", a.Level)
	}
	if a.Reasons == nil || a.Suggestions == nil || a.Evidence == nil {
		t.Error("expected empty, non-nil slices")
	}
}

func TestAssess_Idempotent(t *testing.T) {
	records := withIntake(weights(70, 70.2, 70.1, 70.3, 70.2, 70.4, 70.5, 70.9), []float64{2100, 1700, 2000}, []float64{60, 130, 70})
	first := Assess(testTargets, records, 11)
	second := Assess(testTargets, records, 11)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("assessments differ:\n%+v\n%+v", first, second)
	}
}

/* ─── Property ───────────────────────────────────────────────────────── */

// expectedFloors recomputes each rule's floor directly from the thresholds.
func expectedFloors(targets domain.Targets, records []domain.DailyRecord, dayCount int) []Level {
	var floors []Level

	if n := len(records); n >= 8 {
		change := math.Round((records[n-8].WeightKG-records[n-1].WeightKG)*100) / 100
		if math.Abs(change) < 0.3 {
			floors = append(floors, Medium)
		} else if change < -0.5 {
			floors = append(floors, High)
		}
	}

	if dayCount > 0 && dayCount-1-len(records) >= 2 {
		floors = append(floors, High)
	}

	if n := len(records); n >= 3 {
		last := records[n-3:]
		calOK, proOK := true, true
		over, low := 0, 0
		for _, r := range last {
			if r.Calories == nil {
				calOK = false
			} else if *r.Calories > targets.TargetCalories {
				over++
			}
			if r.ProteinG == nil {
				proOK = false
			} else if *r.ProteinG < targets.TargetProteinG*0.7 {
				low++
			}
		}
		if calOK && over == 3 {
			floors = append(floors, High)
		} else if calOK && over == 2 {
			floors = append(floors, Medium)
		}
		if proOK && low >= 2 {
			floors = append(floors, Medium)
		}
	}
	return floors
}

// TestAssess_LevelIsMaxOfFloors generates random histories and checks the
// result level equals the highest fired floor and that no fired rule is lost.
func TestAssess_LevelIsMaxOfFloors(t *testing.T) {
	rng := rand.New(rand.NewPCG(20261018, 1))

	for i := 0; i < 2000; i++ {
		n := rng.IntN(16)
		records := make([]domain.DailyRecord, n)
		w := 60 + rng.Float64()*40
		for j := range records {
			w += (rng.Float64() - 0.55) * 0.4
			records[j].WeightKG = math.Round(w*10) / 10
			if rng.IntN(5) > 0 {
				records[j].Calories = f(1400 + float64(rng.IntN(800)))
			}
			if rng.IntN(5) > 0 {
				records[j].ProteinG = f(float64(40 + rng.IntN(120)))
			}
		}
		dayCount := rng.IntN(n + 6)

		a := Assess(testTargets, records, dayCount)
		floors := expectedFloors(testTargets, records, dayCount)

		want := Low
		for _, fl := range floors {
			if fl > want {
				want = fl
			}
		}
		if a.Level != want {
			t.Fatalf("case %d: level = %v, want %v (evidence %+v)", i, a.Level, want, a.Evidence)
		}
		if len(a.Reasons) != len(floors) {
			t.Fatalf("case %d: %d reasons, want %d", i, len(a.Reasons), len(floors))
		}
		for _, ev := range a.Evidence {
			if a.Level < ev.Floor {
				t.Fatalf("case %d: level %v below fired floor %v", i, a.Level, ev.Floor)
			}
		}
	}
}

func TestLevelText(t *testing.T) {
	for _, l := range []Level{Low, Medium, High} {
		b, _ := l.MarshalText()
		var back Level
		if err := back.UnmarshalText(b); err != nil || back != l {
			t.Errorf("round trip %v: got %v, %v", l, back, err)
		}
	}
	if _, err := ParseLevel("severe"); err == nil {
		t.Error("expected error for unknown level")
	}
}
