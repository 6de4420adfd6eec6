package phrase

var english = map[Key][]string{
	// Risk level
	{KindRiskLevel, "low"}:    {"You're on a steady path. Keep it up!"},
	{KindRiskLevel, "medium"}: {"A few signs worth watching this week.", "Let's give things a small nudge this week."},
	{KindRiskLevel, "high"}:   {"Let's regroup together. Small steps count.", "It's a tough stretch, and that's fine. Let's reset gently."},

	// Risk reasons
	{KindRiskReason, "weight_stagnation"}: {
		"Your weight has held within {kg} kg over the last 8 records.",
		"The scale has barely moved over your last 8 records.",
	},
	{KindRiskReason, "weight_regain"}: {
		"Your weight is up {kg} kg over the last 8 records.",
	},
	{KindRiskReason, "missing_records"}: {
		"{count} days have no record yet.",
		"We haven't heard from you for {count} days.",
	},
	{KindRiskReason, "calorie_overage_streak"}: {
		"Calories were over target on each of the last 3 days.",
	},
	{KindRiskReason, "calorie_overage"}: {
		"Calories were over target on 2 of the last 3 days.",
	},
	{KindRiskReason, "protein_deficiency"}: {
		"Protein was under 70% of target on {count} of the last 3 days.",
	},

	// Risk suggestions
	{KindRiskSuggestion, "plateau_patience"}: {
		"Plateaus are normal. Keep logging and the trend will come back.",
		"Try a short walk after dinner to nudge things along.",
	},
	{KindRiskSuggestion, "back_to_basics"}: {
		"Go back to the basics for a few days: regular meals and a daily weigh-in.",
		"Pick one meal a day to keep simple and on target.",
	},
	{KindRiskSuggestion, "log_weight_only"}: {
		"Just logging your weight is enough. Start again today.",
		"Even a weight-only record keeps the habit alive.",
	},
	{KindRiskSuggestion, "within_ten_percent"}: {
		"Aim to land within 10% of your calorie target tomorrow.",
		"Swap one snack for something lighter tomorrow.",
	},
	{KindRiskSuggestion, "hold_steady"}: {
		"One day over is fine. Aim for target tomorrow.",
	},
	{KindRiskSuggestion, "protein_easy_source"}: {
		"Add an easy protein source: eggs, yogurt or chicken.",
		"A protein shake or tofu makes closing the gap simple.",
	},

	// Daily
	{"daily", "no_data"}:                 {"No record for today yet."},
	{"daily", "weight_band.improved"}:    {"Down {delta} kg. {to_goal} kg to go!"},
	{"daily", "weight_band.worsened"}:    {"Up {delta} kg. Daily swings are normal."},
	{"daily", "weight_band.flat"}:        {"No change today. Consistency is what counts."},
	{"daily", "calorie_band.on_target"}:  {"{calories} kcal, right on target."},
	{"daily", "calorie_band.over"}:       {"{calories} kcal, {deviation}% over target. Adjust tomorrow."},
	{"daily", "calorie_band.under"}:      {"{calories} kcal, {deviation}% under target. Don't overdo it."},
	{"daily", "macros"}:                  {"PFC balance P{p}% F{f}% C{c}% (target P30% F20% C50%)."},
	{"daily", "protein_band.adequate"}:   {"Great protein intake today."},
	{"daily", "protein_band.fair"}:       {"Protein is close to target."},
	{"daily", "protein_band.low"}:        {"Protein is on the low side today."},
	{"daily", "exercise_logged"}:         {"Nice work getting some exercise in.", "Every bit of movement adds up."},

	// Weekly
	{"weekly", "no_data"}:                 {"No records this week. Let's start fresh next week."},
	{"weekly", "summary"}:                 {"Week {number}: {start} kg to {end} kg."},
	{"weekly", "pace_band.on_track"}:      {"Right on pace with your weekly target of {target} kg."},
	{"weekly", "pace_band.slow"}:          {"Down {change} kg. Slow and steady works."},
	{"weekly", "pace_band.stalled"}:       {"No loss this week. Plateaus happen to everyone."},
	{"weekly", "calorie_band.on_target"}:  {"Average {average} kcal, right on target."},
	{"weekly", "calorie_band.over"}:       {"Average {average} kcal, a little over target."},
	{"weekly", "calorie_band.under"}:      {"Average {average} kcal, under target. Eat enough to keep going."},
	{"weekly", "coverage_tier.excellent"}: {"Recorded {days}/{expected} days. Perfect!"},
	{"weekly", "coverage_tier.good"}:      {"Recorded {days}/{expected} days. Great consistency."},
	{"weekly", "coverage_tier.low"}:       {"Recorded {days}/{expected} days. Try for a few more next week."},

	// Monthly
	{"monthly", "no_data"}:                 {"No records this month. Let's start fresh next month."},
	{"monthly", "summary"}:                 {"Month {number}: {start} kg to {end} kg ({rate}%)."},
	{"monthly", "pace_band.on_track"}:      {"Monthly target of {target} kg reached. Outstanding!"},
	{"monthly", "pace_band.slow"}:          {"Down {change} kg this month. Keep this pace."},
	{"monthly", "pace_band.stalled"}:       {"Results take time. A month of showing up already counts."},
	{"monthly", "calorie_band.on_target"}:  {"Average {average} kcal for the month."},
	{"monthly", "calorie_band.over"}:       {"Average {average} kcal, over target for the month."},
	{"monthly", "calorie_band.under"}:      {"Average {average} kcal, under target for the month."},
	{"monthly", "coverage_tier.excellent"}: {"{coverage}% of days recorded. Outstanding consistency."},
	{"monthly", "coverage_tier.good"}:      {"{coverage}% of days recorded. Great consistency."},
	{"monthly", "coverage_tier.low"}:       {"{coverage}% of days recorded. More records next month will help."},

	// Reminders
	{KindReminder, "daily"}: {
		"Good morning, {name}! How was the scale today?",
		"{name}, a new day has started. Log this morning's weight to get going.",
		"Morning, {name}. Every record shapes the next one. What's today's weight?",
	},
}
