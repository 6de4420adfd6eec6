package report

import (
	"errors"
	"fmt"
)

// Kind selects the report period.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

var ErrUnknownKind = errors.New("unknown report kind")

// ParseKind validates a kind taken from a URL or config.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDaily, KindWeekly, KindMonthly:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// WindowDays is the number of trailing days a report of this kind covers.
func (k Kind) WindowDays() int {
	switch k {
	case KindWeekly:
		return 7
	case KindMonthly:
		return 30
	}
	return 1
}

// WeightBand classifies the day-over-day weight change.
type WeightBand string

const (
	WeightImproved WeightBand = "improved"
	WeightWorsened WeightBand = "worsened"
	WeightFlat     WeightBand = "flat"
)

// CalorieBand classifies intake against the calorie target within ±10%.
type CalorieBand string

const (
	CaloriesOnTarget CalorieBand = "on_target"
	CaloriesOver     CalorieBand = "over"
	CaloriesUnder    CalorieBand = "under"
)

// PaceBand classifies period weight loss against the period target.
type PaceBand string

const (
	PaceOnTrack PaceBand = "on_track"
	PaceSlow    PaceBand = "slow"
	PaceStalled PaceBand = "stalled"
)

// CoverageTier classifies how many days of a period were recorded.
type CoverageTier string

const (
	CoverageExcellent CoverageTier = "excellent"
	CoverageGood      CoverageTier = "good"
	CoverageLow       CoverageTier = "low"
)

// ProteinBand classifies the day's protein against the protein target.
type ProteinBand string

const (
	ProteinAdequate ProteinBand = "adequate"
	ProteinFair     ProteinBand = "fair"
	ProteinLow      ProteinBand = "low"
)
