package nutrition

import (
	"errors"
	"fmt"
)

// ReasonCode identifies why a profile input was rejected.
type ReasonCode string

const (
	ReasonInvalidPhysicalInput       ReasonCode = "invalid_physical_input"
	ReasonRateExceedsMaximum         ReasonCode = "rate_exceeds_maximum"
	ReasonTargetAboveCurrent         ReasonCode = "target_above_current"
	ReasonUnrecognizedReductionRate  ReasonCode = "unrecognized_reduction_rate"
	ReasonUnrecognizedDietMode       ReasonCode = "unrecognized_diet_mode"
	ReasonInvalidActivityCoefficient ReasonCode = "invalid_activity_coefficient"
)

var (
	ErrInvalidPhysicalInput       = errors.New("invalid physical input")
	ErrRateExceedsMaximum         = errors.New("reduction rate exceeds maximum")
	ErrTargetAboveCurrent         = errors.New("target weight above current weight")
	ErrUnrecognizedReductionRate  = errors.New("unrecognized reduction rate")
	ErrUnrecognizedDietMode       = errors.New("unrecognized diet mode")
	ErrInvalidActivityCoefficient = errors.New("invalid activity coefficient")
)

var sentinels = map[ReasonCode]error{
	ReasonInvalidPhysicalInput:       ErrInvalidPhysicalInput,
	ReasonRateExceedsMaximum:         ErrRateExceedsMaximum,
	ReasonTargetAboveCurrent:         ErrTargetAboveCurrent,
	ReasonUnrecognizedReductionRate:  ErrUnrecognizedReductionRate,
	ReasonUnrecognizedDietMode:       ErrUnrecognizedDietMode,
	ReasonInvalidActivityCoefficient: ErrInvalidActivityCoefficient,
}

// ValidationError is a user-input problem. It blocks profile creation or
// update until the caller resubmits; there is nothing to retry.
type ValidationError struct {
	Reason ReasonCode
	Field  string
	Value  float64
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s=%g", e.Reason, e.Field, e.Value)
}

// Unwrap lets errors.Is match the sentinel for the reason.
func (e *ValidationError) Unwrap() error {
	return sentinels[e.Reason]
}

func invalid(reason ReasonCode, field string, value float64) *ValidationError {
	return &ValidationError{Reason: reason, Field: field, Value: value}
}

// ReasonOf extracts the reason code from err, or "" when err is not a
// validation failure.
func ReasonOf(err error) ReasonCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
