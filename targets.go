package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/diet-mentor-go-api/internal/nutrition"
)

// computeTargets derives BMR, TDEE and intake targets from body inputs
// without storing anything.
// POST /api/targets (public). Invalid inputs answer 422 with a reason code.
func (h *Handler) computeTargets(c *gin.Context) {
	var body targetsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, rate, err := resolveRate(body.DietMode, body.ReductionRate)
	if err != nil {
		h.serviceError(c, err, "")
		return
	}

	targets, err := h.coach.ComputeTargets(nutrition.Input{
		Gender:              body.Gender,
		WeightKG:            body.WeightKG,
		HeightCM:            body.HeightCM,
		Age:                 body.Age,
		ActivityCoefficient: body.ActivityCoefficient,
		ReductionRate:       rate,
	})
	if err != nil {
		h.serviceError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, targetsResponse{DietMode: mode, ReductionRate: rate, Targets: targets})
}

// validateRate checks a requested pace against the configured maximum.
// POST /api/targets/validate-rate (public). Always 200; the verdict is in
// the body as {valid, reason}.
func (h *Handler) validateRate(c *gin.Context) {
	var body validateRateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	c.JSON(http.StatusOK, h.coach.ValidateRate(body.CurrentWeightKG, body.TargetWeightKG, body.ReductionRate))
}
