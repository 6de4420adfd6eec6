package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/diet-mentor-go-api/internal/domain"
)

// getProfile returns the authenticated user's profile with its targets.
// GET /api/profile. 404 until the profile has been created.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.coach.Profile(c, c.GetInt("user_id"))
	if err != nil {
		h.serviceError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

// putProfile creates or replaces the profile and recomputes its targets.
// PUT /api/profile. Omitting start_date keeps the stored one (or starts
// today for a new profile).
func (h *Handler) putProfile(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p := domain.Profile{
		UserID:          c.GetInt("user_id"),
		Name:            body.Name,
		Gender:          body.Gender,
		Age:             body.Age,
		HeightCM:        body.HeightCM,
		CurrentWeightKG: body.CurrentWeightKG,
		TargetWeightKG:  body.TargetWeightKG,
		DietMode:        body.DietMode,
		ReductionRate:   body.ReductionRate,
	}
	if body.StartDate != "" {
		start, err := domain.ParseDate(body.StartDate)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
			return
		}
		p.StartDate = start
	}

	saved, err := h.coach.UpdateProfile(c, p)
	if err != nil {
		h.serviceError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, saved)
}
