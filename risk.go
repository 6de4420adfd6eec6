package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lg/diet-mentor-go-api/internal/phrase"
)

// getRisk evaluates dropout risk as of date (default today).
// GET /api/risk?date=YYYY-MM-DD&persist=true&render=true. persist saves the
// result as that day's audit snapshot; render adds phrased messages.
func (h *Handler) getRisk(c *gin.Context) {
	date, ok := h.dateParam(c, "date")
	if !ok {
		return
	}
	persist := c.Query("persist") == "true"

	a, err := h.coach.AssessRisk(c, c.GetInt("user_id"), date, persist)
	if err != nil {
		h.serviceError(c, err, "profile not found")
		return
	}

	resp := riskResponse{Date: date, Assessment: a}
	if c.Query("render") == "true" {
		resp.Messages = phrase.RenderAssessment(h.phrases, a)
	}
	c.JSON(http.StatusOK, resp)
}

// getRiskHistory lists stored snapshots, newest first.
// GET /api/risk/history?limit=30.
func (h *Handler) getRiskHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apiError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := h.coach.History(c, c.GetInt("user_id"), limit)
	if err != nil {
		h.serviceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, history)
}
