package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/diet-mentor-go-api/internal/phrase"
	"lg/diet-mentor-go-api/internal/report"
)

// getReport composes a daily, weekly or monthly report ending on date.
// GET /api/reports/:kind?date=YYYY-MM-DD&render=true.
func (h *Handler) getReport(c *gin.Context) {
	kind, err := report.ParseKind(c.Param("kind"))
	if err != nil {
		apiError(c, http.StatusNotFound, "unknown report kind")
		return
	}
	date, ok := h.dateParam(c, "date")
	if !ok {
		return
	}

	r, err := h.coach.Report(c, c.GetInt("user_id"), kind, date)
	if err != nil {
		h.serviceError(c, err, "profile not found")
		return
	}

	resp := reportResponse{Date: date, Report: r}
	if c.Query("render") == "true" {
		resp.Messages = phrase.RenderReport(h.phrases, r)
	}
	c.JSON(http.StatusOK, resp)
}
